package ocrclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ocr-desk/internal/domain"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// newTestClient points a client at handler with logging discarded.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL+"/", WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// TestExtractUploadSendsMultipartWithoutLanguage covers a file upload with no translation.
func TestExtractUploadSendsMultipartWithoutLanguage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != UploadPath {
			t.Errorf("request = %s %s, want POST %s", r.Method, r.URL.Path, UploadPath)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer file.Close()
			if header.Filename != "scan.jpg" {
				t.Errorf("filename = %q, want scan.jpg", header.Filename)
			}
			if got := header.Header.Get("Content-Type"); got != "image/jpeg" {
				t.Errorf("part content type = %q, want image/jpeg", got)
			}
		}
		if _, ok := r.MultipartForm.Value["target_lang"]; ok {
			t.Error("target_lang should be omitted when no language is chosen")
		}
		_, _ = w.Write([]byte(`{"text":"Hello"}`))
	})

	input := domain.FileInput{File: &domain.ImageFile{Name: "scan.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}}
	got, err := client.Extract(context.Background(), input, domain.TargetLanguageNone)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "Hello" {
		t.Fatalf("text = %q, want Hello", got)
	}
}

// TestExtractUploadIncludesLanguageAndSniffsType covers the optional field and sniffing.
func TestExtractUploadIncludesLanguageAndSniffsType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("target_lang"); got != "de" {
			t.Errorf("target_lang = %q, want de", got)
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		if got := header.Header.Get("Content-Type"); got != "image/png" {
			t.Errorf("part content type = %q, want image/png", got)
		}
		if header.Filename != "image.png" {
			t.Errorf("filename = %q, want image.png", header.Filename)
		}
		_, _ = w.Write([]byte(`{"text":"Hallo"}`))
	})

	input := domain.FileInput{File: &domain.ImageFile{Data: pngHeader}}
	got, err := client.Extract(context.Background(), input, domain.TargetLanguageGerman)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "Hallo" {
		t.Fatalf("text = %q, want Hallo", got)
	}
}

// TestExtractURLSendsJSONBody covers the URL endpoint payload shape.
func TestExtractURLSendsJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != URLPath {
			t.Errorf("path = %s, want %s", r.URL.Path, URLPath)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["url"] != "https://x/img.png" || body["target_lang"] != "es" || len(body) != 2 {
			t.Errorf("body = %v", body)
		}
		_, _ = w.Write([]byte(`{"text":"Hola"}`))
	})

	got, err := client.Extract(context.Background(), domain.URLInput{URL: "https://x/img.png"}, domain.TargetLanguageSpanish)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "Hola" {
		t.Fatalf("text = %q, want Hola", got)
	}
}

// TestExtractURLOmitsEmptyLanguage checks the URL body without translation.
func TestExtractURLOmitsEmptyLanguage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if _, ok := body["target_lang"]; ok {
			t.Errorf("target_lang present in %v", body)
		}
		_, _ = w.Write([]byte(`{"text":""}`))
	})

	got, err := client.Extract(context.Background(), domain.URLInput{URL: "https://x/img.png"}, domain.TargetLanguageNone)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "" {
		t.Fatalf("text = %q, want empty", got)
	}
}

// TestExtractServiceErrorCarriesMessage maps non-2xx replies to ServiceError.
func TestExtractServiceErrorCarriesMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"bad image"}`))
	})

	_, err := client.Extract(context.Background(), domain.URLInput{URL: "https://x/img.png"}, domain.TargetLanguageSpanish)
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("error = %v, want ServiceError", err)
	}
	if serviceErr.StatusCode != http.StatusInternalServerError || serviceErr.Message != "bad image" {
		t.Fatalf("service error = %+v", serviceErr)
	}
}

// TestExtractServiceErrorWithoutJSONBody keeps the status but no message.
func TestExtractServiceErrorWithoutJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	})

	_, err := client.Extract(context.Background(), domain.URLInput{URL: "https://x/img.png"}, domain.TargetLanguageNone)
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("error = %v, want ServiceError", err)
	}
	if serviceErr.Message != "" {
		t.Fatalf("message = %q, want empty", serviceErr.Message)
	}
}

// TestExtractMalformedSuccessIsTransportError covers unparseable 2xx replies.
func TestExtractMalformedSuccessIsTransportError(t *testing.T) {
	for name, body := range map[string]string{
		"not json": "<html>",
		"no text":  `{"result":"x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := client.Extract(context.Background(), domain.URLInput{URL: "https://x/img.png"}, domain.TargetLanguageNone)
			var transportErr *TransportError
			if !errors.As(err, &transportErr) {
				t.Fatalf("error = %v, want TransportError", err)
			}
		})
	}
}

// TestExtractUnreachableIsTransportError covers connectivity failures.
func TestExtractUnreachableIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	client := New(addr, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err := client.Extract(context.Background(), domain.URLInput{URL: "https://x/img.png"}, domain.TargetLanguageNone)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want TransportError", err)
	}
	if transportErr.Unwrap() == nil {
		t.Fatal("expected wrapped cause")
	}
}

// TestWithTimeoutBoundsRequest checks that a slow service is cut off.
func TestWithTimeoutBoundsRequest(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client := New(server.URL,
		WithTimeout(50*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	_, err := client.Extract(context.Background(), domain.URLInput{URL: "https://x/img.png"}, domain.TargetLanguageNone)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want TransportError", err)
	}
}

// TestNewTrimsBaseURL normalizes trailing slashes and whitespace.
func TestNewTrimsBaseURL(t *testing.T) {
	if got := New(" https://ocr.example.com/ ").BaseURL(); got != "https://ocr.example.com" {
		t.Fatalf("base url = %q", got)
	}
}
