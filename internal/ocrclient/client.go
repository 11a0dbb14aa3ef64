package ocrclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wailsapp/mimetype"

	"ocr-desk/internal/domain"
)

// Endpoint paths relative to the service base address.
const (
	UploadPath = "/ocr/upload"
	URLPath    = "/ocr/url"
)

// Form and JSON field names understood by the service.
const (
	fileField       = "file"
	targetLangField = "target_lang"
)

// maxResponseBytes bounds how much of a reply body is read.
const maxResponseBytes = 8 << 20

// urlRequest is the JSON body sent to the URL endpoint.
type urlRequest struct {
	URL        string `json:"url"`
	TargetLang string `json:"target_lang,omitempty"`
}

// reply covers both the success and the failure body shapes.
type reply struct {
	Text    *string `json:"text"`
	Message string  `json:"message"`
}

// Client calls the remote OCR service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	newReqID   func() string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request; zero or negative means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout, Transport: c.httpClient.Transport}
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
		newReqID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Extract sends input to the endpoint matching its mode and returns the text.
func (c *Client) Extract(ctx context.Context, input domain.Input, lang domain.TargetLanguage) (string, error) {
	var (
		req *http.Request
		err error
	)
	switch in := input.(type) {
	case domain.FileInput:
		req, err = c.newUploadRequest(ctx, in.File, lang)
	case domain.URLInput:
		req, err = c.newURLRequest(ctx, in.URL, lang)
	default:
		return "", fmt.Errorf("unsupported input type %T", input)
	}
	if err != nil {
		return "", err
	}
	return c.do(req)
}

// newUploadRequest builds the multipart request for the upload endpoint.
func (c *Client) newUploadRequest(ctx context.Context, file *domain.ImageFile, lang domain.TargetLanguage) (*http.Request, error) {
	if file == nil {
		return nil, fmt.Errorf("build upload request: file is required")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, fileName(file)))
	header.Set("Content-Type", contentType(file))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	if !lang.IsNone() {
		if err := writer.WriteField(targetLangField, string(lang)); err != nil {
			return nil, fmt.Errorf("build upload request: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+UploadPath, &body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// newURLRequest builds the JSON request for the URL endpoint.
func (c *Client) newURLRequest(ctx context.Context, imageURL string, lang domain.TargetLanguage) (*http.Request, error) {
	payload, err := json.Marshal(urlRequest{URL: imageURL, TargetLang: string(lang)})
	if err != nil {
		return nil, fmt.Errorf("encode url request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+URLPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build url request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends req and maps the reply onto text or a typed error.
func (c *Client) do(req *http.Request) (string, error) {
	endpoint := req.URL.Path
	reqID := c.newReqID()
	start := time.Now()

	c.logger.Info("ocr.http.request",
		"req_id", reqID,
		"url", req.URL.String(),
		"content_length", req.ContentLength,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("ocr.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", &TransportError{Endpoint: endpoint, Message: "request failed", Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("ocr.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Error("ocr.http.read_error", "req_id", reqID, "error", err)
		return "", &TransportError{Endpoint: endpoint, Message: "read response", Err: err}
	}

	c.logger.Info("ocr.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	var body reply
	decodeErr := json.Unmarshal(raw, &body)

	if resp.StatusCode/100 != 2 {
		// An unparseable failure body still counts as a service error, only without a message.
		return "", &ServiceError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: strings.TrimSpace(body.Message)}
	}
	if decodeErr != nil {
		return "", &TransportError{Endpoint: endpoint, Message: "decode response", Err: decodeErr}
	}
	if body.Text == nil {
		return "", &TransportError{Endpoint: endpoint, Message: "response has no text field"}
	}
	return *body.Text, nil
}

// fileName returns the upload filename, defaulting to one derived from the content type.
func fileName(file *domain.ImageFile) string {
	if name := strings.TrimSpace(file.Name); name != "" {
		return name
	}
	return "image" + mimetype.Detect(file.Data).Extension()
}

// contentType prefers the recorded type and falls back to sniffing the bytes.
func contentType(file *domain.ImageFile) string {
	if file.ContentType != "" {
		return file.ContentType
	}
	return mimetype.Detect(file.Data).String()
}
