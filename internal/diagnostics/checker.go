package diagnostics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ocr-desk/internal/domain"
)

// probeTimeout bounds the reachability check so startup stays responsive.
const probeTimeout = 5 * time.Second

// Checker validates the configured OCR service address.
type Checker struct {
	probe func(ctx context.Context, target string) (int, error)
}

// NewChecker builds a checker that probes the service over HTTP.
func NewChecker() *Checker {
	client := &http.Client{Timeout: probeTimeout}
	return &Checker{
		probe: func(ctx context.Context, target string) (int, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return 0, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return 0, err
			}
			_ = resp.Body.Close()
			return resp.StatusCode, nil
		},
	}
}

// Run executes all service checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	baseURL := strings.TrimSpace(settings.BaseURL)
	items := []domain.DiagnosticItem{c.checkServiceURL(baseURL)}
	if items[0].Status == domain.DiagnosticStatusPass {
		items = append(items, c.checkReachable(baseURL))
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		ServiceURL:  baseURL,
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkServiceURL validates that the base address is an absolute http(s) URL.
func (c *Checker) checkServiceURL(baseURL string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   domain.DiagnosticServiceURL,
		Name: "Service address",
	}

	if baseURL == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Service address is empty."
		item.Hint = "Set the OCR service base address in settings or OCR_BASE_URL."
		return item
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Service address is not a valid http(s) URL: %s", baseURL)
		item.Hint = "Use an address such as https://ocr.example.com."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Using %s", baseURL)
	return item
}

// checkReachable verifies that something answers at the base address.
// Any HTTP status counts; the service may not serve its root path.
func (c *Checker) checkReachable(baseURL string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   domain.DiagnosticServiceReachable,
		Name: "Service reachable",
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	status, err := c.probe(ctx, baseURL)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot reach OCR service at %s", baseURL)
		item.Hint = "Check your network connection. Hosted services may need a moment to wake up; refresh diagnostics to retry."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Service answered with HTTP %d", status)
	return item
}

// NewCheckerForTests creates checker with an injectable probe.
func NewCheckerForTests(probe func(ctx context.Context, target string) (int, error)) *Checker {
	return &Checker{probe: probe}
}
