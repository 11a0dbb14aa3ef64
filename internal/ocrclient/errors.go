package ocrclient

import (
	"fmt"
	"net/http"
)

// ServiceError is a non-2xx reply from the OCR service.
type ServiceError struct {
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message,omitempty"`
}

// Error formats the status and the server-provided message, if any.
func (e *ServiceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// TransportError means the call did not produce a usable reply:
// connectivity failure, unreadable body or malformed JSON.
type TransportError struct {
	Endpoint string `json:"endpoint"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

// Error formats transport failures for logs.
func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Message, e.Err)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
