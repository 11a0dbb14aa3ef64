package domain

import "time"

// DiagnosticStatus indicates whether a single startup check passed.
type DiagnosticStatus string

const (
	DiagnosticStatusPass DiagnosticStatus = "pass"
	DiagnosticStatusFail DiagnosticStatus = "fail"
)

// Diagnostic item IDs reported by the service checks.
const (
	DiagnosticServiceURL       = "service_url"
	DiagnosticServiceReachable = "service_reachable"
)

// DiagnosticItem is one check result with an optional hint for the user.
type DiagnosticItem struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Status  DiagnosticStatus `json:"status"`
	Message string           `json:"message"`
	Hint    string           `json:"hint,omitempty"`
}

// DiagnosticReport aggregates service checks shown above the form.
type DiagnosticReport struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	ServiceURL  string           `json:"serviceUrl"`
	HasFailures bool             `json:"hasFailures"`
	Items       []DiagnosticItem `json:"items"`
}
