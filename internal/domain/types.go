package domain

import (
	"encoding/base64"
	"strings"
)

// InputMode selects which pending input a submission uses.
type InputMode string

const (
	InputModeFile InputMode = "file"
	InputModeURL  InputMode = "url"
)

// Valid reports whether mode is one of the known input modes.
func (m InputMode) Valid() bool {
	return m == InputModeFile || m == InputModeURL
}

// SubmissionState tracks the lifecycle of the most recent submission.
type SubmissionState string

const (
	SubmissionStateIdle      SubmissionState = "idle"
	SubmissionStatePending   SubmissionState = "pending"
	SubmissionStateSucceeded SubmissionState = "succeeded"
	SubmissionStateFailed    SubmissionState = "failed"
)

// ErrorKind classifies why a submission did not produce text.
type ErrorKind string

const (
	ErrorKindMissingInput   ErrorKind = "missing_input"
	ErrorKindServiceError   ErrorKind = "service_error"
	ErrorKindTransportError ErrorKind = "transport_error"
)

// DisplayKind mirrors the styling of the results region.
type DisplayKind string

const (
	DisplayKindNone    DisplayKind = ""
	DisplayKindSuccess DisplayKind = "success"
	DisplayKindError   DisplayKind = "error"
)

// ProcessingPlaceholder is shown while a submission is in flight.
const ProcessingPlaceholder = "Processing..."

// Settings contains user-selectable runtime configuration.
type Settings struct {
	BaseURL               string `json:"baseUrl" env:"OCR_BASE_URL"`
	RequestTimeoutSeconds int    `json:"requestTimeoutSeconds" env:"OCR_REQUEST_TIMEOUT_SECONDS"`
}

// ImageFile is a selected local image held in memory until submission.
type ImageFile struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// PreviewURL returns a data URL the webview can render directly.
func (f *ImageFile) PreviewURL() string {
	if f == nil || len(f.Data) == 0 {
		return ""
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// Input is the payload of one input mode: either FileInput or URLInput.
type Input interface {
	Mode() InputMode
	Empty() bool
}

// FileInput carries a selected image file.
type FileInput struct {
	File *ImageFile
}

// Mode implements Input.
func (FileInput) Mode() InputMode { return InputModeFile }

// Empty reports whether no file has been chosen.
func (in FileInput) Empty() bool {
	return in.File == nil || len(in.File.Data) == 0
}

// URLInput carries a remote image address typed by the user.
type URLInput struct {
	URL string
}

// Mode implements Input.
func (URLInput) Mode() InputMode { return InputModeURL }

// Empty reports whether the address is blank.
func (in URLInput) Empty() bool {
	return strings.TrimSpace(in.URL) == ""
}

// Submission is the outcome record of the latest submission attempt.
type Submission struct {
	ID           string          `json:"id"`
	State        SubmissionState `json:"state"`
	Result       string          `json:"result,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	ErrorKind    ErrorKind       `json:"errorKind,omitempty"`
}

// Snapshot is an immutable view of the whole form after a mutation.
type Snapshot struct {
	Mode           InputMode      `json:"mode"`
	FileName       string         `json:"fileName,omitempty"`
	URL            string         `json:"url,omitempty"`
	Preview        string         `json:"preview,omitempty"`
	TargetLanguage TargetLanguage `json:"targetLanguage"`
	Submission     Submission     `json:"submission"`
	Notice         string         `json:"notice,omitempty"`
	Display        string         `json:"display"`
	DisplayKind    DisplayKind    `json:"displayKind"`
	CanSubmit      bool           `json:"canSubmit"`
}
