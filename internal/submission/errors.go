package submission

import (
	"errors"

	"ocr-desk/internal/domain"
)

// ErrModeMismatch is returned when an input setter does not match the active mode.
var ErrModeMismatch = errors.New("input does not match the selected mode")

// ErrUnsupportedLanguage is returned for target languages outside the catalog.
var ErrUnsupportedLanguage = errors.New("unsupported target language")

// ErrUnknownMode is returned when selecting a mode that does not exist.
var ErrUnknownMode = errors.New("unknown input mode")

// GenericFailureMessage is shown when the service gives no usable reason.
const GenericFailureMessage = "OCR processing failed"

// InputError reports a submit attempt without input for the active mode.
type InputError struct {
	Mode domain.InputMode
}

// Error returns the user-facing prompt for the missing input.
func (e *InputError) Error() string {
	if e == nil {
		return ""
	}
	if e.Mode == domain.InputModeURL {
		return "Please enter an image URL"
	}
	return "Please select a file first"
}

// Kind classifies the error for display.
func (e *InputError) Kind() domain.ErrorKind {
	return domain.ErrorKindMissingInput
}

// IsMissingInput reports whether err came from an empty active input.
func IsMissingInput(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}
