package config

import "ocr-desk/internal/domain"

// DefaultBaseURL is the OCR service used when nothing else is configured.
const DefaultBaseURL = "https://tesocr-fa5p.onrender.com"

// DefaultSettings returns baseline configuration for first launch.
// A zero timeout leaves requests unbounded.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		BaseURL:               DefaultBaseURL,
		RequestTimeoutSeconds: 0,
	}
}
