package domain

import (
	"strings"

	"github.com/samber/lo"
)

// TargetLanguage is an optional translation target; empty means none.
type TargetLanguage string

const (
	TargetLanguageNone     TargetLanguage = ""
	TargetLanguageSpanish  TargetLanguage = "es"
	TargetLanguageFrench   TargetLanguage = "fr"
	TargetLanguageGerman   TargetLanguage = "de"
	TargetLanguageChinese  TargetLanguage = "zh"
	TargetLanguageJapanese TargetLanguage = "ja"
)

// LanguageOption is one entry of the target language selector.
type LanguageOption struct {
	Code TargetLanguage `json:"code"`
	Name string         `json:"name"`
}

var languageOptions = []LanguageOption{
	{Code: TargetLanguageNone, Name: "No translation"},
	{Code: TargetLanguageSpanish, Name: "Spanish"},
	{Code: TargetLanguageFrench, Name: "French"},
	{Code: TargetLanguageGerman, Name: "German"},
	{Code: TargetLanguageChinese, Name: "Chinese"},
	{Code: TargetLanguageJapanese, Name: "Japanese"},
}

// LanguageOptions returns the selector entries in display order.
func LanguageOptions() []LanguageOption {
	out := make([]LanguageOption, len(languageOptions))
	copy(out, languageOptions)
	return out
}

// ParseTargetLanguage maps raw selector input to a supported language.
// "none" and blank both mean no translation.
func ParseTargetLanguage(raw string) (TargetLanguage, bool) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if code == "none" {
		return TargetLanguageNone, true
	}
	option, found := lo.Find(languageOptions, func(option LanguageOption) bool {
		return string(option.Code) == code
	})
	if !found {
		return TargetLanguageNone, false
	}
	return option.Code, true
}

// IsNone reports whether no translation was requested.
func (l TargetLanguage) IsNone() bool {
	return l == TargetLanguageNone
}
