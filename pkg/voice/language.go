// Package voice translates text between the session language and English and renders replies as speech.
package voice

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	English = "english"
	Hindi   = "hindi"
	Kannada = "kannada"
)

var supported = map[string]language.Tag{
	English: language.English,
	Hindi:   language.Hindi,
	Kannada: language.Kannada,
}

// AllowedLanguages is the order offered to users
var AllowedLanguages = []string{English, Kannada, Hindi}

// NormalizeLanguage lower-cases a language name and reports whether it is supported
func NormalizeLanguage(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	_, ok := supported[n]
	return n, ok
}

// Code returns the ISO 639-1 code for a supported language name, "en" otherwise
func Code(name string) string {
	tag, ok := supported[strings.ToLower(name)]
	if !ok {
		tag = language.English
	}
	base, _ := tag.Base()
	return base.String()
}

// Locale returns the Indian regional locale used for voice names, e.g. "kn-IN"
func Locale(name string) string {
	return Code(name) + "-IN"
}
