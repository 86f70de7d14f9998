// Package i18n localizes the notices and item labels the engine sends to its
// UI collaborators.
package i18n

import (
	"fmt"
)

const (
	// DefaultLanguage is English, the catalog every other language falls
	// back to.
	DefaultLanguage = "en"
	// BerneseGermanMessages is the Swiss German dialect spoken in and around
	// Bern.
	BerneseGermanMessages = "ch_be"
)

// Localizer resolves message keys against one language's catalog. Missing
// keys fall back to English and finally to the key itself, so a notice is
// never silently dropped.
type Localizer struct {
	language string
	messages map[string]string
}

// NewLocalizer creates a localizer for the given language code. Unknown
// codes get the English catalog.
func NewLocalizer(language string) *Localizer {
	return &Localizer{
		language: language,
		messages: getMessages(language),
	}
}

// T translates a message key, formatting it with args when given.
func (l *Localizer) T(key string, args ...interface{}) string {
	if msg, ok := l.messages[key]; ok {
		return format(msg, args)
	}
	if l.language != DefaultLanguage {
		if msg, ok := englishMessages[key]; ok {
			return format(msg, args)
		}
	}
	return key
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// GetSupportedLanguages returns the language codes with a message catalog.
func GetSupportedLanguages() []string {
	return []string{DefaultLanguage, BerneseGermanMessages}
}

func getMessages(language string) map[string]string {
	switch language {
	case BerneseGermanMessages:
		return berneseGermanMessages
	default:
		return englishMessages
	}
}
