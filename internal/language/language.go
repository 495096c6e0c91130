package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// bibliographic ISO 639-2/B codes that BCP 47 parsing does not resolve.
var bibliographic = map[string]string{
	"chi": "zh",
	"cze": "cs",
	"dut": "nl",
	"fre": "fr",
	"ger": "de",
	"gre": "el",
	"per": "fa",
	"rum": "ro",
}

// Names resolved before tag parsing so "english" or "German" work as hints.
var names = map[string]string{
	"arabic":     "ar",
	"chinese":    "zh",
	"danish":     "da",
	"dutch":      "nl",
	"english":    "en",
	"finnish":    "fi",
	"french":     "fr",
	"german":     "de",
	"hindi":      "hi",
	"italian":    "it",
	"japanese":   "ja",
	"korean":     "ko",
	"norwegian":  "no",
	"polish":     "pl",
	"portuguese": "pt",
	"russian":    "ru",
	"spanish":    "es",
	"swedish":    "sv",
	"turkish":    "tr",
	"ukrainian":  "uk",
}

// Normalize converts a language hint into an ISO 639 code. Empty input
// returns an empty code, meaning the engine detects the language itself.
func Normalize(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", nil
	}
	if code, ok := names[value]; ok {
		return code, nil
	}
	if code, ok := bibliographic[value]; ok {
		return code, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(value, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q: %w", value, err)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", fmt.Errorf("unrecognized language %q", value)
	}
	return base.String(), nil
}

// ToISO2 is Normalize without the error: unrecognized input yields "".
func ToISO2(value string) string {
	code, err := Normalize(value)
	if err != nil {
		return ""
	}
	return code
}

// DisplayName returns the English name for a code, "Unknown" for empty
// input, or the upper-cased input when it cannot be resolved.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	normalized, err := Normalize(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	if name := display.English.Languages().Name(language.Make(normalized)); name != "" {
		return name
	}
	return strings.ToUpper(trimmed)
}
