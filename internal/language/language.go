package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var wordForms = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
}

// Canonical returns the BCP-47 canonical form of a locale ("en-us" becomes
// "en-US"). Unparseable input is returned trimmed.
func Canonical(locale string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(locale, "_", "-"))
	if trimmed == "" {
		return ""
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	return tag.String()
}

// ToISO2 converts a locale, ISO 639 code or English word form to its ISO 639-1
// code. Returns an empty string for unrecognized input.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if iso, ok := wordForms[code]; ok {
		return iso
	}
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

// IsEnglish reports whether the locale's base language is English.
func IsEnglish(locale string) bool {
	return ToISO2(locale) == "en"
}

// HasPrefix reports whether locale belongs to any of the given language
// prefixes, compared on the ISO 639-1 base ("es" matches "es-MX").
func HasPrefix(locale string, prefixes []string) bool {
	base := ToISO2(locale)
	if base == "" {
		return false
	}
	for _, prefix := range prefixes {
		if ToISO2(prefix) == base {
			return true
		}
	}
	return false
}

// DisplayName returns the English name of a locale ("en-US" becomes
// "American English"). Unknown input is returned uppercased.
func DisplayName(locale string) string {
	trimmed := strings.TrimSpace(locale)
	if trimmed == "" {
		return "Unknown"
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(trimmed)
}
