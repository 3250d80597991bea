// Package textnorm holds the shared normalization helpers the analysis rules
// depend on: case/diacritic-insensitive text folding, locale-tolerant number
// parsing and lenient date parsing. Every parser is fallible and reports
// failure through its ok result; absence is the normal case, not an error.
package textnorm

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, trims and removes diacritics so keyword and label
// matching is accent-insensitive ("Atenção" == "atencao").
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// ToNumber parses a number that may use either "," or "." as the decimal
// separator, with optional thousands separators and a trailing "%".
func ToNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.ReplaceAll(s, "%", "")
	if s == "" {
		return 0, false
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		// "1.234,56" style: dots are thousands separators
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// PercentToNumber parses a percentage string like "45%", "45,5" or "45.5".
func PercentToNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	return ToNumber(s)
}

var dateFormats = []string{"2006-01-02", "02/01/2006", "02-01-2006"}

// ParseDate accepts ISO (YYYY-MM-DD) and Brazilian (DD/MM/YYYY, DD-MM-YYYY)
// date formats. Unparseable input is reported, never raised.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
