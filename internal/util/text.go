package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces    = regexp.MustCompile(`\s+`)
	reHashRun   = regexp.MustCompile(`^#+$`)
	errorTokens = map[string]struct{}{
		"#N/A": {}, "#REF!": {}, "#VALUE!": {}, "#DIV/0!": {},
		"#NAME?": {}, "#NULL!": {}, "#NUM!": {},
	}
)

// StripDiacritics removes combining marks so "Assuré" compares equal to
// "assure" after folding.
func StripDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}

// NormalizeHeader folds a spreadsheet header for fuzzy comparison: diacritics
// stripped, lower-cased, runs of whitespace collapsed to a single underscore.
func NormalizeHeader(input string) string {
	s := StripDiacritics(strings.TrimSpace(input))
	s = strings.ToLower(s)
	s = reSpaces.ReplaceAllString(s, "_")
	return s
}

// FoldValue lower-cases and strips accents for case/accent-insensitive
// substring search over record fields.
func FoldValue(input string) string {
	return strings.ToLower(StripDiacritics(input))
}

// CleanContractNumber trims a raw contract cell and rejects spreadsheet error
// tokens (#N/A, #REF!, ... or any run of #) as empty.
func CleanContractNumber(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	upper := strings.ToUpper(s)
	if _, bad := errorTokens[upper]; bad {
		return ""
	}
	if reHashRun.MatchString(s) {
		return ""
	}
	return s
}
