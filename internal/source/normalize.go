package source

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// dashReplacer maps the typographic hyphens found in OPM spreadsheets to ASCII.
var dashReplacer = strings.NewReplacer(
	"‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-",
)

// CleanText applies NFKC normalization, maps typographic dashes and
// non-breaking spaces to ASCII, and collapses runs of whitespace.
func CleanText(s string) string {
	s = norm.NFKC.String(s)
	s = dashReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// CleanName is CleanText plus title-casing for multi-word names published
// in all caps. Single-word acronyms such as "GEHA" are left alone.
func CleanName(s string) string {
	s = CleanText(s)
	if !strings.Contains(s, " ") || !isAllUpper(s) {
		return s
	}
	return titleCaser.String(strings.ToLower(s))
}

func isAllUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters > 3
}
