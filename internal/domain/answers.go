package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// NormalizeAnswer trims, collapses inner whitespace and case-folds s.
func NormalizeAnswer(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	// Casers keep state and must not be shared across goroutines.
	return cases.Fold().String(strings.Join(fields, " "))
}

// DeriveHints builds MaxHints hints for answer as written: length and first
// letter, vowels only, every other letter, every other letter plus the last.
// The last two reveal a growing set of letters.
func DeriveHints(answer string) []string {
	answer = strings.Join(strings.Fields(answer), " ")
	runes := []rune(answer)
	if len(runes) == 0 {
		return nil
	}
	first, _ := utf8.DecodeRuneInString(answer)
	last := len(runes) - 1

	return []string{
		fmt.Sprintf("Length: %d letters\nFirst letter: %c", len(runes), first),
		mask(runes, func(_ int, r rune) bool { return strings.ContainsRune("aeiou", unicode.ToLower(r)) }),
		mask(runes, func(i int, _ rune) bool { return i%2 == 0 }),
		mask(runes, func(i int, _ rune) bool { return i%2 == 0 || i == last }),
	}
}

// mask keeps runes selected by keep (and spaces) and replaces the rest with '_'.
func mask(runes []rune, keep func(i int, r rune) bool) string {
	var b strings.Builder
	for i, r := range runes {
		if r == ' ' || keep(i, r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}
