// Package normalize canonicalizes user-entered values before they are
// stored or compared.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses inner whitespace. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Place is Name for district and upazila values.
func Place(s string) string {
	return Name(s)
}

// Fold returns the comparison key for a place name: case and diacritics
// folded so "chittagong" and "Chittagong" match.
func Fold(s string) string {
	return text.Fold(Place(s))
}
