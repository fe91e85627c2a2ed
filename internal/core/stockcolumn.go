package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// quantityKeywords are matched as substrings of normalized header names.
// Matching is substring based, so "Discount" also contains "count".
var quantityKeywords = []string{
	"stock",
	"quantity",
	"qty",
	"instock",
	"inventory",
	"count",
	"enstock",
	// es, de, fr, it, pt, nl
	"cantidad",
	"existencia",
	"bestand",
	"menge",
	"quantite",
	"giacenza",
	"estoque",
	"voorraad",
}

// GuessQuantityColumn returns the first header name that looks like a
// quantity-on-hand column.
func GuessQuantityColumn(header []string) (string, bool) {
	for _, name := range header {
		key := normalizeHeaderName(name)
		if key == "" {
			continue
		}
		for _, kw := range quantityKeywords {
			if strings.Contains(key, kw) {
				return name, true
			}
		}
	}
	return "", false
}

// normalizeHeaderName folds diacritics, lower-cases, and drops every rune
// that is not a letter or digit. "Quantité en stock" becomes "quantiteenstock".
func normalizeHeaderName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
