// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL-friendly slugs for posts and categories.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps generated slugs. Longer input is cut at the last hyphen
// that fits.
const MaxLength = 96

// Generate creates a slug from a display name or title.
// Example: "Café Crème, 2026!" → "cafe-creme-2026"
//
// Diacritics are stripped, letters and digits are lowercased, apostrophes
// are dropped, and every other run of characters becomes one hyphen.
func Generate(s string) string {
	folded, _, err := transform.String(foldDiacritics(), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
		case r == '\'' || r == '’':
		default:
			pendingHyphen = true
		}
	}
	return truncate(b.String(), MaxLength)
}

// Valid reports whether s is already in slug form.
func Valid(s string) bool {
	return s != "" && Generate(s) == s
}

// foldDiacritics returns a fresh transformer; transformers carry state and
// are not safe for concurrent use.
func foldDiacritics() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	if i := strings.LastIndexByte(s, '-'); i > 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, "-")
}
