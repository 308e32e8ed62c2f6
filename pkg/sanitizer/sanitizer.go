// Package sanitizer normalizes customer-entered booking fields before
// validation and storage.
package sanitizer

import "strings"

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// SanitizeName trims and collapses whitespace in a customer name.
func SanitizeName(input string) string {
	p := Pipeline{
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// SanitizeEmail lowercases and trims an email address. Shape validation is
// left to the validator.
func SanitizeEmail(input string) string {
	p := Pipeline{
		strings.TrimSpace,
		strings.ToLower,
	}
	return p.Apply(input)
}

// SanitizeNotes collapses whitespace in free-text notes and caps runaway
// input at the storage limit.
func SanitizeNotes(input string) string {
	const maxNotesLen = 500

	s := TrimAndNormalize(input)
	if len(s) > maxNotesLen {
		s = s[:maxNotesLen]
	}
	return s
}
