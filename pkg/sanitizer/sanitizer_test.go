package sanitizer

import (
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Dana Levi", "Dana Levi"},
		{"surrounding whitespace", "  Dana Levi  ", "Dana Levi"},
		{"internal runs collapse", "Dana    Levi", "Dana Levi"},
		{"tabs and newlines", "Dana\t\nLevi", "Dana Levi"},
		{"empty", "", ""},
		{"only whitespace", "   \t  ", ""},
		{"unicode preserved", "José  Núñez", "José Núñez"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.expected {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercased", "Dana@Example.COM", "dana@example.com"},
		{"trimmed", "  dana@example.com ", "dana@example.com"},
		{"already clean", "dana@example.com", "dana@example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeEmail(tt.input); got != tt.expected {
				t.Errorf("SanitizeEmail(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeNotes(t *testing.T) {
	if got := SanitizeNotes("  please   call ahead \n"); got != "please call ahead" {
		t.Errorf("unexpected result %q", got)
	}

	long := strings.Repeat("a", 600)
	if got := SanitizeNotes(long); len(got) != 500 {
		t.Errorf("expected notes capped at 500, got %d", len(got))
	}
}
