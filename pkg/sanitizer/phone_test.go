package sanitizer

import "testing"

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty stays empty", "", ""},
		{"whitespace only", "   ", ""},
		{"already e164 us", "+14155552671", "+14155552671"},
		{"already e164 il", "+972501234567", "+972501234567"},
		{"national us", "(415) 555-2671", "+14155552671"},
		{"national il", "050-123-4567", "+972501234567"},
		{"spaced il mobile", "+972 54 123 4567", "+972541234567"},
		{"garbage", "not a phone", ""},
		{"too short", "+1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePhone(tt.input); got != tt.expected {
				t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
