package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var supportedRegions = []string{
	"US",
	"IL",
	"GB",
}

// SanitizePhone normalizes a phone number to E.164. Empty input stays empty
// (phone is optional on bookings); unparseable input comes back empty so the
// validator rejects nothing that was never a phone number to begin with.
// Possibility is length-based on purpose: strict carrier-pattern validation
// rejects real numbers whenever the library metadata lags.
func SanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsPossibleNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return ""
}
