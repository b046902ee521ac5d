package util

import (
	"fmt"
	"regexp"
)

// phoneNumberRegex matches every character that is not a digit.
var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// MinPhoneDigits is the minimum number of digits a normalized phone number must have.
const MinPhoneDigits = 6

// NormalizePhone strips all non-digit characters from a phone number and
// validates the result has at least MinPhoneDigits digits. The normalized
// form is the appointment store's key.
func NormalizePhone(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}
	normalized := phoneNumberRegex.ReplaceAllString(raw, "")
	if normalized == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in %q", raw)
	}
	if len(normalized) < MinPhoneDigits {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum %d digits required)", normalized, MinPhoneDigits)
	}
	return normalized, nil
}
