package domain

import "strings"

// PhoneDigits strips formatting from a phone number and keeps only digits.
// Returns false if anything other than digits, spaces, '+', '-', '(' or ')' is present.
func PhoneDigits(phone string) (string, bool) {
	var b strings.Builder
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '+' || r == '-' || r == '(' || r == ')':
		default:
			return "", false
		}
	}
	return b.String(), true
}

// SamePhone compares two phone numbers ignoring formatting
func SamePhone(a, b string) bool {
	da, okA := PhoneDigits(a)
	db, okB := PhoneDigits(b)
	return okA && okB && da != "" && da == db
}
