package domain

import "regexp"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail checks the local@domain.tld shape without embedded whitespace.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateEmail returns a ValidationError for an empty or malformed address.
func ValidateEmail(email string) error {
	if email == "" || !IsValidEmail(email) {
		return NewValidationError("email", "Valid email is required")
	}
	return nil
}

// ValidateHistory rejects an empty conversation.
func ValidateHistory(raw []RawMessage) error {
	if len(raw) == 0 {
		return NewValidationError("messages", "Messages array is required")
	}
	return nil
}
