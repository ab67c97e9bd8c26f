package validation

import (
	"net/mail"
)

// ValidateEmail validates a share recipient address
// Uses Go's built-in net/mail parser which follows RFC 5322
func ValidateEmail(email string) error {
	if email == "" {
		return &Error{Field: "email", Message: "email address is required"}
	}

	// RFC 5321 limits the full address to 254 characters
	if len(email) > 254 {
		return &Error{Field: "email", Message: "email address is too long (max 254 characters)"}
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &Error{Field: "email", Message: "invalid email address format"}
	}

	return nil
}
