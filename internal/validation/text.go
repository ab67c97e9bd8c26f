package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Error is a user-facing validation failure for a single field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

const (
	MaxAddressLength     = 200
	MaxTitleLength       = 120
	MaxDescriptionLength = 5000
	MaxCaptionLength     = 280
)

// ValidateAddress validates a project address
func ValidateAddress(address string) error {
	trimmed := strings.TrimSpace(address)

	if trimmed == "" {
		return &Error{Field: "address", Message: "address is required"}
	}

	return maxLength("address", trimmed, MaxAddressLength)
}

func ValidateTitle(title string) error {
	return maxLength("title", strings.TrimSpace(title), MaxTitleLength)
}

func ValidateDescription(description string) error {
	return maxLength("description", description, MaxDescriptionLength)
}

func ValidateCaption(caption string) error {
	return maxLength("caption", caption, MaxCaptionLength)
}

func maxLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return &Error{Field: field, Message: fmt.Sprintf("%s is too long (max %d characters)", field, limit)}
	}
	return nil
}
