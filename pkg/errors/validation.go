package errors

import (
	"net/mail"
	"strings"
	"unicode"
)

// ValidateName validates a participant name.
//
// Names are used as exclusion keys, so they must be non-empty after trimming,
// free of control characters, and at most 128 characters long.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidRoster, "participant name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidRoster, "participant name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRoster, "participant name %q contains control characters", name)
		}
	}

	return nil
}

// ValidateEmail validates a bare email address (no display name).
func ValidateEmail(email string) error {
	if email == "" {
		return New(ErrCodeInvalidRoster, "email cannot be empty")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return Wrap(ErrCodeInvalidRoster, err, "invalid email %q", email)
	}
	if addr.Name != "" || addr.Address != email {
		return New(ErrCodeInvalidRoster, "email %q must be a bare address", email)
	}

	return nil
}
