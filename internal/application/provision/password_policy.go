package provision

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"

	domerrors "github.com/Akr1040317/gatehouse/internal/domain/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Password policy bounds. The policy is a security boundary, not cosmetics:
// every caller re-validates here even when a UI already did.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 15
)

// ValidatePassword checks the password policy: 8-15 characters with at
// least one lowercase letter, one uppercase letter, one digit and one
// symbol outside the alphanumeric set. Violations are ErrInvalidInput.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return fmt.Errorf("%w: password must be %d-%d characters", domerrors.ErrInvalidInput, MinPasswordLength, MaxPasswordLength)
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return fmt.Errorf("%w: password must include lowercase, uppercase, a digit and a symbol", domerrors.ErrInvalidInput)
	}
	return nil
}

// ValidateEmail rejects malformed email addresses before any side effect.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: malformed email", domerrors.ErrInvalidInput)
	}
	return nil
}
