package handlers

import "strings"

// Validation limits.
const (
	MaxEmailLength    = 254
	MaxPasswordLength = 128
	MaxUsernameLength = 30
	MaxNameLength     = 100
)

// SanitizeEmail trims and lowercases email; returns empty if invalid length.
func SanitizeEmail(email string) string {
	s := strings.TrimSpace(strings.ToLower(email))
	if len(s) > MaxEmailLength {
		return ""
	}
	return s
}

// SanitizePassword length-checks the password; returns empty if over max
// length. The value itself is never rewritten: whitespace is part of the
// credential.
func SanitizePassword(password string) string {
	if len(password) > MaxPasswordLength {
		return ""
	}
	return password
}

// SanitizeUsername trims the username; returns empty if over max length.
// Usernames stay case-sensitive: "Ada" and "ada" are distinct reservations.
func SanitizeUsername(username string) string {
	s := strings.TrimSpace(username)
	if len(s) > MaxUsernameLength {
		return ""
	}
	return s
}

// SanitizeName trims a first/last name field and caps it at MaxNameLength
// runes. Truncation happens on a rune boundary so a multibyte name never
// becomes invalid UTF-8.
func SanitizeName(name string) string {
	s := strings.TrimSpace(name)
	if r := []rune(s); len(r) > MaxNameLength {
		return string(r[:MaxNameLength])
	}
	return s
}
