package domain

import (
	"strings"
	"time"
)

// Role is the privilege tier of an account. New accounts always start at
// the lowest tier; upgrades belong to other subsystems.
type Role string

const (
	RoleTier1 Role = "tier1"
	RoleTier2 Role = "tier2"
	RoleAdmin Role = "admin"
)

// UserProfile is the application-level account record, keyed 1:1 by the
// identity that owns it. Provisioning creates a profile at most once and
// never mutates it afterward.
type UserProfile struct {
	UserID        UserID
	FirstName     string
	LastName      string
	Email         string
	Username      string // empty only for profiles pending username completion
	Verified      bool
	Role          Role
	SignupMethod  AuthMethod
	CreatedAt     time.Time
	LastLoggedOn  *time.Time
	LastLoggedOff *time.Time
}

// SplitDisplayName derives first and last name from a federated provider's
// display name: first whitespace-separated token is the first name, the
// remaining tokens joined by single spaces form the last name. Both are
// empty when the display name is absent.
func SplitDisplayName(displayName string) (first, last string) {
	parts := strings.Fields(displayName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
