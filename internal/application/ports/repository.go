package ports

import (
	"context"

	"github.com/Akr1040317/gatehouse/internal/domain"
)

// ProfileRepository is the single source of truth for one profile per
// identity. Create must be a conditional/exclusive write: a profile that
// already exists is never overwritten, so repeated federated logins and
// concurrent provisioning attempts converge on one record.
type ProfileRepository interface {
	// Create persists the profile only if none exists for its UserID.
	// Returns domain/errors.ErrProfileExists when one does.
	Create(ctx context.Context, profile *domain.UserProfile) error
	// Exists reports whether a profile exists for the identity.
	Exists(ctx context.Context, userID domain.UserID) (bool, error)
	// Get returns the profile for the identity, or nil when absent.
	Get(ctx context.Context, userID domain.UserID) (*domain.UserProfile, error)
}

// UsernameRegistry maps usernames to their owning identities and enforces
// global uniqueness. Claim is the authoritative exclusive-create boundary;
// IsAvailable is advisory only (interactive feedback) and may race.
type UsernameRegistry interface {
	// IsAvailable reports whether no reservation exists for username.
	// Blank input is vacuously available; callers must not claim it.
	IsAvailable(ctx context.Context, username string) (bool, error)
	// Claim reserves the username for userID only if no reservation exists.
	// Returns domain/errors.ErrUsernameTaken when one does, regardless of owner.
	Claim(ctx context.Context, username string, userID domain.UserID) error
	// Release deletes the reservation, but only if userID owns it. Used to
	// roll back a claim when profile creation subsequently fails.
	Release(ctx context.Context, username string, userID domain.UserID) error
	// Get returns the reservation for username, or nil when absent.
	Get(ctx context.Context, username string) (*domain.UsernameReservation, error)
}
