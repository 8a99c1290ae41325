package provision

import (
	"context"
	"strings"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
)

// CheckUsername answers advisory availability queries for interactive
// feedback. The answer may be stale by claim time; Claim remains the
// authority and callers must treat a positive answer as a preview only.
type CheckUsername struct {
	registry ports.UsernameRegistry
}

// NewCheckUsername builds the use case.
func NewCheckUsername(registry ports.UsernameRegistry) *CheckUsername {
	return &CheckUsername{registry: registry}
}

// Execute reports whether the username currently has no reservation.
// Blank input is vacuously available.
func (uc *CheckUsername) Execute(ctx context.Context, username string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return true, nil
	}
	return uc.registry.IsAvailable(ctx, username)
}
