package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
	"github.com/Akr1040317/gatehouse/internal/domain"
	domerrors "github.com/Akr1040317/gatehouse/internal/domain/errors"
)

// FederatedInput carries the identity obtained from a completed federated
// handshake. The provider asserts EmailVerified for these identities.
type FederatedInput struct {
	Identity domain.Identity
}

// Federated provisions or recognizes an account for a federated identity.
// Sign-up and sign-in share this logic: the handshake is idempotent for a
// returning identity, so the only question is whether a profile exists yet.
type Federated struct {
	profiles ports.ProfileRepository
}

// NewFederated builds the use case.
func NewFederated(profiles ports.ProfileRepository) *Federated {
	return &Federated{profiles: profiles}
}

// Execute returns Existing without writes when a profile is present,
// otherwise creates one in the username-pending state (empty username,
// names derived from the display name). A lost creation race is absorbed
// into Existing: the net effect, one profile, is what matters.
func (uc *Federated) Execute(ctx context.Context, input FederatedInput) (*Outcome, error) {
	identity := input.Identity
	if identity.ID.IsZero() {
		return nil, fmt.Errorf("%w: identity is required", domerrors.ErrInvalidInput)
	}

	exists, err := uc.profiles.Exists(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return uc.existing(ctx, identity.ID)
	}

	first, last := domain.SplitDisplayName(identity.DisplayName)
	profile := &domain.UserProfile{
		UserID:       identity.ID,
		FirstName:    first,
		LastName:     last,
		Email:        identity.Email,
		Username:     "", // pending completion; exempt from uniqueness
		Verified:     identity.EmailVerified,
		Role:         domain.RoleTier1,
		SignupMethod: domain.AuthMethodFederated,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, domerrors.ErrProfileExists) {
			// Lost a concurrent-login race; the winner's profile stands.
			return uc.existing(ctx, identity.ID)
		}
		return nil, err
	}
	return &Outcome{Status: StatusProvisioned, Profile: profile}, nil
}

func (uc *Federated) existing(ctx context.Context, userID domain.UserID) (*Outcome, error) {
	profile, err := uc.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: profile vanished after existence check", domerrors.ErrUpstreamUnavailable)
	}
	return &Outcome{Status: StatusExisting, Profile: profile}, nil
}
