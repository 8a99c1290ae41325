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

// CredentialSigninInput is an email/password pair for an existing credential.
type CredentialSigninInput struct {
	Email    string
	Password string
}

// CredentialSignin authenticates an email/password credential and re-enters
// provisioning: identities whose profile document went missing get a minimal
// one backfilled (no names, no username) instead of failing the sign-in.
type CredentialSignin struct {
	gateway  ports.AuthGateway
	profiles ports.ProfileRepository
}

// NewCredentialSignin builds the use case.
func NewCredentialSignin(gateway ports.AuthGateway, profiles ports.ProfileRepository) *CredentialSignin {
	return &CredentialSignin{gateway: gateway, profiles: profiles}
}

// Execute verifies the credential, then returns the existing profile or
// conditionally creates the minimal backfill one. Races converge on
// Existing like the federated path.
func (uc *CredentialSignin) Execute(ctx context.Context, input CredentialSigninInput) (*Outcome, error) {
	if input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domerrors.ErrInvalidInput)
	}

	identity, err := uc.gateway.AuthenticateWithCredential(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	existing, err := uc.profiles.Get(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Outcome{Status: StatusExisting, Profile: existing}, nil
	}

	profile := &domain.UserProfile{
		UserID:       identity.ID,
		Email:        identity.Email,
		Verified:     identity.EmailVerified,
		Role:         domain.RoleTier1,
		SignupMethod: domain.AuthMethodPassword,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, domerrors.ErrProfileExists) {
			profile, err := uc.profiles.Get(ctx, identity.ID)
			if err != nil {
				return nil, err
			}
			return &Outcome{Status: StatusExisting, Profile: profile}, nil
		}
		return nil, err
	}
	return &Outcome{Status: StatusProvisioned, Profile: profile}, nil
}
