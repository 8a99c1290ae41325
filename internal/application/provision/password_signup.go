package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
	"github.com/Akr1040317/gatehouse/internal/domain"
	domerrors "github.com/Akr1040317/gatehouse/internal/domain/errors"
)

// PasswordSignupInput is the credential payload for the password path.
// Username must already have passed the advisory availability check; the
// claim below is still the authority.
type PasswordSignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
}

// PasswordSignup provisions a new account from an email/password credential:
// register at the gateway, request the verification email, claim the
// username, create the profile.
type PasswordSignup struct {
	gateway  ports.AuthGateway
	profiles ports.ProfileRepository
	registry ports.UsernameRegistry
}

// NewPasswordSignup builds the use case.
func NewPasswordSignup(gateway ports.AuthGateway, profiles ports.ProfileRepository, registry ports.UsernameRegistry) *PasswordSignup {
	return &PasswordSignup{gateway: gateway, profiles: profiles, registry: registry}
}

// Execute runs the password-path sign-up. Input is validated before any
// side effect; gateway rejections propagate untouched. The username is
// claimed before the profile is created so a claim failure never leaves an
// orphan profile, and a profile-create failure releases the claim again.
func (uc *PasswordSignup) Execute(ctx context.Context, input PasswordSignupInput) (*Outcome, error) {
	if err := ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domerrors.ErrInvalidInput)
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	identity, err := uc.gateway.RegisterWithCredential(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	// Best effort: the account exists unverified either way.
	verificationRequested := uc.gateway.RequestEmailVerification(ctx, identity.ID) == nil

	if err := uc.registry.Claim(ctx, username, identity.ID); err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{
		UserID:       identity.ID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        identity.Email,
		Username:     username,
		Verified:     false, // verification is asynchronous
		Role:         domain.RoleTier1,
		SignupMethod: domain.AuthMethodPassword,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.profiles.Create(ctx, profile); err != nil {
		// Release the claim so the username is not stranded without a profile.
		if relErr := uc.registry.Release(ctx, username, identity.ID); relErr != nil {
			return nil, errors.Join(err, relErr)
		}
		return nil, err
	}

	return &Outcome{
		Status:                StatusProvisioned,
		Profile:               profile,
		VerificationRequested: verificationRequested,
	}, nil
}
