package ports

import (
	"context"

	"github.com/Akr1040317/gatehouse/internal/domain"
)

// AuthGateway is the credential-verification authority consumed by
// provisioning. It owns password hashing, credential storage and email
// verification delivery; provisioning only consumes the identities it
// returns. Federated handshakes complete at the HTTP edge (OAuth redirect
// flow) and hand a normalized domain.Identity to the coordinator directly.
type AuthGateway interface {
	// RegisterWithCredential registers a new email/password credential and
	// returns the minted identity. Returns domain/errors.ErrEmailInUse when
	// a credential already exists for the email.
	RegisterWithCredential(ctx context.Context, email, password string) (*domain.Identity, error)
	// AuthenticateWithCredential verifies an email/password pair. Returns
	// domain/errors.ErrInvalidCredentials for a bad password or unknown
	// account.
	AuthenticateWithCredential(ctx context.Context, email, password string) (*domain.Identity, error)
	// RequestEmailVerification asks the gateway to send a verification email
	// for the identity. Best effort: a failure is reported but must not
	// abort the caller's provisioning attempt.
	RequestEmailVerification(ctx context.Context, userID domain.UserID) error
}
