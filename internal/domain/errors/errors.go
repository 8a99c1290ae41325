package errors

import "errors"

// Sentinel errors for handlers to map to HTTP status.
var (
	// ErrInvalidInput covers malformed email, password policy violations and
	// missing required fields, detected before any side effect.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is a bad password or unknown account.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailInUse means the gateway already holds a credential for the email.
	ErrEmailInUse = errors.New("email already in use")
	// ErrUsernameTaken means the username was claimed by someone else between
	// availability check and claim. Recoverable: retry with another username.
	ErrUsernameTaken = errors.New("username no longer available")
	// ErrProfileExists means a profile already exists for the identity.
	// Provisioning absorbs it into an Existing outcome rather than surfacing it.
	ErrProfileExists = errors.New("profile already exists for this identity")
	// ErrUpstreamUnavailable means the auth gateway or a store was unreachable
	// or timed out.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	// ErrCancelled means the principal aborted the federated flow.
	ErrCancelled = errors.New("authentication cancelled")
)
