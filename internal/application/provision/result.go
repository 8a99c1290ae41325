package provision

import "github.com/Akr1040317/gatehouse/internal/domain"

// Status is the terminal state of a successful provisioning attempt.
// Failed attempts are reported as errors, classified by the sentinels in
// internal/domain/errors.
type Status string

const (
	// StatusProvisioned means a new account was fully set up.
	StatusProvisioned Status = "provisioned"
	// StatusExisting means the identity already had a profile; no writes.
	StatusExisting Status = "existing"
)

// Outcome is the tagged result every provisioning entry point returns.
type Outcome struct {
	Status  Status
	Profile *domain.UserProfile
	// VerificationRequested reports whether the verification email was
	// accepted by the gateway. Password signups only; a failed send never
	// aborts provisioning.
	VerificationRequested bool
}
