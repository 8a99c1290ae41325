package domain

// AuthMethod is how a principal authenticated (and, on profiles, how the
// account was originally created).
type AuthMethod string

const (
	AuthMethodPassword  AuthMethod = "password"
	AuthMethodFederated AuthMethod = "federated"
)

// UserID is a value object for principal identity. Opaque, stable per
// authenticated principal; federated IDs carry a provider prefix.
type UserID string

// NewUserID creates a UserID from its string form.
func NewUserID(id string) UserID { return UserID(id) }

// String returns the canonical string form.
func (u UserID) String() string { return string(u) }

// IsZero reports whether the ID is unset.
func (u UserID) IsZero() bool { return u == "" }

// Identity is the authenticated-principal record returned by the auth
// gateway. Immutable once issued.
type Identity struct {
	ID            UserID
	Email         string
	DisplayName   string // federated logins only; may be empty
	EmailVerified bool
	Method        AuthMethod
}
