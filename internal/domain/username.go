package domain

import "time"

// UsernameReservation is the exclusivity record backing human-readable
// usernames. Case-sensitive, globally unique, owned by exactly one identity.
type UsernameReservation struct {
	Username  string
	UserID    UserID
	CreatedAt time.Time
}
