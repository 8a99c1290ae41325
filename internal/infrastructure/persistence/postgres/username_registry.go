package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
	"github.com/Akr1040317/gatehouse/internal/domain"
	domerrors "github.com/Akr1040317/gatehouse/internal/domain/errors"
)

const (
	claimUsernameSQL = `INSERT INTO usernames (username, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (username) DO NOTHING`
	releaseUsernameSQL  = `DELETE FROM usernames WHERE username = $1 AND user_id = $2`
	usernameTakenSQL    = `SELECT EXISTS(SELECT 1 FROM usernames WHERE username = $1)`
	getReservationSQL   = `SELECT username, user_id, created_at FROM usernames WHERE username = $1`
)

// UsernameRegistry implements ports.UsernameRegistry on Postgres. The
// username column is the primary key, so Claim is a true exclusive create:
// of two concurrent claims exactly one inserts a row.
type UsernameRegistry struct {
	pool *pgxpool.Pool
}

func NewUsernameRegistry(pool *pgxpool.Pool) *UsernameRegistry {
	return &UsernameRegistry{pool: pool}
}

func (r *UsernameRegistry) IsAvailable(ctx context.Context, username string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return true, nil
	}
	var taken bool
	if err := r.pool.QueryRow(ctx, usernameTakenSQL, username).Scan(&taken); err != nil {
		return false, fmt.Errorf("%w: username availability check: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	return !taken, nil
}

func (r *UsernameRegistry) Claim(ctx context.Context, username string, userID domain.UserID) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: cannot claim a blank username", domerrors.ErrInvalidInput)
	}
	ct, err := r.pool.Exec(ctx, claimUsernameSQL, username, userID.String())
	if err != nil {
		return fmt.Errorf("%w: claim username: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	if ct.RowsAffected() == 0 {
		return domerrors.ErrUsernameTaken
	}
	return nil
}

func (r *UsernameRegistry) Release(ctx context.Context, username string, userID domain.UserID) error {
	// Owner-scoped delete: never removes a reservation claimed by someone else.
	if _, err := r.pool.Exec(ctx, releaseUsernameSQL, username, userID.String()); err != nil {
		return fmt.Errorf("%w: release username: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	return nil
}

func (r *UsernameRegistry) Get(ctx context.Context, username string) (*domain.UsernameReservation, error) {
	var (
		res domain.UsernameReservation
		id  string
	)
	err := r.pool.QueryRow(ctx, getReservationSQL, username).Scan(&res.Username, &id, &res.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get reservation: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	res.UserID = domain.NewUserID(id)
	return &res, nil
}

// Ensure UsernameRegistry implements ports.UsernameRegistry.
var _ ports.UsernameRegistry = (*UsernameRegistry)(nil)
