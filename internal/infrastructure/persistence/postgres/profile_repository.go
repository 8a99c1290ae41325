package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
	"github.com/Akr1040317/gatehouse/internal/domain"
	domerrors "github.com/Akr1040317/gatehouse/internal/domain/errors"
)

const (
	// ON CONFLICT DO NOTHING is the exclusive-create primitive: a row that
	// already exists is never overwritten, and RowsAffected tells the loser.
	createProfileSQL = `INSERT INTO profiles
		(user_id, first_name, last_name, email, username, verified, role, signup_method, created_at, last_logged_on, last_logged_off)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL, NULL)
		ON CONFLICT (user_id) DO NOTHING`
	getProfileSQL = `SELECT user_id, first_name, last_name, email, username, verified, role, signup_method, created_at, last_logged_on, last_logged_off
		FROM profiles WHERE user_id = $1`
	profileExistsSQL = `SELECT EXISTS(SELECT 1 FROM profiles WHERE user_id = $1)`
)

// ProfileRepository implements ports.ProfileRepository on Postgres.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	ct, err := r.pool.Exec(ctx, createProfileSQL,
		profile.UserID.String(),
		profile.FirstName,
		profile.LastName,
		profile.Email,
		profile.Username,
		profile.Verified,
		string(profile.Role),
		string(profile.SignupMethod),
		profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert profile: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	if ct.RowsAffected() == 0 {
		return domerrors.ErrProfileExists
	}
	return nil
}

func (r *ProfileRepository) Exists(ctx context.Context, userID domain.UserID) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, profileExistsSQL, userID.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: profile existence check: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	return exists, nil
}

func (r *ProfileRepository) Get(ctx context.Context, userID domain.UserID) (*domain.UserProfile, error) {
	var (
		p      domain.UserProfile
		id     string
		role   string
		method string
	)
	err := r.pool.QueryRow(ctx, getProfileSQL, userID.String()).Scan(
		&id, &p.FirstName, &p.LastName, &p.Email, &p.Username,
		&p.Verified, &role, &method, &p.CreatedAt, &p.LastLoggedOn, &p.LastLoggedOff,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get profile: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	p.UserID = domain.NewUserID(id)
	p.Role = domain.Role(role)
	p.SignupMethod = domain.AuthMethod(method)
	return &p, nil
}

// Ensure ProfileRepository implements ports.ProfileRepository.
var _ ports.ProfileRepository = (*ProfileRepository)(nil)
