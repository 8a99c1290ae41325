// Package gateway provides the credential-verification authority behind
// ports.AuthGateway: identity records, Argon2id credential checks and
// email verification token issuance, backed by Postgres.
package gateway

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
	"github.com/Akr1040317/gatehouse/internal/domain"
	domerrors "github.com/Akr1040317/gatehouse/internal/domain/errors"
)

const (
	insertIdentitySQL = `INSERT INTO identities (id, email, password_hash, email_verified, created_at)
		VALUES ($1, $2, $3, false, NOW())
		ON CONFLICT (email) DO NOTHING`
	getIdentityByEmailSQL = `SELECT id, password_hash, email_verified FROM identities WHERE email = $1`
	getIdentityEmailSQL   = `SELECT email FROM identities WHERE id = $1`

	insertVerificationSQL = `INSERT INTO email_verifications (id, user_id, email, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`
	consumeVerificationSQL = `UPDATE email_verifications SET used_at = NOW()
		WHERE token_hash = $1 AND expires_at > NOW() AND used_at IS NULL
		RETURNING user_id`
	markVerifiedSQL = `UPDATE identities SET email_verified = true WHERE id = $1`
)

// Local is a self-hosted AuthGateway: credentials live in the identities
// table, verification emails go out through the task queue.
type Local struct {
	pool          *pgxpool.Pool
	hasher        ports.PasswordHasher
	enqueuer      ports.TaskEnqueuer
	verifyBaseURL string
	verifyExpiry  int64 // seconds
}

// NewLocal builds the gateway. expirySecs <= 0 defaults to 24h.
func NewLocal(pool *pgxpool.Pool, hasher ports.PasswordHasher, enqueuer ports.TaskEnqueuer, verifyBaseURL string, expirySecs int64) *Local {
	if expirySecs <= 0 {
		expirySecs = 86400
	}
	return &Local{
		pool:          pool,
		hasher:        hasher,
		enqueuer:      enqueuer,
		verifyBaseURL: verifyBaseURL,
		verifyExpiry:  expirySecs,
	}
}

func (g *Local) RegisterWithCredential(ctx context.Context, email, password string) (*domain.Identity, error) {
	hash, err := g.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	ct, err := g.pool.Exec(ctx, insertIdentitySQL, id, email, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: insert identity: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	if ct.RowsAffected() == 0 {
		return nil, domerrors.ErrEmailInUse
	}
	return &domain.Identity{
		ID:     domain.NewUserID(id),
		Email:  email,
		Method: domain.AuthMethodPassword,
	}, nil
}

func (g *Local) AuthenticateWithCredential(ctx context.Context, email, password string) (*domain.Identity, error) {
	var (
		id       string
		hash     string
		verified bool
	)
	err := g.pool.QueryRow(ctx, getIdentityByEmailSQL, email).Scan(&id, &hash, &verified)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domerrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: lookup identity: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	if !g.hasher.Verify(password, hash) {
		return nil, domerrors.ErrInvalidCredentials
	}
	return &domain.Identity{
		ID:            domain.NewUserID(id),
		Email:         email,
		EmailVerified: verified,
		Method:        domain.AuthMethodPassword,
	}, nil
}

// RequestEmailVerification mints a single-use token, stores its hash and
// enqueues the email. Callers treat failures as non-fatal.
func (g *Local) RequestEmailVerification(ctx context.Context, userID domain.UserID) error {
	var email string
	err := g.pool.QueryRow(ctx, getIdentityEmailSQL, userID.String()).Scan(&email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("%w: unknown identity", domerrors.ErrInvalidInput)
		}
		return fmt.Errorf("%w: lookup identity: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)
	expiresAt := time.Now().Add(time.Duration(g.verifyExpiry) * time.Second)
	_, err = g.pool.Exec(ctx, insertVerificationSQL, uuid.NewString(), userID.String(), email, hashToken(token), expiresAt)
	if err != nil {
		return fmt.Errorf("%w: store verification token: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	verifyURL := fmt.Sprintf("%s?token=%s", g.verifyBaseURL, token)
	return g.enqueuer.EnqueueSendEmailVerification(ctx, userID.String(), email, verifyURL)
}

// VerifyEmail consumes a verification token and flips the identity's
// email_verified flag. Profiles are untouched: their Verified field is a
// creation-time snapshot and later flips belong to other subsystems.
func (g *Local) VerifyEmail(ctx context.Context, token string) error {
	var userID string
	err := g.pool.QueryRow(ctx, consumeVerificationSQL, hashToken(token)).Scan(&userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("%w: invalid or expired token", domerrors.ErrInvalidInput)
		}
		return fmt.Errorf("%w: consume verification token: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	if _, err := g.pool.Exec(ctx, markVerifiedSQL, userID); err != nil {
		return fmt.Errorf("%w: mark identity verified: %v", domerrors.ErrUpstreamUnavailable, err)
	}
	return nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// Ensure Local implements ports.AuthGateway.
var _ ports.AuthGateway = (*Local)(nil)
