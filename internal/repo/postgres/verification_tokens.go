package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/forevermatch/api/internal/domain/verification"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VerificationTokensRepo issues and consumes single-use email-verification
// tokens. One active token per user: issuing again overwrites the old row,
// which makes the prior link permanently unusable.
type VerificationTokensRepo struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

func NewVerificationTokensRepo(pool *pgxpool.Pool, ttl time.Duration) *VerificationTokensRepo {
	return &VerificationTokensRepo{pool: pool, ttl: ttl}
}

func (r *VerificationTokensRepo) Issue(ctx context.Context, userID string) (string, error) {
	token, err := verification.NewToken()

	if err != nil {
		return "", err
	}

	now := time.Now().UTC()

	_, err = r.pool.Exec(ctx, `
		INSERT INTO verification_tokens (user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at
	`, userID, token, now.Add(r.ttl), now)

	if err != nil {
		return "", err
	}

	return token, nil
}

// Consume deletes the token row and returns its user id. The conditional
// DELETE ... RETURNING is the atomicity guarantee: two concurrent consumes
// of the same token cannot both see a row, even across processes. Run it
// inside the caller's tx so MarkVerified commits with it.
func (r *VerificationTokensRepo) Consume(ctx context.Context, tx pgx.Tx, token string) (string, error) {
	var (
		userID    string
		expiresAt time.Time
	)

	err := tx.QueryRow(ctx, `
		DELETE FROM verification_tokens
		WHERE token = $1
		RETURNING user_id, expires_at
	`, token).Scan(&userID, &expiresAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", verification.ErrNotFound
		}

		return "", err
	}

	if time.Now().UTC().After(expiresAt) {
		// the row is gone either way; an expired link is never retried
		return "", verification.ErrExpired
	}

	return userID, nil
}

// Sweep purges expired rows. Purely opportunistic, Consume stays correct
// without it.
func (r *VerificationTokensRepo) Sweep(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM verification_tokens
		WHERE expires_at < NOW()
	`)

	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *VerificationTokensRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}
