package postgres

import (
	"context"
	"errors"

	"github.com/forevermatch/api/internal/domain/verification"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EmailVerifier runs token consumption and the email_verified flip in one
// transaction: both land or neither does. An expired token still commits,
// because detecting expiry deletes the row as a side effect and that
// deletion must stick.
type EmailVerifier struct {
	pool   *pgxpool.Pool
	tokens *VerificationTokensRepo
	users  *UsersRepo
}

func NewEmailVerifier(pool *pgxpool.Pool, tokens *VerificationTokensRepo, users *UsersRepo) *EmailVerifier {
	return &EmailVerifier{pool: pool, tokens: tokens, users: users}
}

func (v *EmailVerifier) VerifyEmail(ctx context.Context, token string) (string, error) {
	tx, err := v.pool.Begin(ctx)

	if err != nil {
		return "", err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	userID, err := v.tokens.Consume(ctx, tx, token)

	if err != nil {
		if errors.Is(err, verification.ErrExpired) {
			// keep the delete of the stale row
			_ = tx.Commit(ctx)
		}

		return "", err
	}

	err = v.users.MarkVerified(ctx, tx, userID)

	if err != nil {
		return "", err
	}

	err = tx.Commit(ctx)

	if err != nil {
		return "", err
	}

	return userID, nil
}
