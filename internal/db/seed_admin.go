package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/forevermatch/api/internal/config"
	"github.com/forevermatch/api/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser seeds the configured admin account. The first row in the
// users table doubles as the bootstrap admin, so in a fresh deployment this
// runs before anything else touches the table.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE lower(email) = lower($1)`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.NewHasher(cfg.BcryptCost).HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, email_verified, role, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $5, $5)
		`,
		uuid.NewString(), strings.ToLower(cfg.AdminEmail), hash, cfg.AdminRole, now,
	)

	return err
}
