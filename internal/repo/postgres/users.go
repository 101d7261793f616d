package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/forevermatch/api/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, legacy_seq, email, password_hash, gender, date_of_birth, email_verified, role, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.LegacySeq,
		&u.Email,
		&u.PasswordHash,
		&u.Gender,
		&u.DateOfBirth,
		&u.EmailVerified,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// GetByEmail looks a user up case-insensitively; emails are stored
// lowercased but old rows may predate that.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+`
         FROM users
         WHERE lower(email) = lower($1)`,
		email,
	))
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return scanUser(r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+`
         FROM users
         WHERE id = $1`,
		id,
	))
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash string, profile user.Profile) (user.User, error) {
	now := time.Now().UTC()
	id := uuid.NewString()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, gender, date_of_birth, email_verified, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7, $7)
		 RETURNING `+userColumns,
		id, strings.ToLower(email), passwordHash, profile.Gender, profile.DateOfBirth, user.RoleUser, now,
	)

	u, err := scanUser(row)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

// MarkVerified flips email_verified inside the caller's transaction so it
// commits or rolls back together with the token consumption.
func (r *UsersRepo) MarkVerified(ctx context.Context, tx pgx.Tx, id string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET email_verified = TRUE, updated_at = NOW()
		WHERE id = $1
	`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) UpdateRole(ctx context.Context, id, role string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET role = $2, updated_at = NOW()
		WHERE id = $1
	`, id, role)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) List(ctx context.Context, limit int) ([]user.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 ORDER BY legacy_seq ASC
		 LIMIT $1`,
		limit,
	)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User

	for rows.Next() {
		u, err := scanUser(rows)

		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (r *UsersRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}
