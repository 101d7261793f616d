package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/forevermatch/api/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo is the in-memory mirror of the postgres users repo, used by
// handler tests.
type UsersRepo struct {
	mu      sync.RWMutex
	byID    map[string]user.User
	nextSeq int64
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		byID: make(map[string]user.User),
	}
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)

	for _, u := range r.byID {
		if strings.ToLower(u.Email) == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash string, profile user.Profile) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = strings.ToLower(email)

	for _, u := range r.byID {
		if strings.ToLower(u.Email) == email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	now := time.Now().UTC()
	r.nextSeq++

	u := user.User{
		ID:           uuid.NewString(),
		LegacySeq:    r.nextSeq,
		Email:        email,
		PasswordHash: passwordHash,
		Gender:       profile.Gender,
		DateOfBirth:  profile.DateOfBirth,
		Role:         user.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[u.ID] = u

	return u, nil
}

func (r *UsersRepo) MarkVerified(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]

	if !ok {
		return user.ErrNotFound
	}

	u.EmailVerified = true
	u.UpdatedAt = time.Now().UTC()
	r.byID[id] = u

	return nil
}

func (r *UsersRepo) UpdateRole(ctx context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]

	if !ok {
		return user.ErrNotFound
	}

	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	r.byID[id] = u

	return nil
}

func (r *UsersRepo) List(ctx context.Context, limit int) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > 200 {
		limit = 100
	}

	users := make([]user.User, 0, len(r.byID))

	for _, u := range r.byID {
		users = append(users, u)
	}

	// stable order by insertion ordinal
	sort.Slice(users, func(i, j int) bool {
		return users[i].LegacySeq < users[j].LegacySeq
	})

	if len(users) > limit {
		users = users[:limit]
	}

	return users, nil
}
