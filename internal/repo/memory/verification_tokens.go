package memory

import (
	"context"
	"sync"
	"time"

	"github.com/forevermatch/api/internal/domain/verification"
)

// VerificationTokensRepo keeps tokens in maps under one mutex; the lock
// is what makes Consume single-winner here, the way the conditional
// DELETE is in postgres. Now is swappable so tests can move the clock.
type VerificationTokensRepo struct {
	mu      sync.Mutex
	byToken map[string]verification.Token
	byUser  map[string]string
	ttl     time.Duration

	Now func() time.Time
}

func NewVerificationTokensRepo(ttl time.Duration) *VerificationTokensRepo {
	return &VerificationTokensRepo{
		byToken: make(map[string]verification.Token),
		byUser:  make(map[string]string),
		ttl:     ttl,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *VerificationTokensRepo) Issue(ctx context.Context, userID string) (string, error) {
	token, err := verification.NewToken()

	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// overwrite on reissue: the old token becomes permanently unusable
	if old, ok := r.byUser[userID]; ok {
		delete(r.byToken, old)
	}

	now := r.Now()

	r.byToken[token] = verification.Token{
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
	}
	r.byUser[userID] = token

	return token, nil
}

func (r *VerificationTokensRepo) Consume(ctx context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.byToken[token]

	if !ok {
		return "", verification.ErrNotFound
	}

	delete(r.byToken, token)
	delete(r.byUser, row.UserID)

	if r.Now().After(row.ExpiresAt) {
		return "", verification.ErrExpired
	}

	return row.UserID, nil
}

func (r *VerificationTokensRepo) Sweep(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.Now()

	var purged int64

	for token, row := range r.byToken {
		if now.After(row.ExpiresAt) {
			delete(r.byToken, token)
			delete(r.byUser, row.UserID)
			purged++
		}
	}

	return purged, nil
}
