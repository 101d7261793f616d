package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/forevermatch/api/internal/domain/verification"
)

func TestVerificationTokens_ConsumeOnce(t *testing.T) {
	repo := NewVerificationTokensRepo(24 * time.Hour)
	ctx := context.Background()

	token, err := repo.Issue(ctx, "user-1")

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatalf("Issue returned an empty token")
	}

	userID, err := repo.Consume(ctx, token)

	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("userID got %q, want %q", userID, "user-1")
	}

	// the token is single-use
	_, err = repo.Consume(ctx, token)

	if !errors.Is(err, verification.ErrNotFound) {
		t.Fatalf("second consume: got %v, want ErrNotFound", err)
	}
}

func TestVerificationTokens_UnknownToken(t *testing.T) {
	repo := NewVerificationTokensRepo(24 * time.Hour)

	_, err := repo.Consume(context.Background(), "never-issued")

	if !errors.Is(err, verification.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestVerificationTokens_ReissueInvalidatesPrior(t *testing.T) {
	repo := NewVerificationTokensRepo(24 * time.Hour)
	ctx := context.Background()

	first, err := repo.Issue(ctx, "user-1")

	if err != nil {
		t.Fatalf("first Issue failed: %v", err)
	}

	second, err := repo.Issue(ctx, "user-1")

	if err != nil {
		t.Fatalf("second Issue failed: %v", err)
	}
	if first == second {
		t.Fatalf("reissue returned the same token")
	}

	if _, err := repo.Consume(ctx, first); !errors.Is(err, verification.ErrNotFound) {
		t.Fatalf("stale token: got %v, want ErrNotFound", err)
	}

	userID, err := repo.Consume(ctx, second)

	if err != nil {
		t.Fatalf("fresh token failed: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("userID got %q, want %q", userID, "user-1")
	}
}

func TestVerificationTokens_Expired(t *testing.T) {
	repo := NewVerificationTokensRepo(24 * time.Hour)
	ctx := context.Background()

	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.Now = func() time.Time { return issued }

	token, err := repo.Issue(ctx, "user-1")

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	repo.Now = func() time.Time { return issued.Add(24*time.Hour + time.Second) }

	_, err = repo.Consume(ctx, token)

	if !errors.Is(err, verification.ErrExpired) {
		t.Fatalf("got %v, want ErrExpired", err)
	}

	// an expired consume still removes the row
	_, err = repo.Consume(ctx, token)

	if !errors.Is(err, verification.ErrNotFound) {
		t.Fatalf("retry after expiry: got %v, want ErrNotFound", err)
	}
}

func TestVerificationTokens_Sweep(t *testing.T) {
	repo := NewVerificationTokensRepo(24 * time.Hour)
	ctx := context.Background()

	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.Now = func() time.Time { return issued }

	expired, err := repo.Issue(ctx, "user-1")

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	repo.Now = func() time.Time { return issued.Add(20 * time.Hour) }

	live, err := repo.Issue(ctx, "user-2")

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	repo.Now = func() time.Time { return issued.Add(25 * time.Hour) }

	purged, err := repo.Sweep(ctx)

	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged got %d, want 1", purged)
	}

	if _, err := repo.Consume(ctx, expired); !errors.Is(err, verification.ErrNotFound) {
		t.Fatalf("swept token: got %v, want ErrNotFound", err)
	}
	if _, err := repo.Consume(ctx, live); err != nil {
		t.Fatalf("live token failed: %v", err)
	}
}
