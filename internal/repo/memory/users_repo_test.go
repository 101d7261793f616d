package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/forevermatch/api/internal/domain/user"
	"github.com/forevermatch/api/internal/domain/verification"
)

func TestUsersRepo_CreateAndLookup(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, "Sam@Example.com", "hash", user.Profile{Gender: "female", DateOfBirth: "1994-03-12"})

	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Email != "sam@example.com" {
		t.Fatalf("email got %q, want lowercase", created.Email)
	}
	if created.LegacySeq != 1 {
		t.Fatalf("legacySeq got %d, want 1", created.LegacySeq)
	}
	if created.Role != user.RoleUser {
		t.Fatalf("role got %q, want %q", created.Role, user.RoleUser)
	}
	if created.EmailVerified {
		t.Fatalf("new user is already verified")
	}

	// email lookup is case-insensitive
	byEmail, err := repo.GetByEmail(ctx, "SAM@example.COM")

	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("GetByEmail returned a different user")
	}

	byID, err := repo.GetByID(ctx, created.ID)

	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.ID != created.ID {
		t.Fatalf("GetByID returned a different user")
	}
}

func TestUsersRepo_DuplicateEmail(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	if _, err := repo.Create(ctx, "sam@example.com", "hash", user.Profile{}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := repo.Create(ctx, "SAM@example.com", "hash", user.Profile{})

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestUsersRepo_MarkVerified(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, "sam@example.com", "hash", user.Profile{})

	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.MarkVerified(ctx, created.ID); err != nil {
		t.Fatalf("MarkVerified failed: %v", err)
	}

	u, err := repo.GetByID(ctx, created.ID)

	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !u.EmailVerified {
		t.Fatalf("user is still unverified")
	}

	if err := repo.MarkVerified(ctx, "missing"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUsersRepo_List(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if _, err := repo.Create(ctx, email, "hash", user.Profile{}); err != nil {
			t.Fatalf("Create(%q) failed: %v", email, err)
		}
	}

	users, err := repo.List(ctx, 2)

	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len got %d, want 2", len(users))
	}
	if users[0].Email != "a@example.com" || users[1].Email != "b@example.com" {
		t.Fatalf("list is not in insertion order: %q, %q", users[0].Email, users[1].Email)
	}
}

func TestEmailVerifier_VerifyEmail(t *testing.T) {
	users := NewUsersRepo()
	tokens := NewVerificationTokensRepo(24 * time.Hour)
	verifier := &EmailVerifier{Tokens: tokens, Users: users}
	ctx := context.Background()

	created, err := users.Create(ctx, "sam@example.com", "hash", user.Profile{})

	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	token, err := tokens.Issue(ctx, created.ID)

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	userID, err := verifier.VerifyEmail(ctx, token)

	if err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	if userID != created.ID {
		t.Fatalf("userID got %q, want %q", userID, created.ID)
	}

	u, err := users.GetByID(ctx, created.ID)

	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !u.EmailVerified {
		t.Fatalf("user is still unverified after VerifyEmail")
	}

	if _, err := verifier.VerifyEmail(ctx, token); !errors.Is(err, verification.ErrNotFound) {
		t.Fatalf("replayed token: got %v, want ErrNotFound", err)
	}
}
