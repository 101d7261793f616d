package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

// verifiedUser walks the signup and verification flow and returns the
// user's id plus a logged-in session cookie.
func (e *testEnv) verifiedUser(t *testing.T, email string) (string, *http.Cookie) {
	t.Helper()

	userID := e.signUp(t, email, "correct horse battery")
	token := e.dispatcher.lastToken(t)

	if rec := e.do(t, http.MethodGet, "/verify-email?token="+token, ""); rec.Code != http.StatusOK {
		t.Fatalf("verify status got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	rec := e.do(t, http.MethodPost, "/login", `{"email":"`+email+`","password":"correct horse battery"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	return userID, e.sessionFor(t, rec)
}

func TestPromote_BootstrapEscapeHatch(t *testing.T) {
	env := newTestEnv(t)

	// the first account ever created is the bootstrap account
	_, bootstrapSession := env.verifiedUser(t, "first@example.com")
	secondID, secondSession := env.verifiedUser(t, "second@example.com")
	thirdID, _ := env.verifiedUser(t, "third@example.com")

	// an ordinary user cannot promote
	rec := env.do(t, http.MethodPost, "/admin/promote", `{"userId":"`+thirdID+`"}`, secondSession)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("ordinary user: status got %d, want 403 (%s)", rec.Code, rec.Body.String())
	}

	// the bootstrap account can, even with role still "user"
	rec = env.do(t, http.MethodPost, "/admin/promote", `{"userId":"`+secondID+`"}`, bootstrapSession)

	if rec.Code != http.StatusOK {
		t.Fatalf("bootstrap promote: status got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	u, err := env.users.GetByID(context.Background(), secondID)

	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if u.Role != "admin" {
		t.Fatalf("role got %q, want admin", u.Role)
	}

	// a promoted admin can promote in turn, with the session issued
	// before the promotion: the guard reads the user row, not the token
	rec = env.do(t, http.MethodPost, "/admin/promote", `{"userId":"`+thirdID+`"}`, secondSession)

	if rec.Code != http.StatusOK {
		t.Fatalf("admin promote: status got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	u, err = env.users.GetByID(context.Background(), thirdID)

	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if u.Role != "admin" {
		t.Fatalf("role got %q, want admin", u.Role)
	}
}

func TestPromote_UnknownTarget(t *testing.T) {
	env := newTestEnv(t)

	_, bootstrapSession := env.verifiedUser(t, "first@example.com")

	rec := env.do(t, http.MethodPost, "/admin/promote", `{"userId":"no-such-user"}`, bootstrapSession)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status got %d, want 404 (%s)", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "user_not_found" {
		t.Fatalf("code got %q, want user_not_found", code)
	}
}

func TestPromote_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/admin/promote", `{"userId":"anything"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status got %d, want 401 (%s)", rec.Code, rec.Body.String())
	}
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)

	_, bootstrapSession := env.verifiedUser(t, "first@example.com")
	env.verifiedUser(t, "second@example.com")
	env.verifiedUser(t, "third@example.com")

	rec := env.do(t, http.MethodGet, "/admin/users?limit=2", "", bootstrapSession)

	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Users []struct {
			Email        string `json:"email"`
			PasswordHash string `json:"passwordHash"`
		} `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response was not json: %v", err)
	}
	if len(body.Users) != 2 {
		t.Fatalf("len got %d, want 2", len(body.Users))
	}
	if body.Users[0].Email != "first@example.com" || body.Users[1].Email != "second@example.com" {
		t.Fatalf("unexpected order: %+v", body.Users)
	}
	for _, u := range body.Users {
		if u.PasswordHash != "" {
			t.Fatalf("password hash leaked for %s", u.Email)
		}
	}
}

func TestListUsers_BadLimit(t *testing.T) {
	env := newTestEnv(t)

	_, bootstrapSession := env.verifiedUser(t, "first@example.com")

	for _, raw := range []string{"0", "-5", "abc"} {
		rec := env.do(t, http.MethodGet, "/admin/users?limit="+raw, "", bootstrapSession)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("limit=%s: status got %d, want 400 (%s)", raw, rec.Code, rec.Body.String())
		}
	}
}
