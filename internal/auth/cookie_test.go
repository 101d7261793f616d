package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	res := rec.Result()
	defer res.Body.Close()

	for _, c := range res.Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("response carried no %q cookie", SessionCookieName)
	return nil
}

func TestSetSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	cm := NewCookieManager("dev", 2*time.Hour)
	cm.SetSessionCookie(ctx, "token-value")

	c := sessionCookie(t, rec)

	if c.Value != "token-value" {
		t.Fatalf("value got %q, want %q", c.Value, "token-value")
	}
	if !c.HttpOnly {
		t.Fatalf("cookie is not HttpOnly")
	}
	if c.Secure {
		t.Fatalf("cookie is Secure outside prod")
	}
	if c.Path != "/" {
		t.Fatalf("path got %q, want /", c.Path)
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("sameSite got %v, want Lax", c.SameSite)
	}
	if c.MaxAge != int((2 * time.Hour).Seconds()) {
		t.Fatalf("maxAge got %d, want %d", c.MaxAge, int((2*time.Hour).Seconds()))
	}
}

func TestSetSessionCookie_SecureInProd(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	cm := NewCookieManager("prod", time.Hour)
	cm.SetSessionCookie(ctx, "token-value")

	if c := sessionCookie(t, rec); !c.Secure {
		t.Fatalf("cookie is not Secure in prod")
	}
}

func TestClearSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	cm := NewCookieManager("dev", time.Hour)
	cm.ClearSessionCookie(ctx)

	c := sessionCookie(t, rec)

	if c.Value != "" {
		t.Fatalf("cleared cookie still carries value %q", c.Value)
	}
	if c.MaxAge >= 0 {
		t.Fatalf("maxAge got %d, want negative", c.MaxAge)
	}
}
