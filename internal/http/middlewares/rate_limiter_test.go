package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func rateLimitedRouter(limit int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(limit, window)

	r := gin.New()
	r.POST("/login", rl.RateLimiterMiddleware(KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func hit(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":54321"
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	r := rateLimitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if rec := hit(r, "10.0.0.1"); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status got %d, want 204", i, rec.Code)
		}
	}

	rec := hit(r, "10.0.0.1")

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status got %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("429 response carries no Retry-After header")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	r := rateLimitedRouter(1, time.Minute)

	if rec := hit(r, "10.0.0.1"); rec.Code != http.StatusNoContent {
		t.Fatalf("first client: status got %d, want 204", rec.Code)
	}
	if rec := hit(r, "10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("first client again: status got %d, want 429", rec.Code)
	}

	// a different source address gets its own window
	if rec := hit(r, "10.0.0.2"); rec.Code != http.StatusNoContent {
		t.Fatalf("second client: status got %d, want 204", rec.Code)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	r := rateLimitedRouter(1, 20*time.Millisecond)

	if rec := hit(r, "10.0.0.1"); rec.Code != http.StatusNoContent {
		t.Fatalf("status got %d, want 204", rec.Code)
	}
	if rec := hit(r, "10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status got %d, want 429", rec.Code)
	}

	time.Sleep(30 * time.Millisecond)

	if rec := hit(r, "10.0.0.1"); rec.Code != http.StatusNoContent {
		t.Fatalf("after window: status got %d, want 204", rec.Code)
	}
}
