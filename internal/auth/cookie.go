package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie the session token travels in.
const SessionCookieName = "session"

// CookieManager writes and removes the session cookie on outgoing
// responses. It never reads or mutates request state.
type CookieManager struct {
	secure bool
	ttl    time.Duration
}

func NewCookieManager(env string, ttl time.Duration) *CookieManager {
	return &CookieManager{
		secure: env == "prod",
		ttl:    ttl,
	}
}

func (c *CookieManager) SetSessionCookie(ctx *gin.Context, token string) {
	maxAge := int(c.ttl.Seconds())

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		SessionCookieName,
		token,
		maxAge,
		"/",
		"",
		c.secure,
		true, // HttpOnly.
	)
}

// ClearSessionCookie expires the cookie immediately. Idempotent, safe to
// call when no session exists.
func (c *CookieManager) ClearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		SessionCookieName,
		"",
		-1,
		"/",
		"",
		c.secure,
		true,
	)
}
