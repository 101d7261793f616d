package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/forevermatch/api/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type ActingUserReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// AdminGuard authorizes elevated endpoints. The session role alone is not
// enough: the bootstrap escape hatch (the distinguished first account may
// act as admin before any role exists) needs the user row, so the guard
// loads it and leaves it on the context for the handler.
type AdminGuard struct {
	users           ActingUserReader
	bootstrapUserID int64
}

func NewAdminGuard(users ActingUserReader, bootstrapUserID int64) *AdminGuard {
	return &AdminGuard{users: users, bootstrapUserID: bootstrapUserID}
}

func (g *AdminGuard) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := UserIDFromContext(c)

		if !ok || id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		acting, err := g.users.GetByID(ctx, id)

		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Unknown acting user",
				},
			})
			return
		}

		if acting.Role != user.RoleAdmin && acting.LegacySeq != g.bootstrapUserID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Admin role required",
				},
			})
			return
		}

		c.Set(ctxActingUserKey, acting)
		c.Next()
	}
}

func ActingUserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxActingUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
