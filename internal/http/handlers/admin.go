package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/forevermatch/api/internal/domain/user"
	"github.com/forevermatch/api/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type RoleUpdater interface {
	UpdateRole(ctx context.Context, id, role string) error
}

type UserLister interface {
	List(ctx context.Context, limit int) ([]user.User, error)
}

type AdminHandler struct {
	users  UserReader
	roles  RoleUpdater
	lister UserLister
	log    *slog.Logger
}

func NewAdminHandler(users UserReader, roles RoleUpdater, lister UserLister, log *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:  users,
		roles:  roles,
		lister: lister,
		log:    log,
	}
}

type PromoteRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// Promote grants the admin role. The guard middleware has already checked
// that the acting user is an admin or the bootstrap account.
func (h *AdminHandler) Promote(ctx *gin.Context) {
	var req PromoteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	acting, ok := middlewares.ActingUserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	target, err := h.users.GetByID(cctx, req.UserID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "user_not_found", "No such user.")
			return
		}

		RespondDependencyUnavailable(ctx, "Could not promote user")
		return
	}

	err = h.roles.UpdateRole(cctx, target.ID, user.RoleAdmin)

	if err != nil {
		RespondDependencyUnavailable(ctx, "Could not promote user")
		return
	}

	// the bootstrap path is a one-time escape hatch; make its use visible
	h.log.InfoContext(cctx, "user promoted to admin",
		"target_id", target.ID,
		"acting_id", acting.ID,
		"via_bootstrap", acting.Role != user.RoleAdmin,
	)

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	limit := 100

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil || n <= 0 {
			RespondBadRequest(ctx, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	users, err := h.lister.List(cctx, limit)

	if err != nil {
		RespondDependencyUnavailable(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": users})
}
