package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/forevermatch/api/internal/auth"
	"github.com/forevermatch/api/internal/config"
	"github.com/forevermatch/api/internal/domain/user"
	"github.com/forevermatch/api/internal/domain/verification"
	"github.com/forevermatch/api/internal/http/middlewares"
	"github.com/forevermatch/api/internal/jobs"
	"github.com/forevermatch/api/internal/security"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, passwordHash string, profile user.Profile) (user.User, error)
}

// VerificationIssuer creates a fresh single-use token, overwriting any
// unconsumed one for that user.
type VerificationIssuer interface {
	Issue(ctx context.Context, userID string) (string, error)
}

// EmailVerifier consumes a token and marks the resolved user verified,
// atomically.
type EmailVerifier interface {
	VerifyEmail(ctx context.Context, token string) (string, error)
}

// EmailDispatcher hands the verification email off, either to the redis
// queue or straight to the provider. Never retried from here.
type EmailDispatcher interface {
	DispatchVerificationEmail(ctx context.Context, payload jobs.SendVerificationEmailPayload) error
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	tokens     VerificationIssuer
	verifier   EmailVerifier
	dispatcher EmailDispatcher
	hasher     *security.Hasher
	jwt        *auth.Manager
	cookies    *auth.CookieManager
	cfg        config.Config
	log        *slog.Logger
}

func NewAuthHandler(
	users UserReader,
	userWriter UserWriter,
	tokens VerificationIssuer,
	verifier EmailVerifier,
	dispatcher EmailDispatcher,
	hasher *security.Hasher,
	jwtManager *auth.Manager,
	cookies *auth.CookieManager,
	cfg config.Config,
	log *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		tokens:     tokens,
		verifier:   verifier,
		dispatcher: dispatcher,
		hasher:     hasher,
		jwt:        jwtManager,
		cookies:    cookies,
		cfg:        cfg,
		log:        log,
	}
}

type SignUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Gender      string `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)

	defer cancel()

	hash, err := h.hasher.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create account")
		return
	}

	u, err := h.userWriter.Create(cctx, req.Email, hash, user.Profile{
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
	})

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already registered.", nil)
			return
		}

		h.log.ErrorContext(cctx, "user create failed", "err", err)
		RespondDependencyUnavailable(ctx, "Could not create account")
		return
	}

	token, err := h.tokens.Issue(cctx, u.ID)

	if err != nil {
		h.log.ErrorContext(cctx, "verification token issue failed", "user_id", u.ID, "err", err)
		RespondDependencyUnavailable(ctx, "Could not start email verification")
		return
	}

	err = h.dispatchVerification(cctx, u, token, requestIDFrom(ctx))

	if err != nil {
		h.log.ErrorContext(cctx, "verification email dispatch failed", "user_id", u.ID, "err", err)
		RespondDependencyUnavailable(ctx, "Could not send verification email")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"userId":  u.ID,
		"message": "Account created. Check your email to verify your address.",
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// same answer as a wrong password, nothing leaks
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		h.log.ErrorContext(cctx, "user lookup failed", "err", err)
		RespondDependencyUnavailable(ctx, "Could not log in")
		return
	}

	err = h.hasher.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		if errors.Is(err, security.ErrInvalidHashFormat) {
			// stored hash is corrupt, this needs a human
			h.log.ErrorContext(cctx, "malformed password hash", "user_id", foundUser.ID, "err", err)
			RespondInternal(ctx, "Could not log in")
			return
		}

		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	if !foundUser.EmailVerified {
		RespondError(ctx, http.StatusForbidden, "email_not_verified", "Verify your email address before logging in.", nil)
		return
	}

	sessionToken, err := h.jwt.GenerateSessionToken(foundUser.ID, foundUser.Email, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.cookies.SetSessionCookie(ctx, sessionToken)

	ctx.JSON(http.StatusOK, gin.H{
		"user": foundUser,
	})
}

// VerifyEmail handles the link from the email. Expired and invalid are
// distinct outcomes on purpose: expired routes to the resend flow, invalid
// means the link was never real (or was already used).
func (h *AuthHandler) VerifyEmail(ctx *gin.Context) {
	token := ctx.Query("token")

	if token == "" {
		RespondBadRequest(ctx, "Missing verification token", nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	userID, err := h.verifier.VerifyEmail(cctx, token)

	if err != nil {
		switch {
		case errors.Is(err, verification.ErrExpired):
			RespondError(ctx, http.StatusNotFound, "token_expired", "This verification link has expired. Request a new one.", gin.H{"redirect": "/verification-expired"})
		case errors.Is(err, verification.ErrNotFound):
			RespondError(ctx, http.StatusNotFound, "token_invalid", "This verification link is not valid.", gin.H{"redirect": "/verification-error"})
		default:
			h.log.ErrorContext(cctx, "email verification failed", "err", err)
			RespondDependencyUnavailable(ctx, "Could not verify email")
		}
		return
	}

	h.log.InfoContext(cctx, "email verified", "user_id", userID)

	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"redirect": "/verification-success",
	})
}

// ResendVerification reissues the token, which permanently invalidates
// the previous link. The response never reveals whether the account
// exists.
func (h *AuthHandler) ResendVerification(ctx *gin.Context) {
	var req ResendRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	accepted := func() {
		ctx.JSON(http.StatusAccepted, gin.H{
			"message": "If that account needs verification, a new email is on its way.",
		})
	}

	u, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			accepted()
			return
		}

		h.log.ErrorContext(cctx, "user lookup failed", "err", err)
		RespondDependencyUnavailable(ctx, "Could not resend verification email")
		return
	}

	if u.EmailVerified {
		accepted()
		return
	}

	token, err := h.tokens.Issue(cctx, u.ID)

	if err != nil {
		h.log.ErrorContext(cctx, "verification token issue failed", "user_id", u.ID, "err", err)
		RespondDependencyUnavailable(ctx, "Could not resend verification email")
		return
	}

	err = h.dispatchVerification(cctx, u, token, requestIDFrom(ctx))

	if err != nil {
		h.log.ErrorContext(cctx, "verification email dispatch failed", "user_id", u.ID, "err", err)
		RespondDependencyUnavailable(ctx, "Could not resend verification email")
		return
	}

	accepted()
}

// Logout clears the cookie. There is no server-side session to tear
// down, so this cannot fail.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.cookies.ClearSessionCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// valid session for a deleted account
			RespondUnAuthorized(ctx, "unauthorized", "Account no longer exists")
			return
		}

		RespondDependencyUnavailable(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) dispatchVerification(ctx context.Context, u user.User, token, requestID string) error {
	return h.dispatcher.DispatchVerificationEmail(ctx, jobs.SendVerificationEmailPayload{
		UserID:          u.ID,
		Email:           u.Email,
		VerificationURL: verification.Link(h.cfg.PublicBaseURL, token),
		RequestID:       requestID,
	})
}
