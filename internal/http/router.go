package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/forevermatch/api/internal/auth"
	"github.com/forevermatch/api/internal/config"
	"github.com/forevermatch/api/internal/http/handlers"
	"github.com/forevermatch/api/internal/http/middlewares"
	"github.com/forevermatch/api/internal/notifications"
	"github.com/forevermatch/api/internal/observability"
	"github.com/forevermatch/api/internal/queue"
	"github.com/forevermatch/api/internal/queue/redisclient"
	"github.com/forevermatch/api/internal/repo/postgres"
	"github.com/forevermatch/api/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(
	log *slog.Logger,
	pool *pgxpool.Pool,
	queueClient *redisclient.Client,
	cfg config.Config,
	prom *observability.Prom,
	promRegistry *prometheus.Registry,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware("forevermatch-api"))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if promRegistry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool)
	tokensRepo := postgres.NewVerificationTokensRepo(pool, cfg.VerificationTTL())
	verifier := postgres.NewEmailVerifier(pool, tokensRepo, usersRepo)

	// email path: queue when redis is wired, inline otherwise
	var notifierImpl notifications.Notifier

	if cfg.EmailAPIKey != "" {
		notifierImpl = notifications.NewEmailNotifier(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom)
	} else {
		notifierImpl = notifications.NewLogNotifier()
	}

	var dispatcher handlers.EmailDispatcher

	if queueClient != nil {
		dispatcher = queue.NewEmailProducer(queueClient)
	} else {
		dispatcher = notifications.NewDirectDispatcher(
			notifications.NewProtectedNotifier(notifierImpl, notifications.ProtectedNotifierConfig{}),
		)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL())
	cookies := auth.NewCookieManager(cfg.Env, cfg.SessionTTL())

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, tokensRepo, verifier, dispatcher, hasher, jwtManager, cookies, cfg, log)
	adminHandler := handlers.NewAdminHandler(usersRepo, usersRepo, usersRepo, log)

	authMW := middlewares.NewAuthMiddleware(jwtManager)
	guard := middlewares.NewAdminGuard(usersRepo, cfg.BootstrapUserID)

	// credential endpoints take the brunt of abuse; limit by IP
	limiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	limited := limiter.RateLimiterMiddleware(middlewares.KeyByIP)

	r.POST("/signup", limited, authHandler.SignUp)
	r.POST("/login", limited, authHandler.Login)
	r.POST("/logout", authHandler.Logout)
	r.GET("/verify-email", authHandler.VerifyEmail)
	r.POST("/verify-email/resend", limited, authHandler.ResendVerification)
	r.GET("/me", authMW.RequireSession(), authHandler.Me)

	admin := r.Group("/admin", authMW.RequireSession(), guard.RequireAdmin())
	admin.POST("/promote", adminHandler.Promote)
	admin.GET("/users", adminHandler.ListUsers)

	return r
}
