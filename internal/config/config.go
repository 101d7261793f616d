package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	// session signing
	JWTSecret       string
	SessionTTLHours int

	// password hashing cost, fixed per deployment
	BcryptCost int

	// email verification
	VerificationTTLHours int
	PublicBaseURL        string

	// redis (email queue); empty addr disables the queue and
	// the api falls back to sending emails inline
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// resend-style email provider; empty key means log-only notifier
	EmailAPIKey string
	EmailAPIURL string
	EmailFrom   string

	// seeded admin account
	AdminEmail    string
	AdminPassword string
	AdminRole     string

	// distinguished user ordinal allowed to act as admin before any
	// role has been assigned (kept from the original deployment)
	BootstrapUserID int64

	// per-IP rate limit for auth endpoints
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// browser origins allowed to call the API with credentials
	AllowedOrigins []string
}

func Load() Config {
	// .env is optional, real deployments use the environment
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		JWTSecret:       getEnv("JWT_SECRET", "dev-only-secret"),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 24),

		BcryptCost: getEnvInt("BCRYPT_COST", 0), // 0 = bcrypt default

		VerificationTTLHours: getEnvInt("VERIFICATION_TTL_HOURS", 24),
		PublicBaseURL:        getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		EmailAPIKey: getEnv("EMAIL_API_KEY", ""),
		EmailAPIURL: getEnv("EMAIL_API_URL", "https://api.resend.com/emails"),
		EmailFrom:   getEnv("EMAIL_FROM", "Forever Match <onboarding@resend.dev>"),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminRole:     getEnv("ADMIN_ROLE", "admin"),

		BootstrapUserID: int64(getEnvInt("BOOTSTRAP_USER_ID", 1)),

		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: time.Duration(getEnvInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,

		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

func splitList(raw string) []string {
	var out []string

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)

		if part != "" {
			out = append(out, part)
		}
	}

	return out
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "forevermatch")
	pass := getEnv("DB_PASSWORD", "forevermatch")
	name := getEnv("DB_NAME", "forevermatch")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c Config) VerificationTTL() time.Duration {
	return time.Duration(c.VerificationTTLHours) * time.Hour
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
