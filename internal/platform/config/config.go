package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	PostgresDSN   string
	RedisURL      string
	JWTSigningKey string
	TokenTTL      time.Duration

	// Admin bootstrap credentials, created on startup when absent.
	AdminUsername string
	AdminPassword string

	// Login lockout thresholds enforced through redis.
	LockoutThreshold int
	LockoutWindow    time.Duration
	LockoutDuration  time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("PARISHBOOK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:             addr,
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		RedisURL:         os.Getenv("REDIS_URL"),
		JWTSigningKey:    jwtSigningKey,
		TokenTTL:         durationEnv("TOKEN_TTL", time.Hour),
		AdminUsername:    envDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		LockoutThreshold: intEnv("LOGIN_LOCKOUT_THRESHOLD", 5),
		LockoutWindow:    durationEnv("LOGIN_LOCKOUT_WINDOW", 15*time.Minute),
		LockoutDuration:  durationEnv("LOGIN_LOCKOUT_DURATION", 15*time.Minute),
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
