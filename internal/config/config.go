package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string

	// Google OIDC sign-in is optional; the credential endpoints work
	// without it. Leave the client id empty to disable the provider.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// SignedOutRedirectURL is where OAuth error callbacks land.
	SignedOutRedirectURL string
}

func Load() Config {
	// Best-effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	return Config{
		AppPort: getenv("APP_PORT", "8080"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		SignedOutRedirectURL: getenv("SIGNED_OUT_REDIRECT_URL", "/auth"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
