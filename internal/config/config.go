package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	PublicURL   string
	FrontendURL string

	DBDriver string
	DBDSN    string

	// Redis is optional; when unset the session cache is in-process only and
	// an attempt does not survive a server restart.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	AuthSecret string

	QuestionCount int
	QuizDuration  time.Duration
	TriviaBaseURL string

	CORSOrigins []string

	EnableGoogleAuth   bool
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
}

func FromEnv() Config {
	pub := envOr("PUBLIC_URL", "")
	return Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":5001"),
		PublicURL:   pub,
		FrontendURL: envOr("FRONTEND_URL", "http://localhost:3000"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		SessionTTL:    envDuration("SESSION_TTL", 30*time.Minute),

		AuthSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),

		QuestionCount: envInt("QUIZ_QUESTION_COUNT", 15),
		QuizDuration:  envDuration("QUIZ_DURATION", 15*time.Minute),
		TriviaBaseURL: envOr("TRIVIA_BASE_URL", "https://opentdb.com"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),

		EnableGoogleAuth:   envBool("ENABLE_GOOGLE_AUTH", false),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  envOr("GOOGLE_REDIRECT_URI", strings.TrimSuffix(pub, "/")+"/api/auth/google/callback"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
