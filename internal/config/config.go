package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	Store      string // "postgres" or "memory"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	RedisURL   string

	JWTSecret       string
	TokenTTL        time.Duration
	StartingBalance int64
	CookieName      string
	CookieSecure    bool

	LoginRateLimit  int
	LoginRateWindow time.Duration
	// TrustedProxies lists peers (IPs or CIDRs) whose X-Forwarded-For is honored.
	TrustedProxies []string

	WebDir             string
	ProtectedPrefixes  []string
	LoginPath          string
	CORSAllowedOrigins []string

	LogLevel     string
	LogFormat    string
	OTLPEndpoint string
	OTLPInsecure bool
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, is loaded first and never overrides variables that
// are already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		Store:      getEnv("STORE", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "pokehire"),
		DBPassword: getEnv("DB_PASSWORD", "pokehire_dev_password"),
		DBName:     getEnv("DB_NAME", "pokehire"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		RedisURL:   getEnv("REDIS_URL", ""),

		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:        getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		StartingBalance: int64(getEnvInt("STARTING_BALANCE", 100)),
		CookieName:      getEnv("SESSION_COOKIE", "auth_token"),
		CookieSecure:    getEnvBool("COOKIE_SECURE", false),

		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", time.Minute),
		TrustedProxies:  getEnvList("TRUSTED_PROXIES", nil),

		WebDir:             getEnv("WEB_DIR", "./web"),
		ProtectedPrefixes:  getEnvList("PROTECTED_PREFIXES", []string{"/dashboard", "/teams", "/contracts"}),
		LoginPath:          getEnv("LOGIN_PATH", "/auth/login"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
