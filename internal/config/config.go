package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration, loaded once at process start.
type Config struct {
	Environment string
	Host        string
	Port        string

	LogLevel string
	LogFile  string

	// Database
	DatabaseURL string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Auth
	JWTSecret          []byte
	GoogleClientID     string
	GoogleClientSecret string
	APIBaseURL         string

	// Poll anonymity. Server-held secret for voting token derivation;
	// never logged or sent to clients.
	PollVoteSecret []byte

	// Media storage
	AWSRegion  string
	AWSBucket  string
	CDNBaseURL string

	// CORS
	AllowedOrigins []string

	// Rate limiting
	RateLimitEnabled bool
}

// Load reads configuration from environment variables.
// JWT_SECRET and POLL_VOTE_SECRET are required; everything else has a
// development default.
func Load() (*Config, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	voteSecret := os.Getenv("POLL_VOTE_SECRET")
	if voteSecret == "" {
		return nil, fmt.Errorf("POLL_VOTE_SECRET environment variable is required")
	}

	cfg := &Config{
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		Host:        getEnvOrDefault("HOST", "0.0.0.0"),
		Port:        getEnvOrDefault("PORT", "8890"),

		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:  getEnvOrDefault("LOG_FILE", "glocal.log"),

		DatabaseURL: databaseURLFromEnv(),

		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:          []byte(jwtSecret),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		APIBaseURL:         os.Getenv("API_BASE_URL"),

		PollVoteSecret: []byte(voteSecret),

		AWSRegion:  getEnvOrDefault("AWS_REGION", "ap-south-1"),
		AWSBucket:  os.Getenv("AWS_BUCKET"),
		CDNBaseURL: os.Getenv("CDN_BASE_URL"),

		AllowedOrigins:   splitAndTrim(getEnvOrDefault("ALLOWED_ORIGINS", "*")),
		RateLimitEnabled: parseBool(getEnvOrDefault("RATE_LIMIT_ENABLED", "true")),
	}

	return cfg, nil
}

// databaseURLFromEnv builds a Postgres DSN from DATABASE_URL, or from
// individual DB_* components as a fallback.
func databaseURLFromEnv() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := os.Getenv("DB_PASSWORD")
	dbname := getEnvOrDefault("DB_NAME", "glocal")
	sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
