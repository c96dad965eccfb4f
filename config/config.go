package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/mkucukkoc/google-auth-sub002/pkg/constant"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultAccessTokenExpiryMin = constant.DefaultAccessTokenExpiryMin
	DefaultRefreshTokenTTLDays  = constant.DefaultRefreshTokenTTLDays
	DefaultLoginMaxAttempts     = constant.DefaultLoginMaxAttempts
	DefaultLockoutMinutes       = constant.DefaultLockoutMinutes
	DefaultRefreshGraceMinutes  = constant.DefaultRefreshGraceMinutes
)

type Config struct {
	Env               string
	Port              string
	DBURL             string
	AccessTokenSecret string
	AccessExpiryMin   int
	RefreshTTLDays    int
	TokenIssuer       string
	TokenAudience     string

	LoginMaxAttempts int
	LockoutMinutes   int
	RefreshGraceMin  int

	RedisAddr     string
	RedisPassword string
	RabbitMQURL   string

	RateLimitEnabled  bool
	RateLimitCapacity int
	RateLimitRefillMs int
}

// Load reads configuration from config/.env.dev or config/.env.prod
// (depending on ENV) and the process environment. Real environment variables
// win over file values. Missing required values are fatal.
func Load() *Config {
	env := getEnv("ENV", "development")

	envFile := "config/.env.dev"
	if env == "production" {
		envFile = "config/.env.prod"
	}
	// Best effort: running without an env file is fine in containers.
	_ = godotenv.Load(envFile)

	return &Config{
		Env:               env,
		Port:              getEnv("PORT", "8080"),
		DBURL:             mustGetEnv("DB_URL"),
		AccessTokenSecret: mustGetEnv("ACCESS_TOKEN_SECRET"),
		AccessExpiryMin:   getEnvAsInt("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiryMin),
		RefreshTTLDays:    getEnvAsInt("REFRESH_TOKEN_EXPIRY_DAYS", DefaultRefreshTokenTTLDays),
		TokenIssuer:       getEnv("TOKEN_ISSUER", constant.DefaultTokenIssuer),
		TokenAudience:     getEnv("TOKEN_AUDIENCE", constant.DefaultTokenAudience),
		LoginMaxAttempts:  getEnvAsInt("LOGIN_MAX_ATTEMPTS", DefaultLoginMaxAttempts),
		LockoutMinutes:    getEnvAsInt("LOCKOUT_MINUTES", DefaultLockoutMinutes),
		RefreshGraceMin:   getEnvAsInt("REFRESH_GRACE_MIN", DefaultRefreshGraceMinutes),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		RateLimitEnabled:  getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RateLimitCapacity: getEnvAsInt("RATE_LIMIT_CAPACITY", 10),
		RateLimitRefillMs: getEnvAsInt("RATE_LIMIT_REFILL_MS", 6000),
	}
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %t", key, defaultVal)
		return defaultVal
	}
	return val
}
