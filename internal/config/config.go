package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort        string
	MySQLDSN          string
	DBConnectAttempts int
	ResetDB           bool
	RedisAddr         string
	RedisDB           int
	RedisPass         string
	SessionSecret     string
	SessionTTL        time.Duration
	RememberTTL       time.Duration
	CookieSecure      bool
	PostsPerPage      int
	DefaultAvatar     string
	SwaggerHost       string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		MySQLDSN:          getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/blog?charset=utf8mb4&parseTime=True&loc=UTC"),
		DBConnectAttempts: getEnvInt("DB_CONNECT_ATTEMPTS", 5),
		ResetDB:           getEnvBool("RESET_DB", false),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		// JWT_SECRET is still honoured for older deployments.
		SessionSecret: getEnv("SESSION_SECRET", getEnv("JWT_SECRET", "change-me")),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		RememberTTL:   getEnvDuration("REMEMBER_TTL", 30*24*time.Hour),
		CookieSecure:  getEnvBool("COOKIE_SECURE", false),
		PostsPerPage:  getEnvInt("POSTS_PER_PAGE", 5),
		DefaultAvatar: getEnv("DEFAULT_AVATAR", "default.jpg"),
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
