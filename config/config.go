package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseURL      string
	RedisURL         string
	StorageBackend   string // "postgres" (default) or "redis"
	AllowedOrigins   []string
	TelegramBotToken string
	GatewayToken     string
	LeaderboardLimit int
	Environment      string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	allowedOrigins := splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"))

	limit, err := strconv.Atoi(getEnv("LEADERBOARD_LIMIT", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	return &Config{
		Port:             getEnv("PORT", "5300"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		StorageBackend:   strings.ToLower(getEnv("STORAGE_BACKEND", "postgres")),
		AllowedOrigins:   allowedOrigins,
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		GatewayToken:     getEnv("REWARDS_SERVICE_TOKEN", ""),
		LeaderboardLimit: limit,
		Environment:      strings.ToLower(getEnv("ENV", "development")),
	}
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
