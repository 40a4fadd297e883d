package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Addr      string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
	Domains   []string // allowed websocket origins

	MaxRooms       int
	MaxRoomSize    int
	MaxElements    int
	MaxMessageSize int
	MaxStyleDepth  int
	MaxStyleKeys   int

	MessagesPerSecond float64
	BurstSize         int

	ConnsPerMinute int
	ConnBurst      int
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() *Config {
	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	return &Config{
		Addr:      getString("ADDR", ":8080"),
		DBPath:    getString("DB_PATH", "designer.db"),
		JWTSecret: getString("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),
		Domains:   getList("DOMAINS"),

		MaxRooms:       getInt("MAX_ROOMS", 500),
		MaxRoomSize:    getInt("MAX_ROOM_SIZE", 25),
		MaxElements:    getInt("MAX_ELEMENTS", 1000),
		MaxMessageSize: getInt("MAX_MESSAGE_SIZE", 64*1024),
		MaxStyleDepth:  getInt("MAX_STYLE_DEPTH", 5),
		MaxStyleKeys:   getInt("MAX_STYLE_KEYS", 200),

		MessagesPerSecond: getFloat("MESSAGES_PER_SECOND", 30),
		BurstSize:         getInt("BURST_SIZE", 10),

		ConnsPerMinute: getInt("CONNECTIONS_PER_MINUTE", 10),
		ConnBurst:      getInt("CONNECTION_BURST", 5),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
