package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the optional .env file into the process environment. Missing
// files are fine in containerized deployments where env vars come from the
// orchestrator.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file, using process environment")
	}
}

// Int reads an int env var with a default fallback.
func Int(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// String reads a string env var with a default fallback.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// IdempotencyTTL is how long a committed idempotency record replays before it
// is treated as absent.
func IdempotencyTTL() time.Duration {
	return time.Duration(Int("IDEMPOTENCY_TTL_HOURS", 24)) * time.Hour
}

// RateLimitWindow is the fixed rate-limit window length.
func RateLimitWindow() time.Duration {
	return time.Duration(Int("RATE_LIMIT_WINDOW_MINUTES", 15)) * time.Minute
}
