package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

// EngineConfig carries the interaction-engine constants. Each value has
// the product default and can be overridden through the environment.
type EngineConfig struct {
	DailyFreeMessageLimit int
	PointsPerMessage      int
	MinExpirationHours    int
	DailyFreeSwipeLimit   int
	PointsPerSwipe        int
	PointsPerUndo         int
	UndoWindow            time.Duration
}

// LoadEngineConfig reads the engine constants from the environment.
func LoadEngineConfig() EngineConfig {
	return EngineConfig{
		DailyFreeMessageLimit: GetIntEnv("DAILY_FREE_MESSAGE_LIMIT", 20),
		PointsPerMessage:      GetIntEnv("POINTS_PER_MESSAGE", 10),
		MinExpirationHours:    GetIntEnv("MIN_EXPIRATION_HOURS", 1),
		DailyFreeSwipeLimit:   GetIntEnv("DAILY_FREE_SWIPE_LIMIT", 10),
		PointsPerSwipe:        GetIntEnv("POINTS_PER_SWIPE", 5),
		PointsPerUndo:         GetIntEnv("POINTS_PER_UNDO", 10),
		UndoWindow:            time.Duration(GetIntEnv("UNDO_WINDOW_MINUTES", 5)) * time.Minute,
	}
}
