package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	HTTPPort   int

	// Timezone is the IANA zone daily caps are evaluated in.
	Timezone     string
	CanvasWidth  int
	CanvasHeight int

	// RefreshPollSeconds is each display's fallback poll; a missed push
	// self-heals within one interval.
	RefreshPollSeconds        int
	RegenerateIntervalSeconds int

	// StuckItemGraceMinutes force-retires items left half-deleted after a
	// crashed play-completion write. Zero disables the reconciliation pass.
	StuckItemGraceMinutes int

	DebugMode bool
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:                    getEnv("DB_HOST", "localhost"),
		DBPort:                    getEnvAsInt("DB_PORT", 3306),
		DBUser:                    getEnv("DB_USER", "kiosk_user"),
		DBPassword:                getEnv("DB_PASSWORD", ""),
		DBName:                    getEnv("DB_NAME", "showyomanny"),
		HTTPPort:                  getEnvAsInt("HTTP_PORT", 8080),
		Timezone:                  getEnv("KIOSK_TIMEZONE", "UTC"),
		CanvasWidth:               getEnvAsInt("CANVAS_WIDTH", 1080),
		CanvasHeight:              getEnvAsInt("CANVAS_HEIGHT", 1920),
		RefreshPollSeconds:        getEnvAsInt("REFRESH_POLL_SECONDS", 60),
		RegenerateIntervalSeconds: getEnvAsInt("REGENERATE_INTERVAL_SECONDS", 300),
		StuckItemGraceMinutes:     getEnvAsInt("STUCK_ITEM_GRACE_MINUTES", 0),
		DebugMode:                 getEnvAsBool("DEBUG_MODE", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return defaultValue
}
