package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the base server configuration.
type Config struct {
	Host    string
	Port    string
	NodeEnv string

	AdminToken string

	RunHistoryDBPath string
	RunHistoryEnable bool

	ManifestPath        string
	ManifestWatchEnable bool

	DefaultTimezone   string
	LegacyModeDefault bool

	ReadHeaderTimeoutMs int
}

// Load reads configuration from environment variables with defaults.
func Load() (Config, error) {
	host := envString("HOST", "0.0.0.0")
	port := envString("PORT", "9000")
	nodeEnv := envString("NODE_ENV", "development")

	adminToken := envString("CHRONOD_ADMIN_TOKEN", "")

	runHistoryEnable := envBool("CHRONOD_RUN_HISTORY_ENABLE", true)
	runHistoryPath := envString("CHRONOD_RUN_HISTORY_DB_PATH", "./data/run-history.db")

	manifestPath := envString("CHRONOD_MANIFEST_PATH", "./jobs.yaml")
	manifestWatchEnable := envBool("CHRONOD_MANIFEST_WATCH_ENABLE", true)

	defaultTimezone := envString("CHRONOD_DEFAULT_TIMEZONE", "Local")
	legacyModeDefault := envBool("CHRONOD_LEGACY_MODE_DEFAULT", false)
	readHeaderTimeoutMs := envInt("CHRONOD_READ_HEADER_TIMEOUT_MS", 5000)

	if nodeEnv == "production" && strings.TrimSpace(adminToken) == "" {
		return Config{}, fmt.Errorf("CHRONOD_ADMIN_TOKEN must be set in production")
	}

	return Config{
		Host:                host,
		Port:                port,
		NodeEnv:             nodeEnv,
		AdminToken:          adminToken,
		RunHistoryDBPath:    runHistoryPath,
		RunHistoryEnable:    runHistoryEnable,
		ManifestPath:        manifestPath,
		ManifestWatchEnable: manifestWatchEnable,
		DefaultTimezone:     defaultTimezone,
		LegacyModeDefault:   legacyModeDefault,
		ReadHeaderTimeoutMs: readHeaderTimeoutMs,
	}, nil
}

func envString(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return strings.EqualFold(val, "true")
}
