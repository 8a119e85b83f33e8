package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string
	RulesPath string

	DiffThreshold float64
	FileLimit     int
	StrictDecoded bool

	IRDBRepoURL string

	FlipperPort         string
	FlipperBaudRate     int
	FlipperDir          string
	FlipperParsedDir    string
	FlipperMaxRetries   int
	FlipperCommandRPS   int
	CloseAppsFrequency  int
	FlipperTimeoutMs    int
	FlipperVerifyTimeMs int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		RulesPath: getEnv("RULES_PATH", ""),

		DiffThreshold: getEnvFloat("DIFF_THRESHOLD", 0.1),
		FileLimit:     getEnvInt("FILE_LIMIT", 0),
		StrictDecoded: getEnvBool("STRICT_DECODED", false),

		IRDBRepoURL: getEnv("IRDB_REPO_URL", "https://github.com/Lucaslhm/Flipper-IRDB/archive/refs/heads/main.zip"),

		FlipperPort:         getEnv("FLIPPER_PORT", ""),
		FlipperBaudRate:     getEnvInt("FLIPPER_BAUD_RATE", 115200),
		FlipperDir:          getEnv("FLIPPER_DIR", "/ext/infrared/Flipper-IRDB-main/"),
		FlipperParsedDir:    getEnv("FLIPPER_PARSED_DIR", "/ext/infrared/DECODED-IRDB/"),
		FlipperMaxRetries:   getEnvInt("FLIPPER_MAX_RETRIES", 3),
		FlipperCommandRPS:   getEnvInt("FLIPPER_COMMAND_RPS", 20),
		CloseAppsFrequency:  getEnvInt("FLIPPER_CLOSE_APPS_FREQUENCY", 50),
		FlipperTimeoutMs:    getEnvInt("FLIPPER_TIMEOUT_MS", 2000),
		FlipperVerifyTimeMs: getEnvInt("FLIPPER_VERIFY_TIMEOUT_MS", 500),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
