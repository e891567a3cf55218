package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tradeSync/internal/adapters/logger" // Import the logger package for LogLevel
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreSQLite = "sqlite"
	StoreBadger = "badger"
	StoreMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	// Backend
	BaseURL         string
	APIToken        string
	TradesListPath  string
	TradeExitPath   string // May contain {id}
	TradeUpdatePath string // May contain {id}
	ExitReason      string

	// Sync
	PollInterval time.Duration

	// HTTP
	HTTPTimeout      time.Duration
	HTTPRetryCount   int
	AuthWarnCooldown time.Duration

	// Storage
	StoreDriver string
	DBPath      string
	BadgerPath  string
	LedgerKey   string

	// Logging
	LogLevel      logger.LogLevel // Use the LogLevel type from the logger adapter
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogJSON       bool
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Backend
	cfg.BaseURL = strings.TrimRight(getEnv("BACKEND_BASE_URL", ""), "/")
	if cfg.BaseURL == "" {
		errs = append(errs, "BACKEND_BASE_URL must be set")
	} else if u, perr := url.Parse(cfg.BaseURL); perr != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("BACKEND_BASE_URL must be an absolute URL, got '%s'", cfg.BaseURL))
	}
	cfg.APIToken = getEnv("API_TOKEN", "")

	cfg.TradesListPath = getEnv("TRADES_LIST_PATH", "/api/trades")
	cfg.TradeExitPath = getEnv("TRADE_EXIT_PATH", "/api/trades/{id}/exit")
	cfg.TradeUpdatePath = getEnv("TRADE_UPDATE_PATH", "/api/trades/{id}")
	for key, path := range map[string]string{
		"TRADES_LIST_PATH":  cfg.TradesListPath,
		"TRADE_EXIT_PATH":   cfg.TradeExitPath,
		"TRADE_UPDATE_PATH": cfg.TradeUpdatePath,
	} {
		if !strings.HasPrefix(path, "/") {
			errs = append(errs, fmt.Sprintf("%s must start with '/'", key))
		}
	}
	cfg.ExitReason = getEnv("EXIT_REASON", "Exited by user")

	// Sync
	pollSeconds, err := getEnvAsIntRequired("POLL_INTERVAL_SECONDS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid POLL_INTERVAL_SECONDS: %v", err))
	} else if pollSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	// HTTP
	timeoutSeconds, err := getEnvAsIntRequired("HTTP_TIMEOUT_SECONDS", 15)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HTTP_TIMEOUT_SECONDS: %v", err))
	} else if timeoutSeconds <= 0 {
		errs = append(errs, "HTTP_TIMEOUT_SECONDS must be positive")
	}
	cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	cfg.HTTPRetryCount, err = getEnvAsIntRequired("HTTP_RETRY_COUNT", 2)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HTTP_RETRY_COUNT: %v", err))
	} else if cfg.HTTPRetryCount < 0 {
		errs = append(errs, "HTTP_RETRY_COUNT cannot be negative")
	}

	cooldownSeconds := getEnvAsInt("AUTH_WARN_COOLDOWN_SECONDS", 60)
	if cooldownSeconds < 0 {
		errs = append(errs, "AUTH_WARN_COOLDOWN_SECONDS cannot be negative")
	}
	cfg.AuthWarnCooldown = time.Duration(cooldownSeconds) * time.Second

	// Storage
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreSQLite)))
	switch cfg.StoreDriver {
	case StoreSQLite, StoreBadger, StoreMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be one of %s, %s, %s", StoreSQLite, StoreBadger, StoreMemory))
	}
	cfg.DBPath = getEnv("DB_PATH", "./data/trade_sync.db")
	cfg.BadgerPath = getEnv("BADGER_PATH", "./data/ledger.badger")
	cfg.LedgerKey = getEnv("LEDGER_KEY", "exitedTrades")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package
	cfg.LogFile = getEnv("LOG_FILE", "")
	cfg.LogMaxSizeMB = getEnvAsInt("LOG_MAX_SIZE_MB", 50)
	if cfg.LogMaxSizeMB <= 0 {
		errs = append(errs, "LOG_MAX_SIZE_MB must be positive")
	}
	cfg.LogMaxBackups = getEnvAsInt("LOG_MAX_BACKUPS", 3)
	if cfg.LogMaxBackups < 0 {
		errs = append(errs, "LOG_MAX_BACKUPS cannot be negative")
	}
	cfg.LogJSON = getEnvAsBool("LOG_JSON", false)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
