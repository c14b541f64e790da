package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Massive API
	MassiveAPIKey  string
	MassiveBaseURL string
	FeedTimeout    time.Duration

	// Instrument
	Symbol      string // Display symbol for the journal (e.g., "SPX")
	ProductCode string // Futures product code for contract resolution (e.g., "ES")
	Contracts   int    // Position size in contracts

	// Sessions (all times HH:MM in the reference timezone)
	Timezone           string
	SessionAsiaStart   string
	SessionAsiaEnd     string
	SessionLondonStart string
	SessionLondonEnd   string
	SessionNYStart     string
	SessionNYEnd       string
	TradingStart       string // Entry window; defaults to the NY session
	TradingEnd         string

	// Trend Parameters
	EMAShortPeriod int     // e.g., 20
	EMALongPeriod  int     // e.g., 200
	ATHTolerance   float64 // e.g., 0.001 for 0.1%

	// Entry / Exit Parameters
	TakeProfitPoints  float64
	StopLossPoints    float64
	MaxHoldMinutes    int
	MaxTradesPerDay   int
	CooldownSeconds   int
	ArmTimeoutMinutes int

	// Engine Timing
	PollInterval time.Duration
	EvalInterval time.Duration
	HistoryHours int // How far back to seed candle buffers

	// Database
	DBPath string

	// Logging
	LogLevel  string
	LogFormat string // json or console
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	// Massive API
	cfg.MassiveAPIKey = getEnv("MASSIVE_API_KEY", "")
	cfg.MassiveBaseURL = getEnv("MASSIVE_BASE_URL", "")
	if cfg.MassiveAPIKey == "" {
		errs = append(errs, "MASSIVE_API_KEY must be set")
	}

	feedTimeoutSeconds := getEnvAsInt("FEED_TIMEOUT_SECONDS", 10)
	if feedTimeoutSeconds <= 0 {
		errs = append(errs, "FEED_TIMEOUT_SECONDS must be positive")
	}
	cfg.FeedTimeout = time.Duration(feedTimeoutSeconds) * time.Second

	// Instrument
	cfg.Symbol = getEnv("SYMBOL", "SPX")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	cfg.ProductCode = getEnv("PRODUCT_CODE", "ES")
	if cfg.ProductCode == "" {
		errs = append(errs, "PRODUCT_CODE must be set")
	}

	cfg.Contracts, err = getEnvAsIntRequired("CONTRACTS", 1)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CONTRACTS: %v", err))
	} else if cfg.Contracts <= 0 {
		errs = append(errs, "CONTRACTS must be positive")
	}

	// Sessions
	cfg.Timezone = getEnv("TIMEZONE", "America/New_York")
	cfg.SessionAsiaStart = getEnv("SESSION_ASIA_START", "20:00")
	cfg.SessionAsiaEnd = getEnv("SESSION_ASIA_END", "02:00")
	cfg.SessionLondonStart = getEnv("SESSION_LONDON_START", "02:00")
	cfg.SessionLondonEnd = getEnv("SESSION_LONDON_END", "05:00")
	cfg.SessionNYStart = getEnv("SESSION_NY_START", "09:30")
	cfg.SessionNYEnd = getEnv("SESSION_NY_END", "11:30")
	cfg.TradingStart = getEnv("TRADING_START", cfg.SessionNYStart)
	cfg.TradingEnd = getEnv("TRADING_END", cfg.SessionNYEnd)

	// Trend Parameters
	cfg.EMAShortPeriod = getEnvAsInt("EMA_SHORT_PERIOD", 20)
	cfg.EMALongPeriod = getEnvAsInt("EMA_LONG_PERIOD", 200)
	if cfg.EMAShortPeriod <= 0 || cfg.EMALongPeriod <= 0 {
		errs = append(errs, "EMA periods must be positive")
	}
	if cfg.EMAShortPeriod >= cfg.EMALongPeriod {
		errs = append(errs, "EMA_SHORT_PERIOD must be less than EMA_LONG_PERIOD")
	}

	cfg.ATHTolerance, err = getEnvAsFloatRequired("ATH_TOLERANCE", 0.001)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ATH_TOLERANCE: %v", err))
	} else if cfg.ATHTolerance <= 0 || cfg.ATHTolerance >= 1.0 {
		errs = append(errs, "ATH_TOLERANCE must be between 0.0 and 1.0 (exclusive)")
	}

	// Entry / Exit Parameters
	cfg.TakeProfitPoints, err = getEnvAsFloatRequired("TAKE_PROFIT_POINTS", 5.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TAKE_PROFIT_POINTS: %v", err))
	} else if cfg.TakeProfitPoints <= 0 {
		errs = append(errs, "TAKE_PROFIT_POINTS must be positive")
	}

	cfg.StopLossPoints, err = getEnvAsFloatRequired("STOP_LOSS_POINTS", 3.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STOP_LOSS_POINTS: %v", err))
	} else if cfg.StopLossPoints <= 0 {
		errs = append(errs, "STOP_LOSS_POINTS must be positive")
	}

	cfg.MaxHoldMinutes, err = getEnvAsIntRequired("MAX_HOLD_MINUTES", 60)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_HOLD_MINUTES: %v", err))
	} else if cfg.MaxHoldMinutes < 0 {
		errs = append(errs, "MAX_HOLD_MINUTES cannot be negative")
	}

	cfg.MaxTradesPerDay, err = getEnvAsIntRequired("MAX_TRADES_PER_DAY", 5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_TRADES_PER_DAY: %v", err))
	} else if cfg.MaxTradesPerDay < 0 {
		errs = append(errs, "MAX_TRADES_PER_DAY cannot be negative")
	}

	cfg.CooldownSeconds = getEnvAsInt("COOLDOWN_SECONDS", 30)
	if cfg.CooldownSeconds < 0 {
		errs = append(errs, "COOLDOWN_SECONDS cannot be negative")
	}

	cfg.ArmTimeoutMinutes = getEnvAsInt("ARM_TIMEOUT_MINUTES", 5)
	if cfg.ArmTimeoutMinutes <= 0 {
		errs = append(errs, "ARM_TIMEOUT_MINUTES must be positive")
	}

	// Engine Timing
	pollSeconds := getEnvAsInt("POLL_INTERVAL_SECONDS", 5)
	if pollSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	evalSeconds := getEnvAsInt("EVAL_INTERVAL_SECONDS", 1)
	if evalSeconds <= 0 {
		errs = append(errs, "EVAL_INTERVAL_SECONDS must be positive")
	}
	cfg.EvalInterval = time.Duration(evalSeconds) * time.Second

	cfg.HistoryHours = getEnvAsInt("HISTORY_HOURS", 36)
	if cfg.HistoryHours <= 0 {
		errs = append(errs, "HISTORY_HOURS must be positive")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/journal.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

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

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
