package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Trading  TradingConfig
	Market   MarketConfig
	Advisor  AdvisorConfig
	Security SecurityConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// TradingConfig holds simulation parameters
type TradingConfig struct {
	FeeRate        decimal.Decimal
	InitialCapital decimal.Decimal
	CycleEvery     time.Duration
	SnapshotEvery  time.Duration
}

// MarketConfig holds the price oracle configuration
type MarketConfig struct {
	APIURL   string
	CacheTTL time.Duration
	Symbols  []string
}

// AdvisorConfig holds the reasoning service configuration
type AdvisorConfig struct {
	URL string
}

// SecurityConfig holds secrets for the admin API and credential sealing
type SecurityConfig struct {
	JWTSecret     string
	EncryptionKey string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Trading: TradingConfig{
			FeeRate:        getDecimal("FEE_RATE", "0.001"),
			InitialCapital: getDecimal("INITIAL_CAPITAL", "10000"),
			CycleEvery:     getMinutes("TRADING_FREQUENCY_MINUTES", 60),
			SnapshotEvery:  getMinutes("SNAPSHOT_FREQUENCY_MINUTES", 5),
		},
		Market: MarketConfig{
			APIURL:   getEnv("MARKET_API_URL", "https://api.binance.com"),
			CacheTTL: getSeconds("MARKET_CACHE_TTL_SECONDS", 30),
			Symbols:  getList("SYMBOLS", "BTC,ETH,SOL,BNB,XRP,DOGE"),
		},
		Advisor: AdvisorConfig{
			URL: getEnv("ADVISOR_URL", "http://localhost:8000"),
		},
		Security: SecurityConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDecimal(key, defaultValue string) decimal.Decimal {
	raw := getEnv(key, defaultValue)
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.RequireFromString(defaultValue)
	}
	return value
}

func getMinutes(key string, defaultValue int) time.Duration {
	return time.Duration(getInt(key, defaultValue)) * time.Minute
}

func getSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getInt(key, defaultValue)) * time.Second
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, strings.ToUpper(trimmed))
		}
	}
	return out
}
