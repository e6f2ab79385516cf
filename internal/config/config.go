package config

import (
	"fmt"
	"os"
	"strings"
)

const DefaultMoneyFormat = "${{amount}}"

type Config struct {
	// Logging
	LogLevel string

	// Theme
	ThemeDir           string
	MoneyFormat        string
	EnableHistoryState bool

	// Strings shown on the add to cart button
	StringAddToCart   string
	StringSoldOut     string
	StringUnavailable string

	// Signal loop
	SignalQueueSize int

	// Features
	EnableMetrics bool
	EnableRTE     bool
}

func New() *Config {
	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ThemeDir:           getEnv("THEME_DIR", ""),
		MoneyFormat:        getEnv("MONEY_FORMAT", DefaultMoneyFormat),
		EnableHistoryState: getEnvAsBool("ENABLE_HISTORY_STATE", false),

		StringAddToCart:   getEnv("STRING_ADD_TO_CART", "Add to cart"),
		StringSoldOut:     getEnv("STRING_SOLD_OUT", "Sold out"),
		StringUnavailable: getEnv("STRING_UNAVAILABLE", "Unavailable"),

		SignalQueueSize: getEnvAsInt("SIGNAL_QUEUE_SIZE", 64),

		EnableMetrics: getEnvAsBool("ENABLE_METRICS", false),
		EnableRTE:     getEnvAsBool("ENABLE_RTE", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1"
}
