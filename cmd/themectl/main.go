package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"storefront-theme/internal/config"
	"storefront-theme/pkg/logger"
	"storefront-theme/pkg/validator"
)

func main() {
	logger.Init()

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables", nil)
	}

	cfg := config.New()
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn("Unknown log level, keeping info", map[string]interface{}{"level": cfg.LogLevel})
	}
	validator.Init()

	if err := newRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
