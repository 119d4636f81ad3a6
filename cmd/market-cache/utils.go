package main

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

const defaultKeyDBURL = "redis://keydb:6379"

// GetKeyDBURL returns KeyDB URL with the following priority:
// 1. KEYDB_URL environment variable
// 2. CACHE_KEYDB_URL_FILE file content
// 3. Default value
func GetKeyDBURL(logger *zap.Logger) string {
	if keydbURL := os.Getenv("KEYDB_URL"); keydbURL != "" {
		logger.Debug("Using KeyDB URL from environment variable")
		return keydbURL
	}

	connectionFile := os.Getenv("CACHE_KEYDB_URL_FILE")
	if connectionFile == "" {
		connectionFile = "/app/.keydb-url"
	}

	if content, err := os.ReadFile(connectionFile); err == nil {
		if keydbURL := strings.TrimSpace(string(content)); keydbURL != "" {
			logger.Debug("Using KeyDB URL from connection file", zap.String("file", connectionFile))
			return keydbURL
		}
	}
	logger.Debug("KeyDB connection file not found or empty", zap.String("file", connectionFile))

	logger.Debug("Using default KeyDB URL")
	return defaultKeyDBURL
}

// newLogger builds the production logger, writing to stderr so command
// output on stdout stays clean
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
