// Package config provides configuration management for gobase.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - GOBASE_* environment overrides, optionally seeded from a .env file
//   - Conversion to retry.Policy and database.Dialect for other packages
//
// # Loading
//
//	config.LoadDotEnv() // optional .env
//	settings, err := config.Load("/path/to/gobase.json")
//	// Uses defaults if the file doesn't exist
//
// # Environment
//
//	GOBASE_WORK_DIR, GOBASE_USER_AGENT, GOBASE_CHUNK_SIZE,
//	GOBASE_MAX_RETRIES, GOBASE_CONCURRENCY, GOBASE_SHOW_PROGRESS,
//	GOBASE_AUDIO_ONLY, GOBASE_LOG_LEVEL, GOBASE_LOG_FORMAT, GOBASE_SEQ_URL,
//	GOBASE_DB_DRIVER, GOBASE_DB_DSN, GOBASE_DB_DIALECT
package config
