package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/handiism/gobase/internal/database"
	"github.com/handiism/gobase/internal/retry"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GOBASE_"

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	WorkDirectory          string  `json:"work_directory"`
	ChunkSize              int     `json:"chunk_size"`
	TimeoutSeconds         float64 `json:"timeout_seconds"`
	UserAgent              string  `json:"user_agent"`
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads"`
	DownloadMaxRetries     int     `json:"download_max_retries"`
	DownloadRetryCooldown  float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent  float64 `json:"download_retry_exponent"`
	DownloadRetryMaxWait   float64 `json:"download_retry_max_wait"`
	DownloadRetryJitter    bool    `json:"download_retry_jitter"`
	ShowProgress           bool    `json:"show_progress"`

	// YouTube settings
	AudioOnly       bool `json:"audio_only"`
	ModifyTags      bool `json:"modify_tags"`
	CoverArtMaxSize int  `json:"cover_art_max_size"`

	// Logging
	LogLevel  string `json:"log_level"`  // debug, info, warn, error
	LogFormat string `json:"log_format"` // text, json
	SeqURL    string `json:"seq_url"`

	// Database
	DatabaseDriver  string `json:"database_driver"` // pgx, sqlite
	DatabaseDSN     string `json:"database_dsn"`
	DatabaseDialect string `json:"database_dialect"` // question, dollar, atp
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		WorkDirectory:          ".",
		ChunkSize:              1024,
		TimeoutSeconds:         60,
		UserAgent:              "gobase",
		MaxConcurrentDownloads: 4,
		DownloadMaxRetries:     5,
		DownloadRetryCooldown:  1,
		DownloadRetryExponent:  2,
		DownloadRetryMaxWait:   60,
		DownloadRetryJitter:    true,
		ShowProgress:           true,

		AudioOnly:       false,
		ModifyTags:      true,
		CoverArtMaxSize: 1000,

		LogLevel:  "info",
		LogFormat: "text",

		DatabaseDriver:  "sqlite",
		DatabaseDialect: "question",
	}
}

// Load reads settings from a JSON file on top of the defaults, then applies
// GOBASE_* environment overrides. A missing file is not an error.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, settings); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}

	if err := settings.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return settings, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// are given) into the process environment. Variables that are already set
// win. It reports whether any file was read.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from GOBASE_* variables found through lookup.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("WORK_DIR", &s.WorkDirectory)
	str("USER_AGENT", &s.UserAgent)
	str("LOG_LEVEL", &s.LogLevel)
	str("LOG_FORMAT", &s.LogFormat)
	str("SEQ_URL", &s.SeqURL)
	str("DB_DRIVER", &s.DatabaseDriver)
	str("DB_DSN", &s.DatabaseDSN)
	str("DB_DIALECT", &s.DatabaseDialect)

	return errors.Join(
		num("MAX_RETRIES", &s.DownloadMaxRetries),
		num("CONCURRENCY", &s.MaxConcurrentDownloads),
		num("CHUNK_SIZE", &s.ChunkSize),
		flag("SHOW_PROGRESS", &s.ShowProgress),
		flag("AUDIO_ONLY", &s.AudioOnly),
	)
}

// Validate checks the settings for values the downloaders cannot work with.
func (s *Settings) Validate() error {
	var errs []error
	if s.DownloadMaxRetries < 1 {
		errs = append(errs, fmt.Errorf("download_max_retries must be at least 1, got %d", s.DownloadMaxRetries))
	}
	if s.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("chunk_size must be positive, got %d", s.ChunkSize))
	}
	if s.MaxConcurrentDownloads < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_downloads must be at least 1, got %d", s.MaxConcurrentDownloads))
	}
	if s.DownloadRetryCooldown < 0 {
		errs = append(errs, fmt.Errorf("download_retry_cooldown must not be negative"))
	}
	if _, err := database.ParseDialect(s.DatabaseDialect); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Timeout returns the HTTP timeout as a duration.
func (s *Settings) Timeout() time.Duration {
	return seconds(s.TimeoutSeconds)
}

// RetryPolicy converts the download retry settings to a retry.Policy.
// The caller decides which errors are retryable.
func (s *Settings) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: s.DownloadMaxRetries,
		Initial:     seconds(s.DownloadRetryCooldown),
		Multiplier:  s.DownloadRetryExponent,
		MaxDelay:    seconds(s.DownloadRetryMaxWait),
		Jitter:      s.DownloadRetryJitter,
	}
}

// Dialect returns the configured placeholder dialect.
func (s *Settings) Dialect() database.Dialect {
	d, _ := database.ParseDialect(s.DatabaseDialect)
	return d
}

// ExpandWorkDirectory replaces a leading "~" with the user's home directory.
func (s *Settings) ExpandWorkDirectory() string {
	dir := s.WorkDirectory
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return dir
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
