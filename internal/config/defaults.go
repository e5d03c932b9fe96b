// Package config provides configuration loading, defaults, and validation for
// the bid-intelligence service.
package config

import "time"

const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "bidintel"
	DefaultDBMaxConns = 25

	DefaultRedisTTL = 60 * time.Second

	DefaultTokenTTL = 24 * time.Hour

	DefaultAnnotatorTemperature = 0.3
	DefaultAnnotatorMaxTokens   = 1000
	DefaultAnnotatorTimeout     = 30 * time.Second

	DefaultBulkMaxCandidates = 20
	DefaultBulkConcurrency   = 8
	DefaultTaskTimeout       = 30 * time.Second
	DefaultProfileCacheTTL   = 60 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// Redis
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}

	// Auth
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = DefaultTokenTTL
	}

	// Annotator
	if cfg.Annotator.Temperature == 0 {
		cfg.Annotator.Temperature = DefaultAnnotatorTemperature
	}
	if cfg.Annotator.MaxTokens == 0 {
		cfg.Annotator.MaxTokens = DefaultAnnotatorMaxTokens
	}
	if cfg.Annotator.Timeout == 0 {
		cfg.Annotator.Timeout = DefaultAnnotatorTimeout
	}

	// Prediction
	if cfg.Prediction.BulkMaxCandidates == 0 {
		cfg.Prediction.BulkMaxCandidates = DefaultBulkMaxCandidates
	}
	if cfg.Prediction.BulkConcurrency == 0 {
		cfg.Prediction.BulkConcurrency = DefaultBulkConcurrency
	}
	if cfg.Prediction.TaskTimeout == 0 {
		cfg.Prediction.TaskTimeout = DefaultTaskTimeout
	}
	if cfg.Prediction.ProfileCacheTTL == 0 {
		cfg.Prediction.ProfileCacheTTL = DefaultProfileCacheTTL
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
