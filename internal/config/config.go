// Package config provides centralized configuration management for the pipeline.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"path/filepath"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Intake   IntakeConfig
	Pipeline PipelineConfig
	Logging  LoggingConfig
}

// ServerConfig holds settings for the admin HTTP server (health + metrics).
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8000, the historical metrics port)
	Port int `env:"SERVER_PORT" default:"8000"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 15s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"15s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. When empty, pgx falls back to
	// the libpq-compatible environment variables (PGHOST, PGPORT, PGUSER,
	// PGPASSWORD, PGDATABASE), which is how earlier deployments were wired.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// IntakeConfig holds directory layout and polling settings for file intake.
type IntakeConfig struct {
	// DataDir is the root of the intake tree; incoming/, processed/ and
	// quarantine/ live underneath it (default: data)
	DataDir string `env:"DATA_DIR" default:"data"`

	// PollIntervalSeconds is how often the incoming directory is scanned (default: 5)
	PollIntervalSeconds int `env:"POLL_INTERVAL_SECONDS" default:"5"`

	// KeepIncoming leaves successfully processed files in incoming/ (copying
	// them to processed/ and writing a .done marker) instead of moving them
	// (default: false)
	KeepIncoming bool `env:"KEEP_INCOMING" default:"false"`
}

// PipelineConfig holds validation rules and record metadata defaults.
type PipelineConfig struct {
	// SourceName stamps every persisted row with its origin (default: kaggle/airquality)
	SourceName string `env:"SOURCE_NAME" default:"kaggle/airquality"`

	// DefaultSensorID is attached to every reading; the input format carries
	// no per-row sensor column (default: Station_1)
	DefaultSensorID string `env:"DEFAULT_SENSOR_ID" default:"Station_1"`

	// DefaultLocation is attached to every reading (default: Milan_AirQuality)
	DefaultLocation string `env:"DEFAULT_LOCATION" default:"Milan_AirQuality"`

	// TempMinC / TempMaxC bound accepted temperature readings, inclusive (default: -50..50)
	TempMinC float64 `env:"TEMP_MIN_C" default:"-50"`
	TempMaxC float64 `env:"TEMP_MAX_C" default:"50"`

	// RHMin / RHMax bound accepted relative-humidity readings, inclusive (default: 0..100)
	RHMin float64 `env:"RH_MIN" default:"0"`
	RHMax float64 `env:"RH_MAX" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// IncomingDir returns the directory scanned for new CSV files.
func (c *IntakeConfig) IncomingDir() string {
	return filepath.Join(c.DataDir, "incoming")
}

// ProcessedDir returns the terminal directory for successfully ingested files.
func (c *IntakeConfig) ProcessedDir() string {
	return filepath.Join(c.DataDir, "processed")
}

// QuarantineDir returns the terminal directory for rejected files and their
// diagnostic artifacts.
func (c *IntakeConfig) QuarantineDir() string {
	return filepath.Join(c.DataDir, "quarantine")
}

// PollInterval returns the scan interval as a duration.
func (c *IntakeConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
