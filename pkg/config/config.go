package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds toolkit configuration.
type Config struct {
	SchemaDir       string
	SchemaNamespace string
	TrustTablePath  string
	Concurrency     int
	LogLevel        string
	OTelEnabled     bool
	OTLPEndpoint    string
}

// Load loads configuration from environment variables.
func Load() *Config {
	namespace := os.Getenv("SPP_SCHEMA_NAMESPACE")
	if namespace == "" {
		namespace = "https://spp.dev/schemas/"
	}

	concurrency := 4
	if v, err := strconv.Atoi(os.Getenv("SPP_CONCURRENCY")); err == nil && v > 0 {
		concurrency = v
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4317"
	}

	return &Config{
		// Empty selects the schema bundle embedded in the binary.
		SchemaDir:       os.Getenv("SPP_SCHEMA_DIR"),
		SchemaNamespace: namespace,
		TrustTablePath:  os.Getenv("SPP_TRUST_TABLE"),
		Concurrency:     concurrency,
		LogLevel:        logLevel,
		OTelEnabled:     os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:    endpoint,
	}
}

// SlogLevel maps LogLevel onto a slog level. Unknown names yield INFO.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
