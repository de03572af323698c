package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable holding an optional YAML
// config file path.
const ConfigFileEnv = "CLIENTDESK_CONFIG"

type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	DBMaxOpenConns    int           // Pool size (default: 10)
	DBMaxIdleConns    int           // Idle pool size (default: 5)
	DBConnMaxLifetime time.Duration // Connection recycle age (default: 30m)
	DBQueryTimeout    time.Duration // Per store call timeout (default: 5s)

	CORSAllowedOrigins []string // Browser origins allowed to call the API (default: none)
	OTLPEndpoint       string   // OTLP/HTTP trace collector, e.g. localhost:4318 (default: tracing off)

	// DatabaseURL is never read from the config file. See ResolveDatabaseURL.
	DatabaseURL    string
	DatabaseSource SecretSource
}

// fileConfig is the YAML config file layout. Unknown keys are rejected, so
// a database_url key in the file is an error rather than silently used.
type fileConfig struct {
	Env                 string        `yaml:"env"`
	LogLevel            string        `yaml:"log_level"`
	LogFormat           string        `yaml:"log_format"`
	Port                int           `yaml:"port"`
	ShutdownGracePeriod time.Duration `yaml:"shutdown_grace_period"`
	Database            struct {
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		QueryTimeout    time.Duration `yaml:"query_timeout"`
	} `yaml:"database"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	OTLPEndpoint       string   `yaml:"otlp_endpoint"`
}

func DefaultConfig() Config {
	return Config{
		Env:                 "dev",
		LogLevel:            "info",
		LogFormat:           "json",
		Port:                8080,
		ShutdownGracePeriod: 10 * time.Second,
		DBMaxOpenConns:      10,
		DBMaxIdleConns:      5,
		DBConnMaxLifetime:   30 * time.Minute,
		DBQueryTimeout:      5 * time.Second,
	}
}

// LoadConfig layers, lowest first: defaults, the YAML file named by
// CLIENTDESK_CONFIG, a .env file in the working directory (never overriding
// real environment variables), then the environment. The database URL is
// resolved separately by ResolveDatabaseURL.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()
	return cfg, cfg.validate()
}

func (cfg *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.Env, fc.Env)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setInt(&cfg.Port, fc.Port)
	setDuration(&cfg.ShutdownGracePeriod, fc.ShutdownGracePeriod)
	setInt(&cfg.DBMaxOpenConns, fc.Database.MaxOpenConns)
	setInt(&cfg.DBMaxIdleConns, fc.Database.MaxIdleConns)
	setDuration(&cfg.DBConnMaxLifetime, fc.Database.ConnMaxLifetime)
	setDuration(&cfg.DBQueryTimeout, fc.Database.QueryTimeout)
	setString(&cfg.OTLPEndpoint, fc.OTLPEndpoint)
	if len(fc.CORSAllowedOrigins) > 0 {
		cfg.CORSAllowedOrigins = fc.CORSAllowedOrigins
	}
	return nil
}

func (cfg *Config) applyEnv() {
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)
	cfg.DBMaxOpenConns = getEnvIntOrDefault("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBMaxIdleConns = getEnvIntOrDefault("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)
	cfg.DBConnMaxLifetime = getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", cfg.DBConnMaxLifetime)
	cfg.DBQueryTimeout = getEnvDurationOrDefault("DB_QUERY_TIMEOUT", cfg.DBQueryTimeout)
	cfg.OTLPEndpoint = getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = splitList(origins)
	}
}

func (cfg Config) validate() error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.DBMaxIdleConns > cfg.DBMaxOpenConns && cfg.DBMaxOpenConns > 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) exceeds DB_MAX_OPEN_CONNS (%d)", cfg.DBMaxIdleConns, cfg.DBMaxOpenConns)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
