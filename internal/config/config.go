package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the ImageVault API.
type Config struct {
	Server   ServerConfig
	MinIO    MinIOConfig
	Metadata MetadataConfig
	Images   ImageConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MinIOConfig carries object store connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// MetadataConfig selects and parameterizes the metadata store backend.
// Backend is "badger" (embedded, default) or "postgres".
type MetadataConfig struct {
	Backend    string
	BadgerPath string
	Postgres   PostgresConfig
}

// PostgresConfig contains PostgreSQL connection details for the
// postgres metadata backend.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// ImageConfig groups image operation settings.
type ImageConfig struct {
	PresignedURLExpiry time.Duration
	DefaultListLimit   int
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("IMAGEVAULT_API_HOST", "0.0.0.0"),
			Port:         getInt("IMAGEVAULT_API_PORT", 8080),
			ReadTimeout:  getDuration("IMAGEVAULT_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("IMAGEVAULT_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("IMAGEVAULT_API_IDLE_TIMEOUT", 60*time.Second),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "imagevault"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "image-storage-bucket"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Metadata: MetadataConfig{
			Backend:    strings.ToLower(getString("METADATA_BACKEND", "badger")),
			BadgerPath: getString("METADATA_BADGER_PATH", "./data/metadata"),
			Postgres: PostgresConfig{
				Host:     getString("POSTGRES_HOST", "localhost"),
				Port:     getInt("POSTGRES_PORT", 5432),
				User:     getString("POSTGRES_USER", "imagevault_app"),
				Password: getString("POSTGRES_PASSWORD", "change-me"),
				Database: getString("POSTGRES_DB", "imagevault"),
				SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
			},
		},
		Images: ImageConfig{
			PresignedURLExpiry: time.Duration(getInt("PRESIGNED_URL_EXPIRATION", 3600)) * time.Second,
			DefaultListLimit:   getInt("IMAGEVAULT_LIST_LIMIT", 100),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("IMAGEVAULT_METRICS_PATH", "/metrics"),
		},
	}

	switch cfg.Metadata.Backend {
	case "badger", "postgres":
	default:
		return Config{}, fmt.Errorf("unknown metadata backend %q", cfg.Metadata.Backend)
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
