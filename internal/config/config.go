// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Bearer token settings
	JWTSecret string
	JWTTTL    time.Duration

	// Storage backend: "local" or "s3"
	StorageBackend string
	UploadRoot     string // local backend root directory
	FileBaseURL    string // public URL prefix for locally stored files

	// S3-compatible object storage
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Password reset
	ResetTokenTTL time.Duration
	ResetBaseURL  string // link prefix embedded in reset emails
	SendGridKey   string
	MailFrom      string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is loaded first if present. Returns an error if critical values are
// missing in production mode.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "docshelf"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "docshelf"),
		DBMaxConns: envInt("POSTGRES_MAX_CONNS", 20),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		JWTSecret: envOrDefault("JWT_SECRET", "dev-secret-do-not-use"),
		JWTTTL:    envDuration("JWT_TTL_MINUTES", 60) * time.Minute,

		StorageBackend: envOrDefault("STORAGE_BACKEND", "local"),
		UploadRoot:     envOrDefault("UPLOAD_ROOT", "./uploads"),
		FileBaseURL:    envOrDefault("FILE_BASE_URL", "/files"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "eu-central"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "docshelf-assets"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		ResetTokenTTL: envDuration("RESET_TOKEN_TTL_MINUTES", 30) * time.Minute,
		ResetBaseURL:  envOrDefault("RESET_BASE_URL", "http://localhost:8080/reset"),
		SendGridKey:   os.Getenv("SENDGRID_API_KEY"),
		MailFrom:      envOrDefault("MAIL_FROM", "no-reply@docshelf.local"),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.JWTSecret == "dev-secret-do-not-use" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		if cfg.StorageBackend == "s3" && (cfg.S3Endpoint == "" || cfg.S3AccessKey == "") {
			return nil, fmt.Errorf("S3_ENDPOINT and S3_ACCESS_KEY must be set for the s3 backend")
		}
	}

	if cfg.StorageBackend != "local" && cfg.StorageBackend != "s3" {
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (expected local or s3)", cfg.StorageBackend)
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt reads a positive integer environment variable.
func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// envDuration reads an integer environment variable as a duration unit count.
func envDuration(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(fallback)
}
