// Package config provides configuration management for the blogging API.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting.
// The resulting AppConfig is built once in main and handed to every component that needs it;
// nothing in the application reads the environment after startup.
package config

import (
	"fmt"
	// `os` package provides operating system functionalities, like reading environment variables.
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names accepted by APP_ENVIRONMENT.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Pool size bounds. Values outside the range are clamped and reported.
const (
	minPoolSize = 5
	maxPoolSize = 100
)

// PoolConfig represents configuration for the database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxSize  int
	// AcquireTimeout bounds how long a request waits for a free connection
	// before failing instead of queueing.
	AcquireTimeout time.Duration
	// RunMigrations applies the embedded schema migrations at startup.
	RunMigrations bool
}

// DSN renders the pool settings as a postgres:// URL understood by both pgx and golang-migrate.
func (c *PoolConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret            string        // Secret key for signing JWTs
	AccessTokenDuration  time.Duration // Duration for access tokens
	RefreshTokenDuration time.Duration // Duration for refresh tokens
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host           string
	Port           string
	RequestTimeout time.Duration
}

// Addr is the listen address for http.Server.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Environment string
	Database    *PoolConfig
	Auth        *AuthConfig
	Server      *ServerConfig
}

// IsProduction reports whether the application runs with production settings
// (JSON logs, no stack traces on warnings).
func (c *AppConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Helper function to get a required environment variable.
// Appends an error to the errors slice if the variable is not set.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as an int.
// Uses defaultValue if not set or if parsing fails. Appends an error if parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// Helper function to get an optional environment variable parsed as a bool.
// Accepts anything strconv.ParseBool does ("1", "true", "FALSE", ...).
func getOptionalEnvBool(key string, defaultValue bool, errors *[]string) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueBool, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected boolean, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueBool
}

// Helper function to get an optional environment variable parsed as time.Duration.
// `time.ParseDuration` expects a string like "15m", "1h30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	if valueDuration <= 0 {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: duration must be positive, got '%s'", key, valueStr))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the pool size inside [minPoolSize, maxPoolSize].
// Clamping is not fatal, so it does not append to the error list.
func clampPoolSize(size int) int {
	if size < minPoolSize {
		return minPoolSize
	}
	if size > maxPoolSize {
		return maxPoolSize
	}
	return size
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	environment := strings.ToLower(getOptionalEnv("APP_ENVIRONMENT", EnvDevelopment))
	if environment != EnvDevelopment && environment != EnvProduction {
		errors = append(errors, fmt.Sprintf("%s is not a supported environment. Use either `%s` or `%s`", environment, EnvDevelopment, EnvProduction))
	}

	// Database Configuration
	database := &PoolConfig{
		Host:           getOptionalEnv("DB_HOST", "localhost"),
		Port:           getOptionalEnvInt("DB_PORT", 5432, &errors),
		User:           getRequiredEnv("DB_USER", &errors),
		Password:       getRequiredEnv("DB_PASSWORD", &errors),
		DBName:         getRequiredEnv("DB_NAME", &errors),
		SSLMode:        getOptionalEnv("DB_SSLMODE", "disable"),
		MaxSize:        clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors)),
		AcquireTimeout: getOptionalEnvDuration("DB_ACQUIRE_TIMEOUT", 3*time.Second, &errors),
		RunMigrations:  getOptionalEnvBool("DB_RUN_MIGRATIONS", true, &errors),
	}

	// Auth Configuration
	authConfig := &AuthConfig{
		JWTSecret:            getRequiredEnv("JWT_SECRET", &errors),
		AccessTokenDuration:  getOptionalEnvDuration("JWT_ACCESS_TOKEN_DURATION", 15*time.Minute, &errors),
		RefreshTokenDuration: getOptionalEnvDuration("JWT_REFRESH_TOKEN_DURATION", 168*time.Hour, &errors), // 7 days
	}

	// Server Configuration
	serverConfig := &ServerConfig{
		Host:           getOptionalEnv("HOST", "0.0.0.0"),
		Port:           getOptionalEnv("PORT", "8080"),
		RequestTimeout: getOptionalEnvDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second, &errors),
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		Environment: environment,
		Database:    database,
		Auth:        authConfig,
		Server:      serverConfig,
	}, nil
}
