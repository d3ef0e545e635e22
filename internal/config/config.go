package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	LogLevel string
	Database DatabaseConfig
	JWT      JWTConfig
	Access   AccessConfig
	Sweep    SweepConfig
	Server   ServerConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql or postgres
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds the operator access token configuration
type JWTConfig struct {
	Secret          string
	AccessTokenMins int
}

// AccessConfig holds the QR token and card tunables. It is built once at
// startup and handed to the token service by value.
type AccessConfig struct {
	QRSecret             string
	Issuer               string
	TokenTTL             time.Duration
	ActivationWindow     time.Duration
	ExpiryWarningHorizon time.Duration
	QRRedirectURL        string
	Location             *time.Location
}

// SweepConfig holds the expiry sweep schedules (standard 5-field cron)
type SweepConfig struct {
	Enabled          bool
	DemotionSchedule string
	WarningSchedule  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	RequestTimeout time.Duration
	AllowedOrigins string
}

// Default tunables
const (
	DefaultTokenTTL             = 30 * time.Second
	DefaultActivationWindow     = 8 * time.Hour
	DefaultExpiryWarningHorizon = 30 * 24 * time.Hour
	DefaultDemotionSchedule     = "0 0 * * *"
	DefaultWarningSchedule      = "5 0 * * 1"
)

// DefaultAccessConfig returns the access tunables with their defaults and the
// given secret. Used by the CLI and tests.
func DefaultAccessConfig(secret string) AccessConfig {
	return AccessConfig{
		QRSecret:             secret,
		Issuer:               "saeta-access",
		TokenTTL:             DefaultTokenTTL,
		ActivationWindow:     DefaultActivationWindow,
		ExpiryWarningHorizon: DefaultExpiryWarningHorizon,
		QRRedirectURL:        "http://localhost:4200/qr-redirect.html?token=",
		Location:             time.UTC,
	}
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	access, err := loadAccessConfig(appMode)
	if err != nil {
		return nil, err
	}

	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	db := loadDatabaseConfig(appMode)
	if db.Driver != "mysql" && db.Driver != "postgres" {
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'postgres')", db.Driver)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: db,
		JWT:      loadJWTConfig(appMode),
		Access:   access,
		Sweep:    loadSweepConfig(),
		Server:   server,
	}

	// Set global config
	AppConfig = config

	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "saeta_access"),
	}
}

// loadJWTConfig loads operator token config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))

	return JWTConfig{
		Secret:          getEnv(prefix+"JWT_SECRET", "default_secret"),
		AccessTokenMins: accessMins,
	}
}

// loadAccessConfig loads QR token and card activation settings
func loadAccessConfig(mode string) (AccessConfig, error) {
	prefix := modePrefix(mode)

	ttl, err := durationFromEnv("QR_TOKEN_TTL_SECONDS", time.Second, DefaultTokenTTL)
	if err != nil {
		return AccessConfig{}, err
	}
	window, err := durationFromEnv("CARD_ACTIVATION_HOURS", time.Hour, DefaultActivationWindow)
	if err != nil {
		return AccessConfig{}, err
	}
	horizon, err := durationFromEnv("EXPIRY_WARNING_DAYS", 24*time.Hour, DefaultExpiryWarningHorizon)
	if err != nil {
		return AccessConfig{}, err
	}

	tz := getEnv("TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return AccessConfig{}, fmt.Errorf("invalid TIMEZONE '%s': %w", tz, err)
	}

	secret := getEnv(prefix+"QR_SECRET", "")
	if secret == "" {
		if mode == "prod" {
			return AccessConfig{}, fmt.Errorf("%sQR_SECRET is required in prod mode", prefix)
		}
		secret = "default_qr_secret"
	}

	return AccessConfig{
		QRSecret:             secret,
		Issuer:               getEnv("QR_ISSUER", "saeta-access"),
		TokenTTL:             ttl,
		ActivationWindow:     window,
		ExpiryWarningHorizon: horizon,
		QRRedirectURL:        getEnv("QR_REDIRECT_URL", "http://localhost:4200/qr-redirect.html?token="),
		Location:             loc,
	}, nil
}

// loadSweepConfig loads the expiry sweep schedules
func loadSweepConfig() SweepConfig {
	enabled, err := strconv.ParseBool(getEnv("SWEEP_ENABLED", "true"))
	if err != nil {
		enabled = true
	}

	return SweepConfig{
		Enabled:          enabled,
		DemotionSchedule: getEnv("SWEEP_DEMOTION_CRON", DefaultDemotionSchedule),
		WarningSchedule:  getEnv("SWEEP_WARNING_CRON", DefaultWarningSchedule),
	}
}

// loadServerConfig loads HTTP server settings
func loadServerConfig() (ServerConfig, error) {
	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "5s"))
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	return ServerConfig{
		RequestTimeout: timeout,
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
	}, nil
}

// durationFromEnv reads a positive integer count of unit
func durationFromEnv(key string, unit time.Duration, def time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: '%s' (must be a positive integer)", key, raw)
	}
	return time.Duration(n) * unit, nil
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	if c.Server.AllowedOrigins == "" {
		if c.IsDev() {
			return "*"
		}
		return "http://localhost:4200"
	}
	return c.Server.AllowedOrigins
}
