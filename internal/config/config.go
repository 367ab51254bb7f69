package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Attendance   AttendanceConfig
	Salary       SalaryConfig
	Retry        RetryConfig
	Cache        CacheConfig
	Notification NotificationConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// AttendanceConfig decides when a check-in counts as late.
type AttendanceConfig struct {
	OfficeStart      string // HH:MM, local to Timezone
	LateGraceMinutes int
	Timezone         string

	// Geofence for check-ins. Disabled when RadiusMeters is zero.
	OfficeLatitude  float64
	OfficeLongitude float64
	RadiusMeters    float64
}

type SalaryConfig struct {
	OverdueAfterDays int
	OverdueInterval  time.Duration
}

// RetryConfig bounds the exponential backoff applied to every repository call.
type RetryConfig struct {
	Attempts uint64
	Base     time.Duration
	Cap      time.Duration
	Ceiling  time.Duration
}

type CacheConfig struct {
	TTL time.Duration
}

type NotificationConfig struct {
	Retention     time.Duration
	PruneInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hrms"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance rules
	grace, err := strconv.Atoi(getEnv("ATTENDANCE_LATE_GRACE_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_LATE_GRACE_MINUTES: %w", err)
	}
	config.Attendance = AttendanceConfig{
		OfficeStart:      getEnv("ATTENDANCE_OFFICE_START", "09:00"),
		LateGraceMinutes: grace,
		Timezone:         getEnv("ATTENDANCE_TIMEZONE", "UTC"),
	}
	for key, dst := range map[string]*float64{
		"ATTENDANCE_OFFICE_LATITUDE":  &config.Attendance.OfficeLatitude,
		"ATTENDANCE_OFFICE_LONGITUDE": &config.Attendance.OfficeLongitude,
		"ATTENDANCE_RADIUS_METERS":    &config.Attendance.RadiusMeters,
	} {
		if *dst, err = strconv.ParseFloat(getEnv(key, "0"), 64); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	// Salary lifecycle
	overdueDays, err := strconv.Atoi(getEnv("SALARY_OVERDUE_AFTER_DAYS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SALARY_OVERDUE_AFTER_DAYS: %w", err)
	}
	overdueInterval, err := time.ParseDuration(getEnv("SALARY_OVERDUE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SALARY_OVERDUE_INTERVAL: %w", err)
	}
	config.Salary = SalaryConfig{
		OverdueAfterDays: overdueDays,
		OverdueInterval:  overdueInterval,
	}

	// Retry policy for database calls
	attempts, err := strconv.ParseUint(getEnv("DB_RETRY_ATTEMPTS", "5"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_RETRY_ATTEMPTS: %w", err)
	}
	config.Retry = RetryConfig{Attempts: attempts}
	if config.Retry.Base, err = time.ParseDuration(getEnv("DB_RETRY_BASE", "200ms")); err != nil {
		return nil, fmt.Errorf("invalid DB_RETRY_BASE: %w", err)
	}
	if config.Retry.Cap, err = time.ParseDuration(getEnv("DB_RETRY_CAP", "3.2s")); err != nil {
		return nil, fmt.Errorf("invalid DB_RETRY_CAP: %w", err)
	}
	if config.Retry.Ceiling, err = time.ParseDuration(getEnv("DB_RETRY_CEILING", "30s")); err != nil {
		return nil, fmt.Errorf("invalid DB_RETRY_CEILING: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	config.Cache = CacheConfig{TTL: cacheTTL}

	if config.Notification.Retention, err = time.ParseDuration(getEnv("NOTIFICATION_RETENTION", "2160h")); err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_RETENTION: %w", err)
	}
	if config.Notification.PruneInterval, err = time.ParseDuration(getEnv("NOTIFICATION_PRUNE_INTERVAL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_PRUNE_INTERVAL: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.Parse("15:04", c.Attendance.OfficeStart); err != nil {
		return fmt.Errorf("ATTENDANCE_OFFICE_START must be HH:MM")
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("ATTENDANCE_TIMEZONE is invalid: %w", err)
	}
	if c.Attendance.RadiusMeters < 0 {
		return fmt.Errorf("ATTENDANCE_RADIUS_METERS must not be negative")
	}
	if c.Retry.Attempts == 0 {
		return fmt.Errorf("DB_RETRY_ATTEMPTS must be at least 1")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog levels, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
