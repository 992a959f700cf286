package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	OTEL     OTELConfig
	Ingest   IngestConfig
	Reports  ReportsConfig
	Match    MatchConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// IngestConfig holds ingestion tuning knobs
type IngestConfig struct {
	ChunkSize      int
	SourceKind     string
	SummaryCacheTTL time.Duration
}

// ReportsConfig describes the weekly tracking and referral report layouts.
// Location codes are listed in the column order the report uses; each day
// occupies one sub-column per code, in this order.
type ReportsConfig struct {
	LocationCodes       []string
	LocationNames       map[string]string
	AvailabilityMarkers []string
	TotalsMarker        string
	BrandMarker         string
	BrandLocationToken  string
	ClosedWeekday       time.Weekday
	RevenueLocations    []string
	GarbageLabels       []string
	ShortDateYear       int
}

// MatchConfig holds fuzzy entity resolution tuning
type MatchConfig struct {
	Threshold float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "clinic_report_analytics"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "clinic-report-analytics"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Ingest: IngestConfig{
			ChunkSize:       getEnvAsInt("INGEST_CHUNK_SIZE", 500),
			SourceKind:      getEnv("INGEST_SOURCE_KIND", "weekly_tracking"),
			SummaryCacheTTL: time.Duration(getEnvAsInt("SUMMARY_CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Reports: DefaultReportsConfig(),
		Match: MatchConfig{
			Threshold: getEnvAsFloat("MATCH_THRESHOLD", 0.6),
		},
	}, nil
}

// DefaultReportsConfig returns the layout of the clinic's current report
// exports. Tests construct their own variants; production overrides come
// from env where supported.
func DefaultReportsConfig() ReportsConfig {
	return ReportsConfig{
		LocationCodes: splitEnvList("REPORT_LOCATION_CODES", []string{"SO", "VN", "VE"}),
		LocationNames: map[string]string{
			"SO": "Sherman Oaks",
			"VN": "Van Nuys",
			"VE": "Venice",
		},
		AvailabilityMarkers: []string{"avail", "uc opening", "same day uc"},
		TotalsMarker:        "totals booked",
		BrandMarker:         strings.ToLower(getEnv("REPORT_BRAND_MARKER", "green dog")),
		BrandLocationToken:  strings.ToLower(getEnv("REPORT_BRAND_LOCATION", "sherman oaks")),
		ClosedWeekday:       time.Sunday,
		RevenueLocations:    splitEnvList("REPORT_REVENUE_LOCATIONS", []string{"Sherman Oaks", "Van Nuys", "Venice"}),
		GarbageLabels: []string{
			"zvet services only",
			"venice - green dog facility",
			"sherman oaks - main facility",
			"waitlist - not confirmed",
		},
		ShortDateYear: getEnvAsInt("REPORT_SHORT_DATE_YEAR", 2026),
	}
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func splitEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
