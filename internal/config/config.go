package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Engine    EngineConfig
	Scheduler SchedulerConfig
	Ingest    IngestConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	// RateLimit is requests per second per client; 0 disables limiting
	RateLimit   float64
	RateBurst   int
	Environment string
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	// Driver is memory, sqlite or postgres
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// For SQLite
	Path string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// EngineConfig tunes anomaly detection and optimization defaults
type EngineConfig struct {
	SensitivityThreshold float64
	MinimumAnomalyAmount float64
	LookbackDays         int
	MinimumSavings       float64
	ReportingWindow      time.Duration
	StrictTransitions    bool
}

// SchedulerConfig controls periodic analysis runs
type SchedulerConfig struct {
	Enabled bool
	// Schedule is a standard cron expression or descriptor such as @daily
	Schedule string
	// DataDir holds one sub-directory of sample files per organization
	DataDir string
	// UserID is recorded as the creator of scheduled optimization jobs
	UserID string
}

// IngestConfig selects where scheduled runs read cost data from
type IngestConfig struct {
	// Provider is dir, aws, gcp or azure
	Provider string
	// OrganizationID owns samples pulled from a cloud billing API
	OrganizationID string
	// Window is how far back each scheduled run pulls billing data
	Window time.Duration
	AWS    AWSConfig
	GCP    GCPConfig
	Azure  AzureConfig
}

// AWSConfig holds Cost Explorer credentials; empty keys use the default chain
type AWSConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// GCPConfig points at a BigQuery billing export table
type GCPConfig struct {
	ProjectID          string
	ServiceAccountJSON string
	BillingTable       string
}

// AzureConfig holds service principal credentials for Cost Management
type AzureConfig struct {
	TenantID       string
	ClientID       string
	ClientSecret   string
	SubscriptionID string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			RateLimit:       getEnvAsFloat("RATE_LIMIT_RPS", 20),
			RateBurst:       getEnvAsInt("RATE_LIMIT_BURST", 40),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "memory"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "costengine"),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			Path:            getEnv("DB_PATH", "./costengine.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Engine: EngineConfig{
			SensitivityThreshold: getEnvAsFloat("ENGINE_SENSITIVITY_THRESHOLD", 2.0),
			MinimumAnomalyAmount: getEnvAsFloat("ENGINE_MINIMUM_ANOMALY_AMOUNT", 100),
			LookbackDays:         getEnvAsInt("ENGINE_LOOKBACK_DAYS", 30),
			MinimumSavings:       getEnvAsFloat("ENGINE_MINIMUM_SAVINGS", 0),
			ReportingWindow:      getEnvAsDuration("ENGINE_REPORTING_WINDOW", 30*24*time.Hour),
			StrictTransitions:    getEnvAsBool("ENGINE_STRICT_TRANSITIONS", false),
		},
		Scheduler: SchedulerConfig{
			Enabled:  getEnvAsBool("SCHEDULER_ENABLED", false),
			Schedule: getEnv("SCHEDULER_SCHEDULE", "@daily"),
			DataDir:  getEnv("SCHEDULER_DATA_DIR", "./data"),
			UserID:   getEnv("SCHEDULER_USER_ID", "scheduler"),
		},
		Ingest: IngestConfig{
			Provider:       getEnv("INGEST_PROVIDER", "dir"),
			OrganizationID: getEnv("INGEST_ORGANIZATION_ID", ""),
			Window:         getEnvAsDuration("INGEST_WINDOW", 30*24*time.Hour),
			AWS: AWSConfig{
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
				Region:          getEnv("AWS_COST_EXPLORER_REGION", "us-east-1"),
			},
			GCP: GCPConfig{
				ProjectID:          getEnv("GCP_PROJECT_ID", ""),
				ServiceAccountJSON: getEnv("GCP_SERVICE_ACCOUNT_JSON", ""),
				BillingTable:       getEnv("GCP_BILLING_TABLE", ""),
			},
			Azure: AzureConfig{
				TenantID:       getEnv("AZURE_TENANT_ID", ""),
				ClientID:       getEnv("AZURE_CLIENT_ID", ""),
				ClientSecret:   getEnv("AZURE_CLIENT_SECRET", ""),
				SubscriptionID: getEnv("AZURE_SUBSCRIPTION_ID", ""),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Engine.SensitivityThreshold < 0 || c.Engine.MinimumAnomalyAmount < 0 || c.Engine.MinimumSavings < 0 {
		return fmt.Errorf("engine thresholds must not be negative")
	}

	if c.Engine.ReportingWindow <= 0 {
		return fmt.Errorf("invalid reporting window: %s", c.Engine.ReportingWindow)
	}

	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.Schedule); err != nil {
			return fmt.Errorf("invalid scheduler schedule %q: %w", c.Scheduler.Schedule, err)
		}
	}

	switch c.Ingest.Provider {
	case "", "dir":
	case "aws", "gcp", "azure":
		if c.Ingest.OrganizationID == "" {
			return fmt.Errorf("INGEST_ORGANIZATION_ID is required for provider %s", c.Ingest.Provider)
		}
		if c.Ingest.Window <= 0 {
			return fmt.Errorf("invalid ingest window: %s", c.Ingest.Window)
		}
	default:
		return fmt.Errorf("unsupported ingest provider: %s", c.Ingest.Provider)
	}
	if c.Ingest.Provider == "gcp" && c.Ingest.GCP.BillingTable == "" {
		return fmt.Errorf("GCP_BILLING_TABLE is required for provider gcp")
	}
	if c.Ingest.Provider == "azure" && c.Ingest.Azure.SubscriptionID == "" {
		return fmt.Errorf("AZURE_SUBSCRIPTION_ID is required for provider azure")
	}

	return nil
}

// Address returns the host:port the HTTP server listens on
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
