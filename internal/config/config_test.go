package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != "memory" {
		t.Errorf("Database.Driver = %q, want memory", cfg.Database.Driver)
	}
	if cfg.Engine.SensitivityThreshold != 2.0 || cfg.Engine.MinimumAnomalyAmount != 100 {
		t.Errorf("Engine defaults = %+v", cfg.Engine)
	}
	if cfg.Engine.ReportingWindow != 30*24*time.Hour {
		t.Errorf("ReportingWindow = %v, want 720h", cfg.Engine.ReportingWindow)
	}
	if cfg.Engine.StrictTransitions {
		t.Error("StrictTransitions should default to false")
	}
	if cfg.Ingest.Provider != "dir" || cfg.Ingest.AWS.Region != "us-east-1" {
		t.Errorf("Ingest defaults = %+v", cfg.Ingest)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ENGINE_SENSITIVITY_THRESHOLD", "3.5")
	t.Setenv("ENGINE_STRICT_TRANSITIONS", "true")
	t.Setenv("ENGINE_REPORTING_WINDOW", "168h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.Address() != "0.0.0.0:9090" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Engine.SensitivityThreshold != 3.5 || !cfg.Engine.StrictTransitions {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Engine.ReportingWindow != 7*24*time.Hour {
		t.Errorf("ReportingWindow = %v, want 168h", cfg.Engine.ReportingWindow)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"negative threshold", func(c *Config) { c.Engine.SensitivityThreshold = -1 }, true},
		{"bad schedule", func(c *Config) {
			c.Scheduler.Enabled = true
			c.Scheduler.Schedule = "every tuesday"
		}, true},
		{"descriptor schedule", func(c *Config) {
			c.Scheduler.Enabled = true
			c.Scheduler.Schedule = "@hourly"
		}, false},
		{"unknown ingest provider", func(c *Config) { c.Ingest.Provider = "oracle" }, true},
		{"cloud ingest without organization", func(c *Config) {
			c.Ingest = IngestConfig{Provider: "aws", Window: time.Hour}
		}, true},
		{"aws ingest", func(c *Config) {
			c.Ingest = IngestConfig{Provider: "aws", OrganizationID: "acme", Window: time.Hour}
		}, false},
		{"gcp ingest without table", func(c *Config) {
			c.Ingest = IngestConfig{Provider: "gcp", OrganizationID: "acme", Window: time.Hour}
		}, true},
		{"azure ingest without subscription", func(c *Config) {
			c.Ingest = IngestConfig{Provider: "azure", OrganizationID: "acme", Window: time.Hour}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:   ServerConfig{Port: 8080},
				Database: DatabaseConfig{Driver: "sqlite"},
				Engine:   EngineConfig{ReportingWindow: time.Hour},
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
