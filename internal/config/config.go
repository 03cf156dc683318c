/*
Copyright 2025 Jordi Gil.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads pipeline configuration from a YAML file, applies
// environment-variable overrides, fills in defaults, and validates the
// result. Configuration loading is deliberately outside the pipeline core
// per the specification's scope boundary; this package is the pluggable
// boundary layer's concrete choice for it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// StorageConfig configures the C2 Object Store Gateway.
type StorageConfig struct {
	Type       string `yaml:"type"`
	Bucket     string `yaml:"bucket"`
	Prefix     string `yaml:"prefix"`
	Encryption string `yaml:"encryption"`
	LocalPath  string `yaml:"local_path"`
}

// RetryConfig configures the C11 failure-queue backoff policy.
type RetryConfig struct {
	MaxRetries      int             `yaml:"max_retries"`
	BackoffSchedule []time.Duration `yaml:"backoff_schedule"`
}

// RulesConfig configures the C5 rule engine cache.
type RulesConfig struct {
	CacheAcrossBatches bool `yaml:"cache_across_batches"`
}

// CoordinatorConfig configures the C10 report coordinator.
type CoordinatorConfig struct {
	StaleEventThreshold time.Duration `yaml:"stale_event_threshold"`
	ReportFormat        string        `yaml:"report_format"`
}

// BatchConfig configures C1 batch-level processing limits.
type BatchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// QualityConfig configures the C6 quality scorer's dimension weights.
type QualityConfig struct {
	Weights map[string]float64 `yaml:"weights"`
}

// ServerConfig configures the boundary HTTP/metrics listeners. Out of the
// core's scope per spec.md §1, but still part of the deployable binary.
type ServerConfig struct {
	WebhookPort string `yaml:"webhook_port"`
	MetricsPort string `yaml:"metrics_port"`
	// IngestionPort serves submitBatch/getBatchStatus (spec.md §6).
	IngestionPort string `yaml:"ingestion_port"`
}

// FXConfig configures the C7 risk calculator's exchange rate source: a
// fixed table of currency-to-EUR rates, refreshed by redeploying with a
// new config rather than a live upstream feed.
type FXConfig struct {
	Rates map[string]float64 `yaml:"rates"`
}

// LoggingConfig configures the zap/logrus loggers shared across packages.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig configures the pgx/sqlx connection pool.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// RedisConfig configures the C9 event bus transport and optional shared
// rule/exemption cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Config is the root configuration document.
type Config struct {
	Storage     StorageConfig     `yaml:"storage"`
	Retry       RetryConfig       `yaml:"retry"`
	Rules       RulesConfig       `yaml:"rules"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Batch       BatchConfig       `yaml:"batch"`
	Quality     QualityConfig     `yaml:"quality"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	FX          FXConfig          `yaml:"fx"`
}

var defaultBackoffSchedule = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	60 * time.Second,
	5 * time.Minute,
	10 * time.Minute,
}

var defaultDimensions = []string{
	"completeness", "accuracy", "consistency", "timeliness", "validity", "uniqueness",
}

// Load reads configFile, applies environment overrides, fills in defaults,
// and validates the result.
func Load(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	applyDefaults(config)

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func applyDefaults(config *Config) {
	if config.Storage.Type == "" {
		config.Storage.Type = "local"
	}
	if len(config.Retry.BackoffSchedule) == 0 {
		config.Retry.BackoffSchedule = defaultBackoffSchedule
	}
	if config.Retry.MaxRetries == 0 {
		config.Retry.MaxRetries = 5
	}
	if !config.Rules.CacheAcrossBatches {
		config.Rules.CacheAcrossBatches = true
	}
	if config.Coordinator.StaleEventThreshold == 0 {
		config.Coordinator.StaleEventThreshold = 24 * time.Hour
	}
	if config.Coordinator.ReportFormat == "" {
		config.Coordinator.ReportFormat = "pdf"
	}
	if config.Batch.Timeout == 0 {
		config.Batch.Timeout = 30 * time.Minute
	}
	if len(config.Quality.Weights) == 0 {
		config.Quality.Weights = make(map[string]float64, len(defaultDimensions))
		uniform := 1.0 / float64(len(defaultDimensions))
		for _, dim := range defaultDimensions {
			config.Quality.Weights[dim] = uniform
		}
	}
	if config.Server.MetricsPort == "" {
		config.Server.MetricsPort = "9090"
	}
	if config.Server.IngestionPort == "" {
		config.Server.IngestionPort = "8080"
	}
	if len(config.FX.Rates) == 0 {
		config.FX.Rates = map[string]float64{"EUR": 1.0}
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "json"
	}
	if config.Database.Port == 0 {
		config.Database.Port = 5432
	}
	if config.Database.SSLMode == "" {
		config.Database.SSLMode = "disable"
	}
	if config.Database.MaxOpenConns == 0 {
		config.Database.MaxOpenConns = 25
	}
	if config.Database.MaxIdleConns == 0 {
		config.Database.MaxIdleConns = 5
	}
	if config.Database.ConnMaxLifetime == 0 {
		config.Database.ConnMaxLifetime = 5 * time.Minute
	}
	if config.Database.ConnMaxIdleTime == 0 {
		config.Database.ConnMaxIdleTime = 5 * time.Minute
	}
	if config.Redis.Addr == "" {
		config.Redis.Addr = "localhost:6379"
	}
}

func loadFromEnv(config *Config) error {
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		config.Storage.Type = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		config.Storage.Bucket = v
	}
	if v := os.Getenv("WEBHOOK_PORT"); v != "" {
		config.Server.WebhookPort = v
	}
	if v := os.Getenv("METRICS_PORT"); v != "" {
		config.Server.MetricsPort = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		config.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB_PORT: %w", err)
		}
		config.Database.Port = port
	}
	if v := os.Getenv("DB_USER"); v != "" {
		config.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		config.Database.Database = v
	}
	if v := os.Getenv("DB_SSL_MODE"); v != "" {
		config.Database.SSLMode = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		config.Redis.Addr = v
	}
	if v := os.Getenv("DRY_RUN"); v != "" {
		if _, err := strconv.ParseBool(v); err != nil {
			return fmt.Errorf("invalid DRY_RUN: %w", err)
		}
	}
	return nil
}

func validate(config *Config) error {
	switch config.Storage.Type {
	case "object-store", "local":
	default:
		return fmt.Errorf("unsupported storage type: %s", config.Storage.Type)
	}

	if config.Storage.Type == "object-store" && config.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket is required for object-store type")
	}

	if config.Retry.MaxRetries <= 0 {
		return fmt.Errorf("retry max retries must be greater than 0")
	}

	if config.Batch.Timeout <= 0 {
		return fmt.Errorf("batch timeout must be greater than 0")
	}

	var total float64
	for _, w := range config.Quality.Weights {
		if w < 0 {
			return fmt.Errorf("quality weights must be non-negative")
		}
		total += w
	}
	if len(config.Quality.Weights) > 0 {
		if total < 0.999 || total > 1.001 {
			return fmt.Errorf("quality weights must sum to 1.0, got %f", total)
		}
	}

	switch config.Coordinator.ReportFormat {
	case "pdf", "xlsx", "xbrl":
	default:
		return fmt.Errorf("unsupported coordinator report format: %s", config.Coordinator.ReportFormat)
	}

	return nil
}
