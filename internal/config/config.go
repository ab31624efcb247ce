package config

import (
	"fmt"
	"os"
	"strconv"

	"healthmon/pkg/config"

	"gopkg.in/yaml.v3"
)

// Config is the monitor service configuration. Values come from an
// optional YAML file (CONFIG_FILE, default "config.yaml") overridden
// by environment variables, with working defaults for local dev.
type Config struct {
	Database config.DatabaseConfig `yaml:"database"`
	Redis    config.RedisConfig    `yaml:"redis"`
	MQTT     config.MQTTConfig     `yaml:"mqtt"`

	// Monitor pipeline configuration.
	Monitor struct {
		// Redis Stream carrying incoming readings.
		Stream        string `yaml:"stream"`
		ConsumerGroup string `yaml:"consumer_group"`
		ConsumerName  string `yaml:"consumer_name"`
		BatchSize     int    `yaml:"batch_size"`

		// Cache keys and TTLs for the UI-facing mirrors.
		Cache struct {
			LatestKey string `yaml:"latest_key"`
			AlertsKey string `yaml:"alerts_key"`
			LatestTTL int    `yaml:"latest_ttl"` // seconds
			AlertsTTL int    `yaml:"alerts_ttl"` // seconds
		} `yaml:"cache"`

		// Rows returned by the history endpoint by default.
		HistoryLimit int `yaml:"history_limit"`

		// Seconds between reminder scheduler passes.
		ReminderIntervalSeconds int `yaml:"reminder_interval_seconds"`
	} `yaml:"monitor"`

	// Alerts holds the evaluator defaults. Tier fractions and cooldown
	// are historical business rules kept configurable.
	Alerts struct {
		Enabled         bool    `yaml:"enabled"`
		CooldownSeconds int     `yaml:"cooldown_seconds"`
		CriticalTier    float64 `yaml:"critical_tier"`
		WarningTier     float64 `yaml:"warning_tier"`
		HistoryCap      int     `yaml:"history_cap"`
	} `yaml:"alerts"`

	// Advisor is the text-generation endpoint concerning readings are
	// forwarded to. An empty APIKey disables forwarding.
	Advisor struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"advisor"`

	// Bridge is the device ingest queue configuration.
	Bridge struct {
		Topic     string `yaml:"topic"`
		QueueSize int    `yaml:"queue_size"`
	} `yaml:"bridge"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load builds the configuration: defaults, then the optional YAML
// file, then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if os.Getenv("CONFIG_FILE") != "" {
		// An explicitly named file must exist.
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.Database.LoadFromEnv("DB")
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Monitor.Stream = getEnv("VITALS_STREAM", cfg.Monitor.Stream)
	cfg.Monitor.ConsumerGroup = getEnv("VITALS_CONSUMER_GROUP", cfg.Monitor.ConsumerGroup)
	cfg.Monitor.ConsumerName = getEnv("VITALS_CONSUMER_NAME", cfg.Monitor.ConsumerName)

	cfg.Alerts.Enabled = getEnvBool("ALERTS_ENABLED", cfg.Alerts.Enabled)
	cfg.Alerts.CooldownSeconds = getEnvInt("ALERTS_COOLDOWN_SECONDS", cfg.Alerts.CooldownSeconds)

	cfg.Advisor.BaseURL = getEnv("ADVISOR_API_BASE", cfg.Advisor.BaseURL)
	cfg.Advisor.APIKey = getEnv("ADVISOR_API_KEY", cfg.Advisor.APIKey)
	cfg.Advisor.Model = getEnv("ADVISOR_MODEL", cfg.Advisor.Model)

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", cfg.HTTP.Addr)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}

	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "healthmon"
	cfg.Database.SSLMode = "disable"

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.DB = 0

	cfg.MQTT.ClientID = "healthmond"
	cfg.MQTT.QoS = 1

	cfg.Monitor.Stream = "healthmon:vitals:stream"
	cfg.Monitor.ConsumerGroup = "healthmon-monitor-group"
	cfg.Monitor.ConsumerName = "healthmon-monitor-1"
	cfg.Monitor.BatchSize = 10
	cfg.Monitor.Cache.LatestKey = "healthmon:vitals:latest"
	cfg.Monitor.Cache.AlertsKey = "healthmon:alerts:recent"
	cfg.Monitor.Cache.LatestTTL = 30
	cfg.Monitor.Cache.AlertsTTL = 60
	cfg.Monitor.HistoryLimit = 100
	cfg.Monitor.ReminderIntervalSeconds = 30

	cfg.Alerts.Enabled = true
	cfg.Alerts.CooldownSeconds = 300
	cfg.Alerts.CriticalTier = 0.5
	cfg.Alerts.WarningTier = 0.2
	cfg.Alerts.HistoryCap = 100

	cfg.Advisor.BaseURL = "https://api.deepseek.com/v1"
	cfg.Advisor.Model = "deepseek-chat"
	cfg.Advisor.TimeoutSeconds = 30

	cfg.Bridge.Topic = "healthmon/+/vitals"
	cfg.Bridge.QueueSize = 100

	cfg.HTTP.Addr = ":8080"

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
