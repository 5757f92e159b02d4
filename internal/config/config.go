// Package config loads service configuration from a YAML file with
// environment variable overrides for anything deploy-specific.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Bounce    BounceConfig    `yaml:"bounce"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port string to listen on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds Redis settings. Redis is required: the stats
// aggregator's event dedup and unique counters live there, and the
// scheduler lock prefers it (PG advisory locks are only a lock
// fallback, not a stats one).
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig holds the bearer tokens accepted by the API. Token issuance is
// external to this service.
type AuthConfig struct {
	Tokens []string `yaml:"tokens"`
}

// BounceConfig controls the hard-bounce cascade.
type BounceConfig struct {
	// HardThreshold is how many hard bounces across campaigns blocklist a
	// subscriber globally.
	HardThreshold int `yaml:"hard_threshold"`
}

// SchedulerConfig controls the scheduled-campaign poller.
type SchedulerConfig struct {
	Enabled             bool `yaml:"enabled"`
	PollIntervalSeconds int  `yaml:"poll_interval_seconds"`
}

// PollInterval returns the scheduler poll interval as a duration.
func (s SchedulerConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

// DispatchConfig controls the batch dispatcher.
type DispatchConfig struct {
	Enabled             bool   `yaml:"enabled"`
	Sender              string `yaml:"sender"` // "log" or "ses"
	SESRegion           string `yaml:"ses_region"`
	BatchSize           int    `yaml:"batch_size"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	ReclaimAfterSeconds int    `yaml:"reclaim_after_seconds"`
}

// PollInterval returns the dispatcher poll interval as a duration.
func (d DispatchConfig) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalSeconds) * time.Second
}

// ReclaimAfter is how long a delivery may sit in-flight before the
// dispatcher requeues it.
func (d DispatchConfig) ReclaimAfter() time.Duration {
	return time.Duration(d.ReclaimAfterSeconds) * time.Second
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Load reads configuration from the given YAML file. A missing file is not
// an error: defaults plus environment overrides still produce a usable
// config for development.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadFromEnv loads configuration and applies environment variable
// overrides. A .env file in the working directory is honored if present.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if token := os.Getenv("API_TOKEN"); token != "" {
		cfg.Auth.Tokens = append(cfg.Auth.Tokens, token)
	}
	if region := os.Getenv("AWS_SES_REGION"); region != "" {
		cfg.Dispatch.SESRegion = region
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server:    ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database:  DatabaseConfig{MaxOpenConns: 25, MaxIdleConns: 5},
		Bounce:    BounceConfig{HardThreshold: 3},
		Scheduler: SchedulerConfig{Enabled: true, PollIntervalSeconds: 30},
		Dispatch: DispatchConfig{
			Sender:              "log",
			BatchSize:           500,
			PollIntervalSeconds: 5,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// applyDefaults backfills zero values that a partial YAML file left unset.
func (c *Config) applyDefaults() {
	d := defaults()
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = d.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = d.Database.MaxIdleConns
	}
	if c.Bounce.HardThreshold == 0 {
		c.Bounce.HardThreshold = d.Bounce.HardThreshold
	}
	if c.Scheduler.PollIntervalSeconds == 0 {
		c.Scheduler.PollIntervalSeconds = d.Scheduler.PollIntervalSeconds
	}
	if c.Dispatch.Sender == "" {
		c.Dispatch.Sender = d.Dispatch.Sender
	}
	if c.Dispatch.BatchSize == 0 {
		c.Dispatch.BatchSize = d.Dispatch.BatchSize
	}
	if c.Dispatch.PollIntervalSeconds == 0 {
		c.Dispatch.PollIntervalSeconds = d.Dispatch.PollIntervalSeconds
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}
