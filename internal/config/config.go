package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"review-balancer/internal/allocation"
)

// Config represents application configuration
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Database   DatabaseConfig    `yaml:"database"`
	Logger     LoggerConfig      `yaml:"logger"`
	Allocation allocation.Config `yaml:"allocation"`
	Reports    ReportsConfig     `yaml:"reports"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// LoggerConfig represents logger configuration
type LoggerConfig struct {
	Level       string `yaml:"level"`
	Encoding    string `yaml:"encoding"`
	Development bool   `yaml:"development"`
}

// ReportsConfig holds the report window defaults.
type ReportsConfig struct {
	StaleDays      int `yaml:"stale_days"`
	ThroughputDays int `yaml:"throughput_days"`
}

// URL builds the postgres connection string.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// LoadConfig loads configuration from file, applies environment overrides
// for containerized deployments, and validates the allocation policy.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Allocation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid allocation config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"DB_HOST":     &c.Database.Host,
		"DB_PORT":     &c.Database.Port,
		"DB_USER":     &c.Database.User,
		"DB_PASSWORD": &c.Database.Password,
		"DB_NAME":     &c.Database.DBName,
		"DB_SSLMODE":  &c.Database.SSLMode,
	}
	for key, field := range overrides {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}
}

func (c *Config) applyDefaults() {
	c.Allocation.SetDefaults()
	if c.Reports.StaleDays == 0 {
		c.Reports.StaleDays = 7
	}
	if c.Reports.ThroughputDays == 0 {
		c.Reports.ThroughputDays = 7
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Encoding == "" {
		c.Logger.Encoding = "json"
	}
}
