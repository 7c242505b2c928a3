package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Matching  MatchingConfig  `yaml:"matching"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// MatchingConfig holds optional overrides for the recognition thresholds.
// A zero value means "use the built-in default", so an empty section is
// always valid.
type MatchingConfig struct {
	SuggestThreshold        float64 `yaml:"suggest_threshold"`
	AutoMatchThreshold      float64 `yaml:"auto_match_threshold"`
	ExactThreshold          float64 `yaml:"exact_threshold"`
	MaxSuggestions          int     `yaml:"max_suggestions"`
	AliasPromotionThreshold float64 `yaml:"alias_promotion_threshold"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix REPVOICE_ and underscore-separated paths:
//
//	REPVOICE_SERVER_HOST, REPVOICE_SERVER_PORT,
//	REPVOICE_DB_HOST, REPVOICE_DB_PORT, REPVOICE_DB_NAME,
//	REPVOICE_DB_USER, REPVOICE_DB_PASSWORD, REPVOICE_DB_SSLMODE,
//	REPVOICE_AUTH_API_KEY, REPVOICE_TS_ENABLED, REPVOICE_TS_HOSTNAME,
//	REPVOICE_TS_STATE_DIR
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPVOICE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPVOICE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPVOICE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REPVOICE_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REPVOICE_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REPVOICE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REPVOICE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REPVOICE_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("REPVOICE_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("REPVOICE_TS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("REPVOICE_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("REPVOICE_TS_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if err := c.Matching.validate(); err != nil {
		return err
	}
	return nil
}

func (m MatchingConfig) validate() error {
	for name, v := range map[string]float64{
		"matching.suggest_threshold":         m.SuggestThreshold,
		"matching.auto_match_threshold":      m.AutoMatchThreshold,
		"matching.exact_threshold":           m.ExactThreshold,
		"matching.alias_promotion_threshold": m.AliasPromotionThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if m.MaxSuggestions < 0 {
		return fmt.Errorf("matching.max_suggestions must not be negative")
	}
	return nil
}
