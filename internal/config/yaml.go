// Package config defines the admind.yaml configuration schema. At runtime
// the CLI reads the same file through viper so flags and ADMIND_* env vars
// can override it; this package is the typed schema, the defaults, and the
// `config init` writer.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig is the top-level admind configuration file.
type YAMLConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Store      StoreConfig      `yaml:"store"`
	Mail       MailConfig       `yaml:"mail"`
	Validation ValidationConfig `yaml:"validation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host               string     `yaml:"host"`
	Port               int        `yaml:"port"`
	ShutdownTimeout    string     `yaml:"shutdown_timeout"`
	RateLimitPerMinute int        `yaml:"rate_limit_per_minute"`
	CORS               CORSConfig `yaml:"cors"`
}

// CORSConfig controls cross-origin resource sharing.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// AuthConfig holds the super-admin credential and invite token settings.
type AuthConfig struct {
	// SuperAdminKey is the raw key compared against X-SUPER-ADMIN-KEY.
	// Usually supplied as ${ADMIND_SUPER_ADMIN_KEY}; when empty, serve
	// falls back to the hashed key stored via `admind key set`.
	SuperAdminKey string `yaml:"super_admin_key"`
	InviteSecret  string `yaml:"invite_secret"`
	InviteTTL     string `yaml:"invite_ttl"`
	InviteBaseURL string `yaml:"invite_base_url"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver  string `yaml:"driver"` // sqlite, postgres, mysql
	DSN     string `yaml:"dsn"`
	DataDir string `yaml:"data_dir"`
}

// MailConfig controls invite delivery.
type MailConfig struct {
	Mode        string   `yaml:"mode"` // smtp or log
	Addr        string   `yaml:"addr"`
	From        string   `yaml:"from"`
	Timeout     string   `yaml:"timeout"`
	FailDomains []string `yaml:"fail_domains"`
}

// ValidationConfig holds the tunable field rules.
type ValidationConfig struct {
	MiddleNameMin int `yaml:"middle_name_min"`
	MiddleNameMax int `yaml:"middle_name_max"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig controls the anonymous heartbeat.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and parses a YAML configuration file. Environment variables
// referenced as ${VAR_NAME} in the file are expanded before parsing.
func Load(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	var cfg YAMLConfig
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// Default returns a YAMLConfig pre-filled with the shipped defaults.
func Default() *YAMLConfig {
	return &YAMLConfig{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			ShutdownTimeout:    "30s",
			RateLimitPerMinute: 300,
			CORS: CORSConfig{
				Origins: []string{"*"},
			},
		},
		Auth: AuthConfig{
			SuperAdminKey: "${ADMIND_SUPER_ADMIN_KEY}",
			InviteTTL:     "72h",
			InviteBaseURL: "https://admin.kub.example",
		},
		Store: StoreConfig{
			Driver: "sqlite",
		},
		Mail: MailConfig{
			Mode:        "log",
			Addr:        "localhost:25",
			From:        "no-reply@kub.example",
			Timeout:     "10s",
			FailDomains: []string{"smtp.com"},
		},
		Validation: ValidationConfig{
			MiddleNameMin: 2,
			MiddleNameMax: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
		},
	}
}

// WriteDefault writes the default configuration to a YAML file.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
