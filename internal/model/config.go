package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable overrides,
// e.g. CASE_CLASSIFIER_SERVICE_BASE_URL.
const EnvPrefix = "CASE_CLASSIFIER"

// ServiceConfig locates the classification service.
type ServiceConfig struct {
	// BaseURL is the scheme and host of the service.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Path is the classification endpoint path.
	Path string `mapstructure:"path" yaml:"path"`

	// TimeoutSec bounds a single request, including reading the body.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Endpoint joins BaseURL and Path.
func (s ServiceConfig) Endpoint() string {
	base := strings.TrimRight(s.BaseURL, "/")
	path := s.Path
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// BehaviorConfig selects how late and non-success responses are handled.
type BehaviorConfig struct {
	// DiscardStaleResponses drops a response whose request was superseded
	// by a newer submit or by a clear.
	DiscardStaleResponses bool `mapstructure:"discard_stale_responses" yaml:"discard_stale_responses"`

	// StrictResponse reports a 2xx payload without status "success" as a
	// service error instead of silently rendering nothing.
	StrictResponse bool `mapstructure:"strict_response" yaml:"strict_response"`
}

// HistoryConfig controls the local attempt log.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DBPath  string `mapstructure:"db_path" yaml:"db_path"`
	Limit   int    `mapstructure:"limit" yaml:"limit"`
}

// MailboxConfig holds the IMAP account used to import email text.
// The password lives in the system keyring, never in this file.
type MailboxConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
	Limit    int    `mapstructure:"limit" yaml:"limit"`
}

// Configured reports whether enough is set to attempt a connection.
func (m MailboxConfig) Configured() bool {
	return m.Host != "" && m.Username != ""
}

// LoggingConfig selects the zap level, encoder and output file.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Service  ServiceConfig  `mapstructure:"service" yaml:"service"`
	Behavior BehaviorConfig `mapstructure:"behavior" yaml:"behavior"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
	Mailbox  MailboxConfig  `mapstructure:"mailbox" yaml:"mailbox"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// ConfigDir returns ~/.config/case-classifier, falling back to the
// working directory when the home directory is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "case-classifier")
}

// DefaultConfigPath returns the default path for the configuration file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("service.base_url", "http://localhost:5000")
	v.SetDefault("service.path", "/classify")
	v.SetDefault("service.timeout_sec", 30)

	v.SetDefault("behavior.discard_stale_responses", true)
	v.SetDefault("behavior.strict_response", false)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.db_path", filepath.Join(ConfigDir(), "history.db"))
	v.SetDefault("history.limit", 200)

	v.SetDefault("mailbox.host", "")
	v.SetDefault("mailbox.port", "993")
	v.SetDefault("mailbox.username", "")
	v.SetDefault("mailbox.tls", true)
	v.SetDefault("mailbox.limit", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", filepath.Join(ConfigDir(), "case-classifier.log"))
}

// NewViper returns a viper instance with defaults and environment
// overrides applied, ready to read path.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig reads configuration from v's config file. A missing file is
// not an error; defaults, env and any bound flags still apply.
func LoadConfig(v *viper.Viper) (*AppConfig, error) {
	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &pathErr), errors.As(err, &notFound):
		default:
			return nil, fmt.Errorf("reading config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", v.ConfigFileUsed(), err)
	}

	if cfg.Service.TimeoutSec <= 0 {
		cfg.Service.TimeoutSec = 30
	}
	if cfg.History.Limit <= 0 {
		cfg.History.Limit = 200
	}
	if cfg.Mailbox.Limit <= 0 {
		cfg.Mailbox.Limit = 20
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("service", cfg.Service)
	v.Set("behavior", cfg.Behavior)
	v.Set("history", cfg.History)
	v.Set("mailbox", cfg.Mailbox)
	v.Set("logging", cfg.Logging)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
