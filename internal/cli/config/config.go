package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conduit-lang/lspcheck/internal/schema"
)

// FileName is the config file looked up in the working directory, without
// extension.
const FileName = "lspcheck"

// EnvPrefix prefixes the environment overrides, e.g. LSPCHECK_PORT.
const EnvPrefix = "LSPCHECK"

// Config represents the lspcheck configuration
type Config struct {
	Host     string         `mapstructure:"host"`
	Port     int            `mapstructure:"port"`
	Timeout  time.Duration  `mapstructure:"timeout"`
	File     string         `mapstructure:"file"`
	LogLevel string         `mapstructure:"log_level"`
	NoColor  bool           `mapstructure:"no_color"`
	Truncate int            `mapstructure:"truncate"`
	Schemas  []SchemaConfig `mapstructure:"schemas"`
}

// SchemaConfig overrides the response descriptor of one method.
type SchemaConfig struct {
	Method string `mapstructure:"method"`
	// Nullable defaults to true when omitted.
	Nullable       *bool    `mapstructure:"nullable"`
	Type           string   `mapstructure:"type"`
	ItemFields     []string `mapstructure:"item_fields"`
	RequiredFields []string `mapstructure:"required_fields"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Load reads lspcheck.yaml from the working directory, or path when set,
// and applies LSPCHECK_* environment overrides. A missing default file is
// not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 2087)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("file", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("no_color", false)
	v.SetDefault("truncate", 2000)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// SchemaTable merges the configured overrides over base.
func (c *Config) SchemaTable(base schema.Table) (schema.Table, error) {
	overrides := make(schema.Table, len(c.Schemas))
	for _, s := range c.Schemas {
		kind, err := schema.ParseKind(s.Type)
		if err != nil {
			return nil, fmt.Errorf("schemas[%s]: %w", s.Method, err)
		}
		nullable := true
		if s.Nullable != nil {
			nullable = *s.Nullable
		}
		overrides[s.Method] = schema.Descriptor{
			Nullable:       nullable,
			Kind:           kind,
			ItemFields:     s.ItemFields,
			RequiredFields: s.RequiredFields,
		}
	}

	table := schema.Merge(base, overrides)
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks the configuration after command line overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Host) == "" {
		return fmt.Errorf("host must not be empty")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got: %d", cfg.Port)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %s", cfg.Timeout)
	}
	if cfg.Truncate < 0 {
		return fmt.Errorf("truncate must not be negative, got: %d", cfg.Truncate)
	}

	level := strings.ToLower(cfg.LogLevel)
	known := false
	for _, l := range logLevels {
		if l == level {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("log_level must be one of %s, got: %s", strings.Join(logLevels, ", "), cfg.LogLevel)
	}
	cfg.LogLevel = level

	seen := make(map[string]bool, len(cfg.Schemas))
	for i, s := range cfg.Schemas {
		if s.Method == "" {
			return fmt.Errorf("schemas[%d]: method must not be empty", i)
		}
		if seen[s.Method] {
			return fmt.Errorf("schemas[%d]: duplicate method %s", i, s.Method)
		}
		seen[s.Method] = true
		if _, err := schema.ParseKind(s.Type); err != nil {
			return fmt.Errorf("schemas[%s]: %w", s.Method, err)
		}
	}
	return nil
}
