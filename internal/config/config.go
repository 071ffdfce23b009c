package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Ingestion
	SheetName string `mapstructure:"sheet_name" yaml:"sheet_name"` // empty: "Report", else the first sheet
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`   // "," | ";" | "tab"; empty sniffs
	MaxRows   int    `mapstructure:"max_rows" yaml:"max_rows" validate:"min=0"`

	// Output
	OutputFormat      string `mapstructure:"output_format" yaml:"output_format" validate:"oneof=markdown csv xlsx yaml json"`
	DateDisplayFormat string `mapstructure:"date_display_format" yaml:"date_display_format" validate:"required"`
	CSVBOM            bool   `mapstructure:"csv_bom" yaml:"csv_bom"`

	// Batch runs
	BatchConcurrency int `mapstructure:"batch_concurrency" yaml:"batch_concurrency" validate:"min=1,max=64"`
	TimeoutSec       int `mapstructure:"timeout_sec" yaml:"timeout_sec" validate:"min=0"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		OutputFormat:      "markdown",
		DateDisplayFormat: "02/01/2006",
		CSVBOM:            true,
		BatchConcurrency:  4,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

var validate = validator.New()

// Validate checks field ranges and enumerations.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".visitpivot"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.visitpivot/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("VISITPIVOT")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("sheet_name", d.SheetName)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("date_display_format", d.DateDisplayFormat)
	v.SetDefault("csv_bom", d.CSVBOM)
	v.SetDefault("batch_concurrency", d.BatchConcurrency)
	v.SetDefault("timeout_sec", d.TimeoutSec)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing default file is fine; an explicit or broken one is not
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
