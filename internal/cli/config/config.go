// Package config loads mirror tool configuration from mirror.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Formats accepted by inspect output.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Config represents the mirror tool configuration
type Config struct {
	Packages PackagesConfig `mapstructure:"packages"`
	Gen      GenConfig      `mapstructure:"gen"`
	Inspect  InspectConfig  `mapstructure:"inspect"`
	Serve    ServeConfig    `mapstructure:"serve"`
}

// PackagesConfig selects the packages the tool operates on
type PackagesConfig struct {
	Patterns []string `mapstructure:"patterns"`
}

// GenConfig controls registration code generation
type GenConfig struct {
	// Output is the file name generated inside each package directory
	Output string `mapstructure:"output"`

	// Module is the import path of the mirror module
	Module string `mapstructure:"module"`
}

// InspectConfig controls layout inspection output
type InspectConfig struct {
	Format            string `mapstructure:"format"`
	IncludeUnexported bool   `mapstructure:"include_unexported"`
}

// ServeConfig configures the registry HTTP server
type ServeConfig struct {
	Address string `mapstructure:"address"`
}

// Load loads the configuration from mirror.yml or mirror.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("packages.patterns", []string{"./..."})
	v.SetDefault("gen.output", "mirror_registrations.go")
	v.SetDefault("gen.module", "github.com/noaland/mirror")
	v.SetDefault("inspect.format", FormatTable)
	v.SetDefault("inspect.include_unexported", false)
	v.SetDefault("serve.address", ":8080")

	// Set config name and paths
	v.SetConfigName("mirror")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
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

// InProject checks if the current directory carries a mirror config file
func InProject() bool {
	if _, err := os.Stat("mirror.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("mirror.yaml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot tries to find the project root by looking for mirror.yaml
// or a go.mod file
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "mirror.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "mirror.yaml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go project (no mirror.yaml or go.mod found)")
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Inspect.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("inspect.format must be one of table, json, yaml; got: %s", cfg.Inspect.Format)
	}

	if len(cfg.Packages.Patterns) == 0 {
		return fmt.Errorf("packages.patterns cannot be empty")
	}

	if cfg.Gen.Output == "" {
		return fmt.Errorf("gen.output cannot be empty")
	}
	if filepath.Ext(cfg.Gen.Output) != ".go" {
		return fmt.Errorf("gen.output must be a .go file, got: %s", cfg.Gen.Output)
	}

	return nil
}
