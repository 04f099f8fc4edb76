package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a configuration loader that searches the given root
// directory (then the home directory) for .propdoc.yaml.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader bound to an explicit config file. A
// missing explicit file is an error, unlike the search form.
func NewFileLoader(configFile string) Loader {
	return &loader{
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PROPDOC_*)
// 2. Config file (.propdoc.yaml in the root or home directory)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(".propdoc")
		v.SetConfigType("yaml")
		v.AddConfigPath(l.rootDir)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("PROPDOC")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., PROPDOC_EXTRACTION_WORKERS)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables to config keys
	v.BindEnv("extraction.workers")
	v.BindEnv("extraction.recursive")
	v.BindEnv("resolver.enterprise_marker")
	v.BindEnv("resolver.cache_size")
	v.BindEnv("store.path")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if l.configFile != "" {
			// Explicit config files must exist and parse.
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("extraction.declaration_extensions", defaults.Extraction.DeclarationExtensions)
	v.SetDefault("extraction.definition_extensions", defaults.Extraction.DefinitionExtensions)
	v.SetDefault("extraction.ignore", defaults.Extraction.Ignore)
	v.SetDefault("extraction.recursive", defaults.Extraction.Recursive)
	v.SetDefault("extraction.workers", defaults.Extraction.Workers)

	v.SetDefault("resolver.patterns", defaults.Resolver.Patterns)
	v.SetDefault("resolver.fallback", defaults.Resolver.Fallback)
	v.SetDefault("resolver.enterprise_marker", defaults.Resolver.EnterpriseMarker)
	v.SetDefault("resolver.cache_size", defaults.Resolver.CacheSize)

	v.SetDefault("store.path", defaults.Store.Path)
}

// LoadConfig is a convenience function that creates a loader and loads
// config. It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
