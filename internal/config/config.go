package config

import (
	"github.com/propdoc/propdoc/internal/resolve"
)

// Config represents the complete propdoc configuration.
// It can be loaded from .propdoc.yaml with environment variable overrides.
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Resolver   ResolverConfig   `yaml:"resolver" mapstructure:"resolver"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
}

// ExtractionConfig defines how declaration/definition pairs are found
// and how many pairs are processed in parallel.
type ExtractionConfig struct {
	DeclarationExtensions []string `yaml:"declaration_extensions" mapstructure:"declaration_extensions"` // e.g., [".h", ".hpp"]
	DefinitionExtensions  []string `yaml:"definition_extensions" mapstructure:"definition_extensions"`   // e.g., [".cc", ".cpp"]
	Ignore                []string `yaml:"ignore" mapstructure:"ignore"`                                  // glob patterns to skip
	Recursive             bool     `yaml:"recursive" mapstructure:"recursive"`
	Workers               int      `yaml:"workers" mapstructure:"workers"` // 0 means one per CPU
}

// ResolverConfig controls how symbolic constants are located in the
// source tree.
type ResolverConfig struct {
	Patterns         map[string][]string `yaml:"patterns" mapstructure:"patterns"` // namespace prefix -> path globs
	Fallback         []string            `yaml:"fallback" mapstructure:"fallback"` // globs when no prefix matches
	EnterpriseMarker string              `yaml:"enterprise_marker" mapstructure:"enterprise_marker"`
	CacheSize        int                 `yaml:"cache_size" mapstructure:"cache_size"` // 0 means library default
}

// StoreConfig defines where extraction snapshots are persisted.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite database file
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			DeclarationExtensions: []string{".h", ".hpp", ".hh"},
			DefinitionExtensions:  []string{".cc", ".cpp", ".cxx"},
			Ignore: []string{
				".git/**",
				"build/**",
				"vendor/**",
				"**/*_test.cc",
			},
			Recursive: true,
			Workers:   0,
		},
		Resolver: ResolverConfig{
			Patterns:         map[string][]string{},
			Fallback:         []string{},
			EnterpriseMarker: resolve.DefaultEnterpriseMarker,
			CacheSize:        0,
		},
		Store: StoreConfig{
			Path: ".propdoc/propdoc.db",
		},
	}
}
