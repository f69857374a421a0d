// Package config provides configuration types, defaults, exclusion tiers and
// persistence for texdup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/texdup/internal/detect"
	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/log"
	"github.com/zjrosen/texdup/internal/tracing"
)

// ProjectConfigPath is the project tier, relative to the working directory.
const ProjectConfigPath = ".texdup/config.yaml"

// Config holds all configuration options for texdup.
type Config struct {
	// Exclusions is the tier word list of the file it was read from.
	Exclusions    []string        `mapstructure:"exclusions"`
	Scope         string          `mapstructure:"scope"`
	AutoCheck     bool            `mapstructure:"auto_check"`
	CheckInterval time.Duration   `mapstructure:"check_interval"`
	Debounce      time.Duration   `mapstructure:"debounce"`
	DocumentType  string          `mapstructure:"document_type"` // "auto" (default), "latex" or "plain"
	Flags         map[string]bool `mapstructure:"flags"`
	Tracing       tracing.Config  `mapstructure:"tracing"`
}

// DefaultExclusions are function words that repeat in any prose.
func DefaultExclusions() []string {
	return []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "have", "in", "is", "it", "its", "of", "on", "or", "that",
		"the", "this", "to", "was", "we", "were", "which", "with",
	}
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()
	return Config{
		Exclusions:    DefaultExclusions(),
		Scope:         string(detect.ScopeParagraph),
		AutoCheck:     true,
		CheckInterval: 2 * time.Second,
		Debounce:      300 * time.Millisecond,
		DocumentType:  "auto",
		Flags:         map[string]bool{},
		Tracing:       tc,
	}
}

// GlobalConfigPath returns ~/.config/texdup/config.yaml, or "" when the home
// directory is unknown.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "texdup", "config.yaml")
}

// DefaultTracesFilePath returns ~/.config/texdup/traces/traces.jsonl, or ""
// when the home directory is unknown.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "texdup", "traces", "traces.jsonl")
}

// ScopeValue parses the configured scope.
func (c Config) ScopeValue() detect.Scope {
	s, err := detect.ParseScope(c.Scope)
	if err != nil {
		return detect.ScopeParagraph
	}
	return s
}

// Dialect returns the forced dialect, or "" for auto detection.
func (c Config) Dialect() document.Dialect {
	d, err := document.ParseDialect(c.DocumentType)
	if err != nil {
		return ""
	}
	return d
}

// Validate checks the semantic constraints the schema cannot express.
func Validate(c Config) error {
	if _, err := detect.ParseScope(c.Scope); err != nil {
		return fmt.Errorf("scope: %w", err)
	}
	if _, err := document.ParseDialect(c.DocumentType); err != nil {
		return fmt.Errorf("document_type: %w", err)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be positive, got %s", c.CheckInterval)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" {
		switch tc.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
		}
	}

	if tc.Enabled {
		if tc.Exporter == "file" && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the commented config written on first run.
func DefaultConfigTemplate() string {
	return `# texdup configuration

# Words never reported as duplicates. In the global config
# (~/.config/texdup/config.yaml) this list replaces the built-in function
# words; in a project config (.texdup/config.yaml) it is added to them.
# Edit with 'texdup exclude add|remove'.
# exclusions: [et, al]

# Count repeats per "paragraph" (default) or per "line".
scope: paragraph

# Re-check watched documents periodically.
auto_check: true
check_interval: 2s

# Wait this long after a file change before checking.
debounce: 300ms

# "auto" picks latex for .tex/.ltx/.sty/.cls/.dtx and plain otherwise.
document_type: auto

# Feature flags:
#   always-full-recheck  re-check every paragraph on every pass
#   publish-unchanged    report passes that found nothing new
flags: {}

# OpenTelemetry spans per analysis pass.
tracing:
  enabled: false
  exporter: file          # none, file, stdout or otlp
  # file_path: ~/.config/texdup/traces/traces.jsonl
  # otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file with default settings.
// Creates parent directories if they don't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
