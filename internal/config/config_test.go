package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/texdup/internal/detect"
	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/tracing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, "paragraph", cfg.Scope)
	require.True(t, cfg.AutoCheck)
	require.Equal(t, 2*time.Second, cfg.CheckInterval)
	require.Equal(t, 300*time.Millisecond, cfg.Debounce)
	require.Equal(t, "auto", cfg.DocumentType)
	require.Contains(t, cfg.Exclusions, "the")
	require.False(t, cfg.Tracing.Enabled)
	require.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "line scope", mutate: func(c *Config) { c.Scope = "line" }},
		{name: "empty scope uses paragraph", mutate: func(c *Config) { c.Scope = "" }},
		{name: "bad scope", mutate: func(c *Config) { c.Scope = "sentence" }, wantErr: "scope"},
		{name: "bad document type", mutate: func(c *Config) { c.DocumentType = "markdown" }, wantErr: "document_type"},
		{name: "zero interval", mutate: func(c *Config) { c.CheckInterval = 0 }, wantErr: "check_interval"},
		{name: "negative debounce", mutate: func(c *Config) { c.Debounce = -time.Second }, wantErr: "debounce"},
		{name: "bad sample rate", mutate: func(c *Config) { c.Tracing.SampleRate = 2 }, wantErr: "sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		tc      tracing.Config
		wantErr string
	}{
		{name: "disabled empty", tc: tracing.Config{}},
		{name: "unknown exporter", tc: tracing.Config{Exporter: "zipkin"}, wantErr: "tracing.exporter"},
		{name: "file without path", tc: tracing.Config{Enabled: true, Exporter: "file"}, wantErr: "file_path"},
		{name: "file with path", tc: tracing.Config{Enabled: true, Exporter: "file", FilePath: "t.jsonl"}},
		{name: "otlp without endpoint", tc: tracing.Config{Enabled: true, Exporter: "otlp"}, wantErr: "otlp_endpoint"},
		{name: "disabled file without path", tc: tracing.Config{Exporter: "file"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.tc)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_ScopeAndDialect(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, detect.ScopeParagraph, cfg.ScopeValue())
	require.Equal(t, document.Dialect(""), cfg.Dialect())

	cfg.Scope = "line"
	cfg.DocumentType = "plain"
	require.Equal(t, detect.ScopeLine, cfg.ScopeValue())
	require.Equal(t, document.DialectPlain, cfg.Dialect())

	cfg.Scope = "nonsense"
	require.Equal(t, detect.ScopeParagraph, cfg.ScopeValue())
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".texdup", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
	require.NoError(t, ValidateFile(path))

	tier, err := LoadTier(path)
	require.NoError(t, err)
	require.False(t, tier.Present, "template leaves exclusions commented out")
}
