package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/texdup/internal/config"
	"github.com/zjrosen/texdup/internal/flags"
	"github.com/zjrosen/texdup/internal/log"
	"github.com/zjrosen/texdup/internal/tracing"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "texdup",
	Short: "Find repeated words in LaTeX documents",
	Long: `texdup reports words that occur more than once within a paragraph of a
LaTeX or plain text document. Math, tables, bibliographies, comments and
command syntax are ignored. Documents can be checked once, watched while
they are edited, or served to editors over the Model Context Protocol.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .texdup/config.yaml, then ~/.config/texdup/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (path from TEXDUP_LOG, default debug.log)")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("scope", defaults.Scope)
	viper.SetDefault("auto_check", defaults.AutoCheck)
	viper.SetDefault("check_interval", defaults.CheckInterval)
	viper.SetDefault("debounce", defaults.Debounce)
	viper.SetDefault("document_type", defaults.DocumentType)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .texdup/config.yaml (current directory)
		// 2. ~/.config/texdup/config.yaml (user config)
		if _, err := os.Stat(config.ProjectConfigPath); err == nil {
			viper.SetConfigFile(config.ProjectConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "texdup"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .texdup/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if writeErr := config.WriteDefaultConfig(config.ProjectConfigPath); writeErr == nil {
				viper.SetConfigFile(config.ProjectConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	cfg = loadConfig()
}

func loadConfig() config.Config {
	c := config.Defaults()
	if err := viper.Unmarshal(&c); err != nil {
		log.ErrorErr(log.CatConfig, "decoding config", err, "file", viper.ConfigFileUsed())
	}
	return c
}

// tierPaths returns the global and project exclusion files. An explicit
// --config file is the project tier unless it is the global file itself.
func tierPaths() (global, project string) {
	global = config.GlobalConfigPath()
	project = config.ProjectConfigPath
	if used := viper.ConfigFileUsed(); used != "" {
		if abs, err := filepath.Abs(used); err == nil && abs != global {
			project = abs
		}
	}
	if abs, err := filepath.Abs(project); err == nil {
		project = abs
	}
	return global, project
}

// initLogging enables the file logger when --debug or TEXDUP_DEBUG is set.
func initLogging(component string) (func(), error) {
	if os.Getenv("TEXDUP_DEBUG") == "" && !debugFlag {
		return func() {}, nil
	}
	logPath := os.Getenv("TEXDUP_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}

	cleanup, err := log.Init(logPath)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	if level := os.Getenv("TEXDUP_LOG_LEVEL"); level != "" {
		log.SetMinLevel(log.ParseLevel(level))
	}
	log.Info(log.CatConfig, "texdup starting", "component", component, "version", version, "config", viper.ConfigFileUsed())
	return cleanup, nil
}

// newTracing builds the tracing provider from cfg. The returned shutdown
// flushes pending spans.
func newTracing() (*tracing.Provider, func(), error) {
	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}
	return provider, func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatConfig, "flushing traces", err)
		}
	}, nil
}

func newFlags() *flags.Registry {
	return flags.New(cfg.Flags)
}

// Execute runs the root command. Errors other than ErrDuplicatesFound are
// printed to stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, ErrDuplicatesFound) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
