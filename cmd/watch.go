package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/texdup/internal/analyzer"
	"github.com/zjrosen/texdup/internal/config"
	"github.com/zjrosen/texdup/internal/detect"
	"github.com/zjrosen/texdup/internal/log"
	"github.com/zjrosen/texdup/internal/monitor"
	"github.com/zjrosen/texdup/internal/pubsub"
	"github.com/zjrosen/texdup/internal/render"
	"github.com/zjrosen/texdup/internal/watcher"
)

var watchOpts outputOptions

var watchCmd = &cobra.Command{
	Use:   "watch files...",
	Short: "Re-check documents whenever they change",
	Long: `Watch documents and re-check them on every save and, when auto_check is
enabled, every check_interval. Only paragraphs that changed are re-checked,
and a document is printed again only when its results changed.

Editing the config file (exclusions, scope) re-checks every document.

Example:
  texdup watch paper.tex
  texdup watch --scope line chapters/*.tex`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchOpts.register(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cleanup, err := initLogging("watch")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reconfigure := make(chan detect.Detector, 1)
	global, project := tierPaths()
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info(log.CatConfig, "config file changed", "path", e.Name, "op", e.Op.String())
		next := loadConfig()
		if err := config.Validate(next); err != nil {
			log.Warn(log.CatConfig, "ignoring invalid config", "path", e.Name, "error", err)
			return
		}
		offer(reconfigure, newDetector(next, watchOpts, global, project))
	})
	viper.WatchConfig()

	return watch(ctx, cmd.OutOrStdout(), args, watchOpts, reconfigure)
}

// newDetector builds the duplicate detector for c. A --scope flag wins over
// the file.
func newDetector(c config.Config, opts outputOptions, global, project string) detect.Detector {
	if opts.scope != "" {
		c.Scope = opts.scope
	}
	return config.NewDetector(c, global, project)
}

// offer replaces any pending detector with d without blocking.
func offer(ch chan detect.Detector, d detect.Detector) {
	for {
		select {
		case ch <- d:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func watch(ctx context.Context, out io.Writer, paths []string, opts outputOptions, reconfigure <-chan detect.Detector) error {
	r, err := opts.resolve(cfg)
	if err != nil {
		return err
	}

	provider, shutdown, err := newTracing()
	if err != nil {
		return err
	}
	defer shutdown()

	renderer, err := render.New(r.format, out, r.color)
	if err != nil {
		return err
	}

	global, project := tierPaths()
	a := analyzer.New(analyzer.Config{
		Registry: detect.NewRegistry(newDetector(cfg, opts, global, project)),
		Tracer:   provider.Tracer(),
		Flags:    newFlags(),
	})

	w, err := watcher.New(watcher.Config{Paths: paths, DebounceDur: cfg.Debounce})
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	changes, err := w.Start()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()

	go logUpdates(ctx, a)

	var mu sync.Mutex
	m := monitor.New(monitor.Config{
		Analyzer:    a,
		Paths:       paths,
		Dialect:     r.dialect,
		Interval:    cfg.CheckInterval,
		AutoCheck:   cfg.AutoCheck,
		Changes:     changes,
		Reconfigure: reconfigure,
		Sink: func(p monitor.Pass) {
			mu.Lock()
			defer mu.Unlock()
			if err := renderer.Render(render.Summary{
				Path:   displayPath(p.Path),
				Lines:  p.Lines,
				Report: p.Report,
				Note:   passNote(p),
			}); err != nil {
				log.ErrorErr(log.CatRender, "rendering pass", err, "path", p.Path)
			}
		},
	})

	log.Info(log.CatMonitor, "watching documents", "count", len(paths), "interval", cfg.CheckInterval, "auto_check", cfg.AutoCheck)
	return m.Run(ctx)
}

// logUpdates writes one debug line per published analyzer event.
func logUpdates(ctx context.Context, a *analyzer.Analyzer) {
	l := pubsub.NewListener(ctx, a.Broker(), pubsub.AnalyzedEvent, pubsub.ClearedEvent)
	for {
		e, ok := l.Next()
		if !ok {
			return
		}
		if e.Type == pubsub.ClearedEvent {
			log.Debug(log.CatAnalyze, "analysis state cleared", "key", e.Payload.Key)
			continue
		}
		r := e.Payload.Report
		log.Debug(log.CatAnalyze, "results updated",
			"key", e.Payload.Key, "mode", r.Mode, "changed", len(r.Changed), "results", len(r.Results), "took", r.Duration)
	}
}

// passNote summarizes why a document is printed again.
func passNote(p monitor.Pass) string {
	if p.Edits.Empty() || p.Report.Mode == analyzer.ModeFirst {
		return string(p.Report.Mode)
	}
	return fmt.Sprintf("%s, +%d -%d lines", p.Report.Mode, p.Edits.Inserted, p.Edits.Deleted)
}

// displayPath shortens path relative to the working directory when possible.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
