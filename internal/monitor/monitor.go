// Package monitor schedules analysis passes for a set of documents. One
// goroutine runs every pass, so passes never overlap; triggers are the check
// interval, file changes, explicit requests and configuration changes.
package monitor

import (
	"context"
	"path/filepath"
	"time"

	"github.com/zjrosen/texdup/internal/analyzer"
	"github.com/zjrosen/texdup/internal/detect"
	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/log"
)

// Pass is a pass that needs rendering.
type Pass struct {
	Path   string
	Lines  []string
	Report analyzer.Report
	Edits  Edits
}

// Sink receives passes whose report changed.
type Sink func(Pass)

// Config wires a Monitor.
type Config struct {
	Analyzer *analyzer.Analyzer
	Paths    []string
	// Dialect forces a dialect; empty detects it per file.
	Dialect document.Dialect
	// Interval drives periodic passes when AutoCheck is set.
	Interval  time.Duration
	AutoCheck bool
	// Changes delivers changed absolute paths, typically from a watcher.
	Changes <-chan []string
	// Reconfigure delivers detectors built from a changed configuration.
	Reconfigure <-chan detect.Detector
	Sink        Sink
}

// Monitor owns the pass loop.
type Monitor struct {
	cfg       Config
	paths     []string
	watched   map[string]struct{}
	snapshots map[string][]string
	trigger   chan struct{}
}

// New creates a Monitor. Paths are made absolute; unresolvable ones are kept
// as given.
func New(cfg Config) *Monitor {
	m := &Monitor{
		cfg:       cfg,
		watched:   make(map[string]struct{}, len(cfg.Paths)),
		snapshots: make(map[string][]string, len(cfg.Paths)),
		trigger:   make(chan struct{}, 1),
	}
	for _, p := range cfg.Paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if _, dup := m.watched[p]; dup {
			continue
		}
		m.watched[p] = struct{}{}
		m.paths = append(m.paths, p)
	}
	if m.cfg.Sink == nil {
		m.cfg.Sink = func(Pass) {}
	}
	return m
}

// Trigger requests an immediate pass over every document. It never blocks;
// requests made while one is pending collapse into it.
func (m *Monitor) Trigger() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

// Run checks every document once, then loops until ctx is done. On return the
// analyzer's entries for the monitored documents are closed.
func (m *Monitor) Run(ctx context.Context) error {
	defer func() {
		for _, p := range m.paths {
			m.cfg.Analyzer.Close(p)
		}
	}()

	m.checkAll(ctx)

	var tick <-chan time.Time
	if m.cfg.AutoCheck && m.cfg.Interval > 0 {
		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	changes := m.cfg.Changes
	reconfigure := m.cfg.Reconfigure
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-tick:
			m.checkAll(ctx)

		case <-m.trigger:
			log.Debug(log.CatMonitor, "manual check requested")
			m.checkAll(ctx)

		case paths, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			for _, p := range paths {
				if _, watched := m.watched[p]; watched {
					m.check(ctx, p)
				}
			}

		case d, ok := <-reconfigure:
			if !ok {
				reconfigure = nil
				continue
			}
			m.cfg.Analyzer.Reconfigure(d)
			m.checkAll(ctx)
		}
	}
}

func (m *Monitor) checkAll(ctx context.Context) {
	for _, p := range m.paths {
		if ctx.Err() != nil {
			return
		}
		m.check(ctx, p)
	}
}

// check runs one pass for path. Unreadable files are skipped; an editor may
// be halfway through saving.
func (m *Monitor) check(ctx context.Context, path string) {
	doc, err := document.Load(path, m.cfg.Dialect)
	if err != nil {
		log.Warn(log.CatMonitor, "skipping unreadable document", "path", path, "error", err)
		return
	}

	lines := document.Snapshot(doc)
	edits := LineEdits(m.snapshots[path], lines)
	m.snapshots[path] = lines

	report := m.cfg.Analyzer.Analyze(ctx, doc.ID(), doc)
	if !edits.Empty() {
		log.Debug(log.CatMonitor, "document edited",
			"path", path, "inserted", edits.Inserted, "deleted", edits.Deleted, "mode", report.Mode)
	}
	if !report.Rerender() {
		return
	}
	m.cfg.Sink(Pass{Path: path, Lines: lines, Report: report, Edits: edits})
}
