// Package analyzer runs detectors over a document repeatedly and re-checks
// only the paragraphs that changed since the previous pass.
//
// Each document has one cache entry keyed by a caller-supplied identity. A
// pass is one of:
//
//	first      no entry existed; every paragraph is checked
//	full       the paragraph count changed; every paragraph is checked
//	partial    some ordinals changed; only those are checked
//	unchanged  nothing changed; the previous result slice is returned as is
//
// Callers must not re-render on an unchanged pass.
package analyzer

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/texdup/internal/cachemanager"
	"github.com/zjrosen/texdup/internal/detect"
	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/flags"
	"github.com/zjrosen/texdup/internal/log"
	"github.com/zjrosen/texdup/internal/pubsub"
	"github.com/zjrosen/texdup/internal/segment"
	"github.com/zjrosen/texdup/internal/tracing"
)

// Mode describes what a pass did.
type Mode string

const (
	ModeFirst     Mode = "first"
	ModeFull      Mode = "full"
	ModePartial   Mode = "partial"
	ModeUnchanged Mode = "unchanged"
)

// Report is the outcome of one pass.
type Report struct {
	Key        string          `json:"key"`
	Mode       Mode            `json:"mode"`
	Paragraphs int             `json:"paragraphs"`
	Changed    []int           `json:"changed,omitempty"`
	Results    []detect.Result `json:"results"`
	Duration   time.Duration   `json:"duration"`
}

// Rerender reports whether the output collaborator should redraw.
func (r Report) Rerender() bool {
	return r.Mode != ModeUnchanged
}

// Update is the payload published on the analyzer's broker.
type Update struct {
	Key    string
	Report Report
}

// Config wires an Analyzer. Registry is required; the rest have defaults.
type Config struct {
	Registry *detect.Registry
	Cache    cachemanager.CacheManager[string, *Entry]
	Broker   *pubsub.Broker[Update]
	Tracer   trace.Tracer
	Flags    *flags.Registry
}

// Analyzer owns the per-document cache. Passes for different keys may run
// concurrently; passes for the same key are serialized.
type Analyzer struct {
	registry *detect.Registry
	cache    cachemanager.CacheManager[string, *Entry]
	broker   *pubsub.Broker[Update]
	tracer   trace.Tracer
	flags    *flags.Registry

	locks sync.Map // key -> *sync.Mutex
}

// New creates an Analyzer.
func New(cfg Config) *Analyzer {
	a := &Analyzer{
		registry: cfg.Registry,
		cache:    cfg.Cache,
		broker:   cfg.Broker,
		tracer:   cfg.Tracer,
		flags:    cfg.Flags,
	}
	if a.registry == nil {
		a.registry = detect.NewRegistry()
	}
	if a.cache == nil {
		a.cache = cachemanager.NewInMemoryCacheManager[string, *Entry]("analysis", cachemanager.NoExpiration, 0)
	}
	if a.broker == nil {
		a.broker = pubsub.NewBroker[Update]()
	}
	if a.tracer == nil {
		a.tracer = noop.NewTracerProvider().Tracer("noop")
	}
	return a
}

// Broker returns the broker updates are published on.
func (a *Analyzer) Broker() *pubsub.Broker[Update] {
	return a.broker
}

// Registry returns the detector registry.
func (a *Analyzer) Registry() *detect.Registry {
	return a.registry
}

func (a *Analyzer) lock(key string) func() {
	mu, _ := a.locks.LoadOrStore(key, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Analyze runs one pass over doc under key. It never fails: detector errors
// and panics are logged and contribute no results.
func (a *Analyzer) Analyze(ctx context.Context, key string, doc document.Document) Report {
	unlock := a.lock(key)
	defer unlock()

	start := time.Now()
	ctx, span := a.tracer.Start(ctx, tracing.SpanAnalyzePass, trace.WithAttributes(
		attribute.String(tracing.AttrDocumentKey, key),
		attribute.Int(tracing.AttrDocumentLines, doc.LineCount()),
	))
	defer span.End()

	paras := segment.ForDialect(document.DialectOf(doc)).Segment(doc)
	hashes, spans := fingerprints(doc, paras)

	prev, found := a.cache.Get(ctx, key)
	if !found {
		span.AddEvent(tracing.EventCacheMiss)
	}

	var (
		mode    Mode
		targets []int
	)
	switch {
	case !found:
		mode, targets = ModeFirst, allOrdinals(len(paras))
	case len(prev.Fingerprints) != len(hashes) || a.flags.Enabled(flags.FlagAlwaysFullRecheck):
		mode, targets = ModeFull, allOrdinals(len(paras))
	default:
		targets = changedOrdinals(prev, hashes, spans)
		mode = ModePartial
		if len(targets) == 0 {
			mode = ModeUnchanged
		}
	}

	var report Report
	if mode == ModeUnchanged {
		report = Report{Key: key, Mode: mode, Paragraphs: len(paras), Results: prev.Results}
	} else {
		byParagraph := make([][]detect.Result, len(paras))
		if mode == ModePartial {
			copy(byParagraph, prev.ByParagraph)
			for _, ord := range targets {
				byParagraph[ord] = nil
			}
		}
		a.runDetectors(ctx, doc, paras, targets, byParagraph)

		entry := &Entry{
			Fingerprints: hashes,
			Spans:        spans,
			ByParagraph:  byParagraph,
			Results:      flatten(byParagraph),
			Passes:       1,
		}
		if found {
			entry.Passes = prev.Passes + 1
		}
		a.cache.Set(ctx, key, entry, cachemanager.NoExpiration)

		report = Report{Key: key, Mode: mode, Paragraphs: len(paras), Changed: targets, Results: entry.Results}
	}
	report.Duration = time.Since(start)

	span.SetAttributes(
		attribute.String(tracing.AttrMode, string(mode)),
		attribute.Int(tracing.AttrParagraphs, len(paras)),
		attribute.Int(tracing.AttrChanged, len(report.Changed)),
		attribute.Int(tracing.AttrResults, len(report.Results)),
	)
	log.Debug(log.CatAnalyze, "pass complete",
		"key", key, "mode", mode, "paragraphs", len(paras),
		"changed", len(report.Changed), "results", len(report.Results), "took", report.Duration)

	if report.Rerender() || a.flags.Enabled(flags.FlagPublishUnchanged) {
		a.broker.Publish(pubsub.AnalyzedEvent, Update{Key: key, Report: report})
	}
	return report
}

// runDetectors calls every registered detector once with the target
// paragraphs and files their results under the owning ordinal.
func (a *Analyzer) runDetectors(ctx context.Context, doc document.Document, paras []segment.Paragraph, targets []int, into [][]detect.Result) {
	if len(targets) == 0 {
		return
	}
	subset := make([]segment.Paragraph, len(targets))
	for i, ord := range targets {
		subset[i] = paras[ord]
	}

	for _, d := range a.registry.Detectors() {
		results, err := a.runDetector(ctx, d, doc, subset)
		if err != nil {
			log.ErrorErr(log.CatAnalyze, "detector failed", err, "detector", d.Name(), "doc", doc.ID())
			continue
		}
		if len(results) > 0 {
			assign(results, paras, targets, into)
		}
	}
}

func (a *Analyzer) runDetector(ctx context.Context, d detect.Detector, doc document.Document, paras []segment.Paragraph) (results []detect.Result, err error) {
	_, span := a.tracer.Start(ctx, tracing.SpanDetector, trace.WithAttributes(
		attribute.String(tracing.AttrDetectorName, d.Name()),
	))
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("detector %s panicked: %v\n%s", d.Name(), r, debug.Stack())
		}
		if err != nil {
			span.AddEvent(tracing.EventDetectorFailed)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int(tracing.AttrDetectorResults, len(results)))
		}
		span.End()
	}()

	return d.Check(doc, paras)
}

// Entry returns the cached entry for key. The entry must not be modified.
func (a *Analyzer) Entry(key string) (*Entry, bool) {
	return a.cache.Get(context.Background(), key)
}

// Keys returns the keys with a cached entry.
func (a *Analyzer) Keys() []string {
	return a.cache.Keys(context.Background())
}

// Clear drops the entry for key so the next pass is a first pass.
func (a *Analyzer) Clear(key string) {
	unlock := a.lock(key)
	defer unlock()

	_ = a.cache.Delete(context.Background(), key)
	log.Debug(log.CatAnalyze, "cache cleared", "key", key)
	a.broker.Publish(pubsub.ClearedEvent, Update{Key: key})
}

// Close drops the entry of a closed document. The key's lock is kept so a
// pass already waiting on it still excludes any later pass for the key.
func (a *Analyzer) Close(key string) {
	a.Clear(key)
}

// ClearAll drops every entry.
func (a *Analyzer) ClearAll() {
	_ = a.cache.Flush(context.Background())
	log.Debug(log.CatAnalyze, "all caches cleared")
	a.broker.Publish(pubsub.ClearedEvent, Update{})
}

// Reconfigure installs d in place of the detector with the same name and
// clears every entry, so the next pass for each document is a first pass.
func (a *Analyzer) Reconfigure(d detect.Detector) {
	a.registry.Replace(d)
	log.Info(log.CatAnalyze, "detector reconfigured", "detector", d.Name())
	a.ClearAll()
}

func allOrdinals(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
