// Package mcpserver exposes duplicate analysis to editors and agents over the
// Model Context Protocol.
package mcpserver

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/texdup/internal/analyzer"
	"github.com/zjrosen/texdup/internal/cachemanager"
	"github.com/zjrosen/texdup/internal/config"
	"github.com/zjrosen/texdup/internal/detect"
	"github.com/zjrosen/texdup/internal/flags"
	"github.com/zjrosen/texdup/internal/log"
)

const serverName = "texdup"

// vocabTTL bounds how long edited tier files go unnoticed.
const vocabTTL = 30 * time.Second

// Options configures the server.
type Options struct {
	Config config.Config
	// GlobalPath and ProjectPath locate the exclusion tiers.
	GlobalPath  string
	ProjectPath string
	Tracer      trace.Tracer
	Flags       *flags.Registry
	Version     string
}

type tierPaths struct {
	global, project string
}

// Server owns one analyzer per scope. Tool calls are serialized.
type Server struct {
	mcp   *mcp.Server
	opts  Options
	mu    sync.Mutex
	vocab *cachemanager.Loader[string, *detect.Vocabulary, tierPaths]

	current   *detect.Vocabulary
	analyzers map[detect.Scope]*analyzer.Analyzer
}

// New creates the server and registers its tools.
func New(opts Options) *Server {
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		opts:      opts,
		analyzers: make(map[detect.Scope]*analyzer.Analyzer),
		vocab: cachemanager.NewLoader[string, *detect.Vocabulary, tierPaths](
			cachemanager.NewInMemoryCacheManager[string, *detect.Vocabulary]("vocabulary", vocabTTL, vocabTTL),
			func(_ context.Context, p tierPaths) (*detect.Vocabulary, error) {
				return config.LoadVocabulary(p.global, p.project), nil
			},
			vocabTTL,
		),
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: opts.Version}, nil)
	s.registerTools()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves on t until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	log.Info(log.CatMCP, "server starting", "version", s.opts.Version)
	return s.mcp.Run(ctx, t)
}

// refresh reloads the vocabulary through the cache and reconfigures every
// analyzer when the exclusion words changed. Callers hold s.mu.
func (s *Server) refresh(ctx context.Context) {
	vocab, _ := s.vocab.Get(ctx, "tiers", tierPaths{s.opts.GlobalPath, s.opts.ProjectPath})
	if s.current != nil && slices.Equal(s.current.Words(), vocab.Words()) {
		return
	}
	if s.current != nil {
		log.Info(log.CatMCP, "exclusions changed; rechecking from scratch", "words", vocab.Len())
	}
	s.current = vocab
	for sc, a := range s.analyzers {
		a.Reconfigure(detect.NewDuplicates(vocab, detect.WithScope(sc)))
	}
}

// analyzerFor returns the analyzer for scope. Callers hold s.mu.
func (s *Server) analyzerFor(ctx context.Context, scope detect.Scope) *analyzer.Analyzer {
	s.refresh(ctx)
	if a, ok := s.analyzers[scope]; ok {
		return a
	}
	a := analyzer.New(analyzer.Config{
		Registry: detect.NewRegistry(detect.NewDuplicates(s.current, detect.WithScope(scope))),
		Tracer:   s.opts.Tracer,
		Flags:    s.opts.Flags,
	})
	s.analyzers[scope] = a
	return a
}

// clear drops key from every analyzer, or everything when key is empty.
// Callers hold s.mu.
func (s *Server) clear(key string) []string {
	var cleared []string
	for _, a := range s.analyzers {
		for _, k := range a.Keys() {
			if key == "" || k == key {
				cleared = append(cleared, k)
			}
		}
		if key == "" {
			a.ClearAll()
		} else {
			a.Clear(key)
		}
	}
	slices.Sort(cleared)
	return slices.Compact(cleared)
}
