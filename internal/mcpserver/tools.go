package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/texdup/internal/analyzer"
	"github.com/zjrosen/texdup/internal/config"
	"github.com/zjrosen/texdup/internal/detect"
	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/log"
	"github.com/zjrosen/texdup/internal/tracing"
)

// AnalyzeInput defines input for analyze_document.
type AnalyzeInput struct {
	Path         string `json:"path,omitempty" jsonschema:"Path of the document to check. Either path or text is required."`
	Text         string `json:"text,omitempty" jsonschema:"Document content to check when it is not saved to disk"`
	CacheKey     string `json:"cache_key,omitempty" jsonschema:"Stable identity for incremental re-checks. Defaults to the absolute path, or a fresh key for text."`
	DocumentType string `json:"document_type,omitempty" jsonschema:"latex, plain or auto (default: by file extension; latex for text)"`
	Scope        string `json:"scope,omitempty" jsonschema:"paragraph or line (default: configured scope)"`
}

// AnalyzeOutput defines output for analyze_document.
type AnalyzeOutput struct {
	CacheKey   string          `json:"cache_key"`
	Mode       string          `json:"mode" jsonschema:"first, full, partial or unchanged"`
	Rerender   bool            `json:"rerender" jsonschema:"false when nothing changed since the previous call for this cache_key"`
	Paragraphs int             `json:"paragraphs"`
	Changed    []int           `json:"changed,omitempty" jsonschema:"Paragraph ordinals that were re-checked"`
	Results    []detect.Result `json:"results"`
}

// ClearCacheInput defines input for clear_cache.
type ClearCacheInput struct {
	CacheKey string `json:"cache_key,omitempty" jsonschema:"Cache key to drop. Empty drops every document."`
}

// ClearCacheOutput defines output for clear_cache.
type ClearCacheOutput struct {
	Cleared []string `json:"cleared"`
}

// AddExclusionInput defines input for add_exclusion.
type AddExclusionInput struct {
	Words  []string `json:"words" jsonschema:"Words that should never be reported as duplicates"`
	Global bool     `json:"global,omitempty" jsonschema:"Write to the global config instead of the project config"`
}

// AddExclusionOutput defines output for add_exclusion.
type AddExclusionOutput struct {
	Added []string `json:"added"`
	File  string   `json:"file"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp,
		&mcp.Tool{
			Name:        "analyze_document",
			Description: "Find words repeated within a paragraph of a LaTeX or plain text document. Math, tables, bibliographies, comments and command syntax are ignored. Repeated calls with the same cache_key only re-check paragraphs that changed; rerender=false means the results are identical to the previous call.",
		},
		s.AnalyzeDocument,
	)
	mcp.AddTool(s.mcp,
		&mcp.Tool{
			Name:        "clear_cache",
			Description: "Forget incremental state for one document (cache_key) or all documents, so the next analyze_document call checks everything.",
		},
		s.ClearCache,
	)
	mcp.AddTool(s.mcp,
		&mcp.Tool{
			Name:        "add_exclusion",
			Description: "Add words to the exclusion list so they are never reported. Every document is re-checked from scratch on its next analysis.",
		},
		s.AddExclusion,
	)
}

func (s *Server) startSpan(ctx context.Context, tool string) (context.Context, trace.Span, func(error)) {
	ctx, span := s.opts.Tracer.Start(ctx, tracing.SpanMCPTool+tool)
	return ctx, span, func(err error) {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String(tracing.AttrErrorMessage, err.Error()))
			log.ErrorErr(log.CatMCP, "tool failed", err, "tool", tool)
		}
		span.End()
	}
}

// AnalyzeDocument runs one analysis pass.
func (s *Server) AnalyzeDocument(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeInput) (_ *mcp.CallToolResult, out AnalyzeOutput, err error) {
	ctx, span, end := s.startSpan(ctx, "analyze_document")
	defer func() { end(err) }()

	doc, err := s.loadDocument(input)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}

	scope := s.opts.Config.ScopeValue()
	if input.Scope != "" {
		if scope, err = detect.ParseScope(input.Scope); err != nil {
			return nil, AnalyzeOutput{}, err
		}
	}

	key := input.CacheKey
	if key == "" {
		key = doc.ID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	report := s.analyzerFor(ctx, scope).Analyze(ctx, key, doc)
	span.SetAttributes(
		attribute.String(tracing.AttrDocumentKey, key),
		attribute.String(tracing.AttrMode, string(report.Mode)),
		attribute.Int(tracing.AttrResults, len(report.Results)),
	)
	return nil, toOutput(report), nil
}

func (s *Server) loadDocument(input AnalyzeInput) (*document.Lines, error) {
	dialect, err := document.ParseDialect(input.DocumentType)
	if err != nil {
		return nil, err
	}
	if dialect == "" {
		dialect = s.opts.Config.Dialect()
	}

	switch {
	case input.Path != "" && input.Text != "":
		return nil, fmt.Errorf("give either path or text, not both")
	case input.Path != "":
		return document.Load(input.Path, dialect)
	case input.Text != "":
		if dialect == "" {
			dialect = document.DialectLaTeX
		}
		if input.CacheKey != "" {
			return document.New(input.CacheKey, input.Text, dialect), nil
		}
		return document.Untitled(input.Text, dialect), nil
	default:
		return nil, fmt.Errorf("path or text is required")
	}
}

func toOutput(r analyzer.Report) AnalyzeOutput {
	results := r.Results
	if results == nil {
		results = []detect.Result{}
	}
	return AnalyzeOutput{
		CacheKey:   r.Key,
		Mode:       string(r.Mode),
		Rerender:   r.Rerender(),
		Paragraphs: r.Paragraphs,
		Changed:    r.Changed,
		Results:    results,
	}
}

// ClearCache drops incremental state.
func (s *Server) ClearCache(ctx context.Context, _ *mcp.CallToolRequest, input ClearCacheInput) (_ *mcp.CallToolResult, out ClearCacheOutput, err error) {
	_, _, end := s.startSpan(ctx, "clear_cache")
	defer func() { end(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	cleared := s.clear(input.CacheKey)
	if cleared == nil {
		cleared = []string{}
	}
	log.Debug(log.CatMCP, "cache cleared", "key", input.CacheKey, "count", len(cleared))
	return nil, ClearCacheOutput{Cleared: cleared}, nil
}

// AddExclusion persists words to a tier file and reconfigures every analyzer.
func (s *Server) AddExclusion(ctx context.Context, _ *mcp.CallToolRequest, input AddExclusionInput) (_ *mcp.CallToolResult, out AddExclusionOutput, err error) {
	ctx, _, end := s.startSpan(ctx, "add_exclusion")
	defer func() { end(err) }()

	if len(input.Words) == 0 {
		return nil, AddExclusionOutput{}, fmt.Errorf("words is required")
	}

	path := s.opts.ProjectPath
	if input.Global {
		path = s.opts.GlobalPath
	}
	if path == "" {
		return nil, AddExclusionOutput{}, fmt.Errorf("no config file to write to")
	}
	if abs, absErr := filepath.Abs(path); absErr == nil {
		path = abs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added, err := config.AddExclusions(path, input.Words...)
	if err != nil {
		return nil, AddExclusionOutput{}, err
	}
	if added == nil {
		added = []string{}
	}

	if err := s.vocab.Invalidate(ctx); err != nil {
		return nil, AddExclusionOutput{}, err
	}
	s.refresh(ctx)
	log.Info(log.CatMCP, "exclusions added", "file", path, "words", added)
	return nil, AddExclusionOutput{Added: added, File: path}, nil
}
