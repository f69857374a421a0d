package tracing

// Span names.
const (
	SpanAnalyzePass = "analyze.pass"
	SpanDetector    = "analyze.detector"
	SpanMCPTool     = "mcp.tool."
)

// Span attribute keys.
const (
	AttrDocumentKey     = "document.key"
	AttrDocumentLines   = "document.lines"
	AttrParagraphs      = "analyze.paragraphs"
	AttrChanged         = "analyze.changed"
	AttrMode            = "analyze.mode"
	AttrResults         = "analyze.results"
	AttrDetectorName    = "detector.name"
	AttrDetectorResults = "detector.results"
	AttrErrorMessage    = "error.message"
)

// Event names.
const (
	EventDetectorFailed = "detector.failed"
	EventCacheMiss      = "cache.miss"
)
