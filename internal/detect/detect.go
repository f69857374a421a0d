// Package detect finds problems in segmented paragraphs and locates them in
// the original document text.
package detect

import (
	"fmt"
	"strings"

	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/segment"
)

// Category classifies a result.
type Category string

const CategoryDuplicateToken Category = "duplicate-token"

// Occurrence is one highlightable location in the original document text.
// Columns are byte offsets; EndCol is exclusive.
type Occurrence struct {
	Line     int    `json:"line"`
	StartCol int    `json:"start_col"`
	EndCol   int    `json:"end_col"`
	Token    string `json:"token"`
}

// Result is a single finding. Results are plain values.
type Result struct {
	Occurrence Occurrence `json:"occurrence"`
	Category   Category   `json:"category"`
	Message    string     `json:"message"`
	Suggestion string     `json:"suggestion"`
}

// Detector inspects paragraphs of a document. Implementations must only read
// doc and must tolerate paragraphs whose lines no longer exist.
type Detector interface {
	Name() string
	Check(doc document.Document, paragraphs []segment.Paragraph) ([]Result, error)
}

// Scope selects the unit in which repeated tokens are counted.
type Scope string

const (
	ScopeParagraph Scope = "paragraph"
	ScopeLine      Scope = "line"
)

// ParseScope maps a config value to a Scope. Empty means paragraph.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeParagraph:
		return ScopeParagraph, nil
	case ScopeLine:
		return ScopeLine, nil
	default:
		return "", fmt.Errorf("unknown scope %q (want paragraph or line)", s)
	}
}

// Func adapts a function to the Detector interface.
type Func struct {
	DetectorName string
	Fn           func(doc document.Document, paragraphs []segment.Paragraph) ([]Result, error)
}

func (f Func) Name() string { return f.DetectorName }

func (f Func) Check(doc document.Document, paragraphs []segment.Paragraph) ([]Result, error) {
	return f.Fn(doc, paragraphs)
}
