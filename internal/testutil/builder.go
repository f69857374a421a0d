// Package testutil builds documents for analysis tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/zjrosen/texdup/internal/document"
)

// Builder accumulates document lines in order.
type Builder struct {
	t       *testing.T
	id      string
	dialect document.Dialect
	lines   []string
}

// NewBuilder creates a LaTeX document builder with the given identity.
func NewBuilder(t *testing.T, id string) *Builder {
	t.Helper()
	return &Builder{t: t, id: id, dialect: document.DialectLaTeX}
}

// WithDialect switches the dialect of the built document.
func (b *Builder) WithDialect(d document.Dialect) *Builder {
	b.dialect = d
	return b
}

// WithLines appends raw lines.
func (b *Builder) WithLines(lines ...string) *Builder {
	b.lines = append(b.lines, lines...)
	return b
}

// WithParagraph appends prose lines followed by a blank separator line.
func (b *Builder) WithParagraph(lines ...string) *Builder {
	b.lines = append(b.lines, lines...)
	b.lines = append(b.lines, "")
	return b
}

// WithComment appends a comment-only line.
func (b *Builder) WithComment(text string) *Builder {
	b.lines = append(b.lines, "% "+text)
	return b
}

// WithEnvironment appends a \begin{name} ... \end{name} block.
func (b *Builder) WithEnvironment(name string, body ...string) *Builder {
	b.lines = append(b.lines, `\begin{`+name+`}`)
	b.lines = append(b.lines, body...)
	b.lines = append(b.lines, `\end{`+name+`}`)
	return b
}

// WithOptions applies line options to the most recently added lines.
func (b *Builder) WithOptions(opts ...LineOption) *Builder {
	for _, opt := range opts {
		b.lines = opt(b.lines)
	}
	return b
}

// Lines returns a copy of the accumulated lines.
func (b *Builder) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Text returns the accumulated lines joined by newlines.
func (b *Builder) Text() string {
	return strings.Join(b.lines, "\n")
}

// Build returns the document.
func (b *Builder) Build() *document.Lines {
	b.t.Helper()
	return document.FromLines(b.id, b.Lines(), b.dialect)
}
