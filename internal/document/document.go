// Package document models the host document the analysis engine reads.
// The engine never mutates a document; it only asks for line counts and lines.
package document

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Document is the read-only view of an open document.
type Document interface {
	// ID is a stable identity used as the analysis cache key.
	ID() string
	LineCount() int
	// LineAt returns line i, or "" when i is out of range.
	LineAt(i int) string
}

// Dialect selects which segmentation and filtering rules apply.
type Dialect string

const (
	DialectLaTeX Dialect = "latex"
	DialectPlain Dialect = "plain"
)

// Lines is an in-memory Document backed by a slice of lines.
type Lines struct {
	id      string
	lines   []string
	dialect Dialect
}

// New splits text into lines. CRLF line endings are normalized.
func New(id, text string, dialect Dialect) *Lines {
	return &Lines{
		id:      id,
		lines:   SplitLines(text),
		dialect: dialect,
	}
}

// FromLines wraps an existing slice. The slice is not copied.
func FromLines(id string, lines []string, dialect Dialect) *Lines {
	return &Lines{id: id, lines: lines, dialect: dialect}
}

// Untitled creates a document with a fresh random identity, used for text
// that has no path (stdin, inline MCP requests).
func Untitled(text string, dialect Dialect) *Lines {
	return New("untitled:"+uuid.NewString(), text, dialect)
}

// Load reads a document from disk. The absolute path is its identity.
// An empty dialect is resolved from the file extension.
func Load(path string, dialect Dialect) (*Lines, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %s: %w", path, err)
	}
	f, err := os.Open(abs) //nolint:gosec // G304: path is a user-selected document
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer func() { _ = f.Close() }()

	if dialect == "" {
		dialect = DialectFor(abs)
	}
	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", abs, err)
	}
	return FromLines(abs, lines, dialect), nil
}

// ReadLines reads all lines from r without trailing newline characters.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// SplitLines splits text on newlines. A trailing newline does not produce an
// extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// DialectFor picks a dialect from a file extension.
func DialectFor(path string) Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tex", ".ltx", ".sty", ".cls", ".dtx":
		return DialectLaTeX
	default:
		return DialectPlain
	}
}

// ParseDialect maps a config value to a Dialect. "auto" and "" return "" so
// callers fall back to DialectFor.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return "", nil
	case "latex", "tex":
		return DialectLaTeX, nil
	case "plain", "text", "markdown":
		return DialectPlain, nil
	default:
		return "", fmt.Errorf("unknown document type %q", s)
	}
}

func (d *Lines) ID() string { return d.id }

func (d *Lines) LineCount() int { return len(d.lines) }

func (d *Lines) LineAt(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// Dialect reports the document's dialect.
func (d *Lines) Dialect() Dialect { return d.dialect }

// Text joins the lines back with "\n".
func (d *Lines) Text() string { return strings.Join(d.lines, "\n") }

// Snapshot copies every line of doc. Detectors use it so a single pass reads a
// consistent view even if the host swaps content underneath.
func Snapshot(doc Document) []string {
	n := doc.LineCount()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = doc.LineAt(i)
	}
	return out
}

// DialectOf returns the dialect of doc when it carries one, else DialectFor(ID).
func DialectOf(doc Document) Dialect {
	if d, ok := doc.(interface{ Dialect() Dialect }); ok && d.Dialect() != "" {
		return d.Dialect()
	}
	return DialectFor(doc.ID())
}
