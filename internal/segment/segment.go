// Package segment turns document lines into prose paragraphs.
//
// A Paragraph carries the flattened prose text of a run of lines together with
// the original line span it came from. Lines that hold only markup, comments
// or math belong to no paragraph.
package segment

import (
	"strings"

	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/log"
)

// Line is one rewritten source line that contributed to a paragraph.
type Line struct {
	Index int
	Text  string
}

// Paragraph is a run of prose-bearing lines.
type Paragraph struct {
	// Text is the prose-only rendering of the lines, joined by single spaces.
	Text      string
	StartLine int
	EndLine   int
	// Lines holds the rewritten pieces in source order.
	Lines []Line
}

// Contains reports whether line falls inside the paragraph's span.
func (p Paragraph) Contains(line int) bool {
	return line >= p.StartLine && line <= p.EndLine
}

// Segmenter splits a document into paragraphs.
type Segmenter interface {
	Segment(doc document.Document) []Paragraph
}

// ForDialect returns the segmenter for a dialect. Unknown dialects use Plain.
func ForDialect(d document.Dialect) Segmenter {
	if d == document.DialectLaTeX {
		return LaTeX{}
	}
	return Plain{}
}

// accumulator collects pieces until a flush closes the paragraph.
type accumulator struct {
	pieces []Line
	out    []Paragraph
}

func (a *accumulator) add(index int, text string) {
	a.pieces = append(a.pieces, Line{Index: index, Text: text})
}

func (a *accumulator) flush() {
	if len(a.pieces) == 0 {
		return
	}
	texts := make([]string, len(a.pieces))
	for i, p := range a.pieces {
		texts[i] = p.Text
	}
	text := strings.TrimSpace(strings.Join(texts, " "))
	if text != "" {
		a.out = append(a.out, Paragraph{
			Text:      text,
			StartLine: a.pieces[0].Index,
			EndLine:   a.pieces[len(a.pieces)-1].Index,
			Lines:     a.pieces,
		})
	}
	a.pieces = nil
}

// Plain splits on blank lines only.
type Plain struct{}

func (Plain) Segment(doc document.Document) []Paragraph {
	var acc accumulator
	n := doc.LineCount()
	for i := 0; i < n; i++ {
		text := strings.TrimSpace(doc.LineAt(i))
		if text == "" {
			acc.flush()
			continue
		}
		acc.add(i, text)
	}
	acc.flush()
	log.Debug(log.CatSegment, "segmented plain document", "doc", doc.ID(), "paragraphs", len(acc.out))
	return acc.out
}
