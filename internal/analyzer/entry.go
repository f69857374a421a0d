package analyzer

import (
	"github.com/cespare/xxhash/v2"

	"github.com/zjrosen/texdup/internal/detect"
	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/segment"
)

// Span is the inclusive line range of one paragraph.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Entry is the cached state of one document. It is replaced, never mutated,
// after it has been stored.
type Entry struct {
	// Fingerprints holds one hash per paragraph ordinal.
	Fingerprints []uint64
	// Spans holds the line span per ordinal.
	Spans []Span
	// ByParagraph holds the results attributed to each ordinal.
	ByParagraph [][]detect.Result
	// Results is ByParagraph flattened in ordinal order.
	Results []detect.Result
	// Passes counts the passes that recomputed any part of the entry.
	Passes int
}

// Paragraphs returns the number of paragraphs the entry describes.
func (e *Entry) Paragraphs() int {
	if e == nil {
		return 0
	}
	return len(e.Fingerprints)
}

// Fingerprint hashes the flattened text of p together with the source lines
// of its span. Two paragraphs with equal text but different markup (and so
// different columns) hash differently.
func Fingerprint(doc document.Document, p segment.Paragraph) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(p.Text)
	for i := p.StartLine; i <= p.EndLine && i < doc.LineCount(); i++ {
		_, _ = d.WriteString("\n")
		_, _ = d.WriteString(doc.LineAt(i))
	}
	return d.Sum64()
}

func fingerprints(doc document.Document, paras []segment.Paragraph) ([]uint64, []Span) {
	hashes := make([]uint64, len(paras))
	spans := make([]Span, len(paras))
	for i, p := range paras {
		hashes[i] = Fingerprint(doc, p)
		spans[i] = Span{Start: p.StartLine, End: p.EndLine}
	}
	return hashes, spans
}

// changedOrdinals returns the ordinals whose hash or span differ. Both slices
// must have the same length.
func changedOrdinals(prev *Entry, hashes []uint64, spans []Span) []int {
	var changed []int
	for i := range hashes {
		if prev.Fingerprints[i] != hashes[i] || prev.Spans[i] != spans[i] {
			changed = append(changed, i)
		}
	}
	return changed
}

func flatten(byParagraph [][]detect.Result) []detect.Result {
	n := 0
	for _, rs := range byParagraph {
		n += len(rs)
	}
	out := make([]detect.Result, 0, n)
	for _, rs := range byParagraph {
		out = append(out, rs...)
	}
	return out
}

// assign assigns each result to the target ordinal whose span contains its
// line, falling back to the nearest preceding target.
func assign(results []detect.Result, paras []segment.Paragraph, targets []int, into [][]detect.Result) {
	for _, r := range results {
		line := r.Occurrence.Line
		owner := targets[0]
		for _, ord := range targets {
			if paras[ord].StartLine > line {
				break
			}
			owner = ord
			if paras[ord].Contains(line) {
				break
			}
		}
		into[owner] = append(into[owner], r)
	}
}
