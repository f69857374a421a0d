package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/latex"
	"github.com/zjrosen/texdup/internal/log"
	"github.com/zjrosen/texdup/internal/segment"
)

// DuplicatesName identifies the duplicate-token detector.
const DuplicatesName = "duplicate-token"

const duplicateSuggestion = "Consider rephrasing or replacing one occurrence with a different word."

var wordRun = regexp.MustCompile(`\w+`)

// Duplicates reports tokens repeated within a paragraph (or a line, depending
// on scope) and highlights every prose occurrence in the source lines.
type Duplicates struct {
	vocab   *Vocabulary
	scope   Scope
	filters []MatchFilter
}

// Option configures a Duplicates detector.
type Option func(*Duplicates)

// WithScope sets the candidate discovery scope.
func WithScope(s Scope) Option {
	return func(d *Duplicates) { d.scope = s }
}

// WithFilters overrides the LaTeX match filters.
func WithFilters(filters ...MatchFilter) Option {
	return func(d *Duplicates) { d.filters = filters }
}

// NewDuplicates creates the detector. vocab may be nil.
func NewDuplicates(vocab *Vocabulary, opts ...Option) *Duplicates {
	d := &Duplicates{
		vocab:   vocab,
		scope:   ScopeParagraph,
		filters: LaTeXFilters(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Duplicates) Name() string { return DuplicatesName }

// Scope returns the configured scope.
func (d *Duplicates) Scope() Scope { return d.scope }

// Check never fails; the error return satisfies Detector.
func (d *Duplicates) Check(doc document.Document, paragraphs []segment.Paragraph) ([]Result, error) {
	loc := locator{
		doc:      doc,
		isLaTeX:  document.DialectOf(doc) == document.DialectLaTeX,
		patterns: make(map[string]*regexp.Regexp),
	}
	if loc.isLaTeX {
		loc.filters = d.filters
	}

	var results []Result
	for _, p := range paragraphs {
		if d.scope == ScopeLine {
			for _, piece := range p.Lines {
				for _, tok := range Candidates(piece.Text, d.vocab) {
					results = loc.locate(results, tok, piece.Index, piece.Index, "line")
				}
			}
			continue
		}
		for _, tok := range Candidates(p.Text, d.vocab) {
			results = loc.locate(results, tok, p.StartLine, p.EndLine, "paragraph")
		}
	}

	log.Debug(log.CatDetect, "duplicate check done", "doc", doc.ID(), "paragraphs", len(paragraphs), "results", len(results))
	return results, nil
}

// Candidates returns the lower-cased tokens occurring at least twice in text
// and not excluded by vocab, in order of first appearance.
func Candidates(text string, vocab *Vocabulary) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range wordRun.FindAllString(text, -1) {
		w = strings.ToLower(w)
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	var out []string
	for _, w := range order {
		if counts[w] >= 2 && !vocab.Contains(w) {
			out = append(out, w)
		}
	}
	return out
}

// locator re-finds candidate tokens in the original lines of one document.
type locator struct {
	doc      document.Document
	isLaTeX  bool
	filters  []MatchFilter
	patterns map[string]*regexp.Regexp
}

func (l *locator) pattern(tok string) *regexp.Regexp {
	re, ok := l.patterns[tok]
	if !ok {
		re = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(tok) + `\b`)
		l.patterns[tok] = re
	}
	return re
}

func (l *locator) skipLine(line string) bool {
	if !l.isLaTeX {
		return false
	}
	return latex.IsCommentLine(line) || latex.HasRegionDelimiter(line)
}

func (l *locator) locate(results []Result, tok string, from, to int, unit string) []Result {
	re := l.pattern(tok)
	n := l.doc.LineCount()
	for i := from; i <= to && i < n; i++ {
		if i < 0 {
			continue
		}
		line := l.doc.LineAt(i)
		if l.skipLine(line) {
			continue
		}
		for _, m := range re.FindAllStringIndex(line, -1) {
			if rejected(l.filters, line, m[0], m[1]) {
				continue
			}
			results = append(results, Result{
				Occurrence: Occurrence{Line: i, StartCol: m[0], EndCol: m[1], Token: tok},
				Category:   CategoryDuplicateToken,
				Message:    fmt.Sprintf("Duplicate word %q in this %s", tok, unit),
				Suggestion: duplicateSuggestion,
			})
		}
	}
	return results
}
