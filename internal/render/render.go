// Package render turns analysis reports into human or machine readable output.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/zjrosen/texdup/internal/analyzer"
	"github.com/zjrosen/texdup/internal/detect"
	"github.com/zjrosen/texdup/internal/log"
)

// Format selects an output renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat maps a flag value to a Format. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", s)
	}
}

// Summary is everything needed to render one document's report.
type Summary struct {
	Path   string
	Lines  []string
	Report analyzer.Report
	// Note is appended to the header, e.g. an edit summary.
	Note string
}

// Renderer writes summaries.
type Renderer interface {
	Render(s Summary) error
}

// New returns the renderer for format writing to w.
func New(format Format, w io.Writer, color ColorMode) (Renderer, error) {
	switch format {
	case FormatText, "":
		return NewText(w, color), nil
	case FormatJSON:
		return NewJSON(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Text renders results like compiler diagnostics with the source line and a
// marker under the duplicated word.
type Text struct {
	w      io.Writer
	styles styles
}

// ColorMode controls ANSI styling of text output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode maps a flag value to a ColorMode. Empty means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways:
		return ColorAlways, nil
	case ColorNever:
		return ColorNever, nil
	default:
		return "", fmt.Errorf("unknown color mode %q (want auto, always or never)", s)
	}
}

// NewText creates a text renderer. In auto mode colors are used only when w
// is a terminal.
func NewText(w io.Writer, mode ColorMode) *Text {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	return &Text{w: w, styles: newStyles(r)}
}

func (t *Text) Render(s Summary) error {
	var b strings.Builder
	st := t.styles

	header := st.path.Render(s.Path)
	results := s.Report.Results
	switch len(results) {
	case 0:
		header += "  " + st.clean.Render("no duplicates")
	case 1:
		header += "  1 duplicate"
	default:
		header += fmt.Sprintf("  %d duplicates", len(results))
	}
	if s.Note != "" {
		header += st.position.Render("  (" + s.Note + ")")
	}
	b.WriteString(header)
	b.WriteString("\n")

	for _, r := range results {
		writeResult(&b, st, s.Lines, r)
	}

	_, err := io.WriteString(t.w, b.String())
	if err != nil {
		log.ErrorErr(log.CatRender, "writing text output", err, "path", s.Path)
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func writeResult(b *strings.Builder, st styles, lines []string, r detect.Result) {
	o := r.Occurrence
	fmt.Fprintf(b, "  %s  %s  %s\n",
		st.position.Render(fmt.Sprintf("%d:%d", o.Line+1, o.StartCol+1)),
		st.token.Render(o.Token),
		r.Message,
	)

	if o.Line >= 0 && o.Line < len(lines) {
		src := lines[o.Line]
		if o.StartCol <= o.EndCol && o.EndCol <= len(src) {
			fmt.Fprintf(b, "      %s\n", src)
			fmt.Fprintf(b, "      %s%s\n",
				padding(src[:o.StartCol]),
				st.marker.Render(strings.Repeat("^", max(1, utf8.RuneCountInString(src[o.StartCol:o.EndCol])))),
			)
		}
	}

	if r.Suggestion != "" {
		fmt.Fprintf(b, "      %s\n", st.suggestion.Render(r.Suggestion))
	}
}

// padding blanks out prefix, keeping tabs so the marker lines up.
func padding(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteRune('\t')
			continue
		}
		b.WriteRune(' ')
	}
	return b.String()
}

// JSON writes one JSON object per document.
type JSON struct {
	enc *json.Encoder
}

// NewJSON creates a JSON lines renderer.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

type jsonSummary struct {
	Path       string          `json:"path"`
	Mode       analyzer.Mode   `json:"mode"`
	Paragraphs int             `json:"paragraphs"`
	Changed    []int           `json:"changed,omitempty"`
	Note       string          `json:"note,omitempty"`
	Results    []detect.Result `json:"results"`
}

func (j *JSON) Render(s Summary) error {
	results := s.Report.Results
	if results == nil {
		results = []detect.Result{}
	}
	err := j.enc.Encode(jsonSummary{
		Path:       s.Path,
		Mode:       s.Report.Mode,
		Paragraphs: s.Report.Paragraphs,
		Changed:    s.Report.Changed,
		Note:       s.Note,
		Results:    results,
	})
	if err != nil {
		log.ErrorErr(log.CatRender, "writing json output", err, "path", s.Path)
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
