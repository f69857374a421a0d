package segment

import (
	"regexp"
	"strings"

	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/latex"
	"github.com/zjrosen/texdup/internal/log"
)

// maxUnwrap bounds repeated unwrapping of nested formatting commands.
const maxUnwrap = 8

// escapedDollar stands in for \$ while math spans are removed.
const escapedDollar = "\x00"

var (
	mathSpans = []*regexp.Regexp{
		regexp.MustCompile(`\$\$.*?\$\$`),
		regexp.MustCompile(`\\\[.*?\\\]`),
		regexp.MustCompile(`\\\(.*?\\\)`),
		regexp.MustCompile(`\$.*?\$`),
	}
	referenceCmd  = commandPattern(latex.ReferenceCommands, `\*?(?:\[[^\]]*\])*\{[^{}]*\}`)
	formattingCmd = commandPattern(latex.FormattingCommands, `\{([^{}]*)\}`)
	sectioningCmd = commandPattern(latex.SectioningCommands, `\*?(?:\[[^\]]*\])?\{([^{}]*)\}`)
)

func commandPattern(names []string, tail string) *regexp.Regexp {
	return regexp.MustCompile(`\\(?:` + strings.Join(names, "|") + `)` + tail)
}

// LaTeX segments LaTeX sources. Math, table and bibliography environments
// close the current paragraph and are skipped until the end marker of the
// environment that opened them.
type LaTeX struct{}

func (LaTeX) Segment(doc document.Document) []Paragraph {
	var (
		acc    accumulator
		region = latex.RegionNone
		env    string
		depth  int
	)
	n := doc.LineCount()
	for i := 0; i < n; i++ {
		raw := doc.LineAt(i)

		if region != latex.RegionNone {
			if depth += latex.Nesting(raw, env); depth <= 0 {
				region, env = latex.RegionNone, ""
			}
			continue
		}
		if latex.IsCommentLine(raw) {
			continue
		}
		if r, name, closed := latex.BeginsRegion(raw); r != latex.RegionNone {
			acc.flush()
			if !closed {
				region, env, depth = r, name, 1
			}
			continue
		}

		text := strings.TrimSpace(Rewrite(raw))
		if text == "" || latex.HasParagraphBreak(text) {
			acc.flush()
			continue
		}
		acc.add(i, text)
	}
	acc.flush()

	if region != latex.RegionNone {
		log.Debug(log.CatSegment, "document ends inside region", "doc", doc.ID(), "region", region, "env", env)
	}
	log.Debug(log.CatSegment, "segmented latex document", "doc", doc.ID(), "paragraphs", len(acc.out))
	return acc.out
}

// Rewrite reduces one source line to its prose content: trailing comments,
// math spans and reference commands are removed, formatting and sectioning
// commands are replaced by their argument text.
func Rewrite(line string) string {
	s := latex.StripComment(line)

	s = strings.ReplaceAll(s, `\$`, escapedDollar)
	for _, re := range mathSpans {
		s = re.ReplaceAllString(s, "")
	}
	s = strings.ReplaceAll(s, escapedDollar, `\$`)

	s = referenceCmd.ReplaceAllString(s, "")
	s = unwrap(formattingCmd, s)
	s = unwrap(sectioningCmd, s)
	return s
}

// unwrap replaces command{arg} by arg until the line stops changing, so nested
// formatting resolves from the inside out.
func unwrap(re *regexp.Regexp, s string) string {
	for i := 0; i < maxUnwrap; i++ {
		next := re.ReplaceAllString(s, "$1")
		if next == s {
			break
		}
		s = next
	}
	return s
}
