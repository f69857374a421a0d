// Package latex holds the LaTeX syntax vocabulary shared by the segmenter and
// the duplicate detector: comment handling, non-prose regions and command
// classes.
package latex

import (
	"regexp"
	"strings"
)

// Region identifies a span of the document whose content is never prose.
type Region int

const (
	RegionNone Region = iota
	// RegionBlock covers math and table environments.
	RegionBlock
	RegionBibliography
)

func (r Region) String() string {
	switch r {
	case RegionBlock:
		return "block"
	case RegionBibliography:
		return "bibliography"
	default:
		return "none"
	}
}

// BlockEnvironments are the math and table environments treated as non-prose.
var BlockEnvironments = []string{
	"equation", "align", "gather", "multline", "flalign", "alignat", "eqnarray",
	"displaymath", "table", "tabular", "tabularx", "longtable",
}

// BibliographyEnvironments hold reference lists.
var BibliographyEnvironments = []string{"thebibliography"}

var (
	blockBegin = envPattern("begin", BlockEnvironments)
	blockEnd   = envPattern("end", BlockEnvironments)
	bibBegin   = envPattern("begin", BibliographyEnvironments)
	bibEnd     = envPattern("end", BibliographyEnvironments)

	envMarker = regexp.MustCompile(`\\(begin|end)\{([^{}]*)\}`)
	parBreak  = regexp.MustCompile(`\\par\b`)
)

// openers are tried in order; the earliest match on a line wins.
var openers = []struct {
	begin  *regexp.Regexp
	region Region
}{
	{blockBegin, RegionBlock},
	{bibBegin, RegionBibliography},
}

func envPattern(marker string, names []string) *regexp.Regexp {
	return regexp.MustCompile(`\\` + marker + `\{((?:` + strings.Join(names, "|") + `)\*?)\}`)
}

// IsCommentLine reports whether the first non-whitespace character is '%'.
func IsCommentLine(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "%")
}

// IsEscaped reports whether the byte at i is preceded by an odd run of
// backslashes.
func IsEscaped(line string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// CommentIndex returns the index of the first unescaped '%', or -1.
func CommentIndex(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] == '%' && !IsEscaped(line, i) {
			return i
		}
	}
	return -1
}

// StripComment removes an unescaped trailing comment.
func StripComment(line string) string {
	if i := CommentIndex(line); i >= 0 {
		return line[:i]
	}
	return line
}

// BeginsRegion reports the region opened on line, if any, and the name of the
// environment that opened it. The region only ends on the end marker of that
// same environment; closed is true when it already does so on this line.
func BeginsRegion(line string) (region Region, name string, closed bool) {
	code := StripComment(line)
	at, rest := -1, ""
	for _, o := range openers {
		m := o.begin.FindStringSubmatchIndex(code)
		if m == nil || (at >= 0 && m[0] > at) {
			continue
		}
		region, name, at, rest = o.region, code[m[2]:m[3]], m[0], code[m[1]:]
	}
	if at < 0 {
		return RegionNone, "", false
	}
	return region, name, Nesting(rest, name) < 0
}

// Nesting returns the number of \begin{name} minus the number of \end{name}
// markers on line, ignoring any trailing comment. Other environments do not
// count, so \end{tabular} leaves an open table untouched.
func Nesting(line, name string) int {
	depth := 0
	for _, m := range envMarker.FindAllStringSubmatch(StripComment(line), -1) {
		if m[2] != name {
			continue
		}
		if m[1] == "begin" {
			depth++
		} else {
			depth--
		}
	}
	return depth
}

// HasRegionDelimiter reports whether line opens or closes a math, table or
// bibliography environment.
func HasRegionDelimiter(line string) bool {
	for _, re := range []*regexp.Regexp{blockBegin, blockEnd, bibBegin, bibEnd} {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// HasParagraphBreak reports whether line contains an explicit \par.
func HasParagraphBreak(line string) bool {
	return parBreak.MatchString(line)
}

// EnvironmentNameSpans returns the [start,end) byte spans of the name argument
// of every \begin{...} and \end{...} on line.
func EnvironmentNameSpans(line string) [][2]int {
	var spans [][2]int
	for _, m := range envMarker.FindAllStringSubmatchIndex(line, -1) {
		spans = append(spans, [2]int{m[4], m[5]})
	}
	return spans
}
