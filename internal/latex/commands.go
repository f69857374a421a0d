package latex

import "regexp"

// FormattingCommands wrap prose; the segmenter keeps their argument text.
var FormattingCommands = []string{
	"textbf", "textit", "emph", "underline", "texttt", "textsc", "textsf",
	"textrm", "textsl", "textup", "textmd", "textnormal", "uline", "mbox",
}

// SectioningCommands carry a heading; the segmenter keeps the heading text.
var SectioningCommands = []string{
	"part", "chapter", "section", "subsection", "subsubsection",
	"paragraph", "subparagraph",
}

// ReferenceCommands carry keys, never prose; the segmenter deletes them.
var ReferenceCommands = []string{
	"cite", "citep", "citet", "citealp", "citeauthor", "citeyear", "nocite",
	"ref", "eqref", "autoref", "cref", "Cref", "pageref", "label",
}

// proseArgument lists commands whose braced argument is prose. Matches inside
// any other command's argument are not highlighted.
var proseArgument = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, group := range [][]string{FormattingCommands, SectioningCommands, {"footnote", "caption"}} {
		for _, name := range group {
			m[name] = struct{}{}
		}
	}
	return m
}()

// IsProseCommand reports whether name's braced argument holds prose.
func IsProseCommand(name string) bool {
	_, ok := proseArgument[name]
	return ok
}

var commandBeforeBrace = regexp.MustCompile(`\\([a-zA-Z]+)\*?(?:\[[^\]]*\])*$`)

// EnclosingCommand returns the name of the command whose braced argument is
// still open at byte offset pos, looking only at line[:pos]. Nested braces
// resolve to the innermost one. ok is false when pos is not inside any braces;
// name is empty for bare groups such as {...}.
func EnclosingCommand(line string, pos int) (name string, ok bool) {
	if pos > len(line) {
		pos = len(line)
	}
	var stack []string
	for i := 0; i < pos; i++ {
		switch line[i] {
		case '{':
			if IsEscaped(line, i) {
				continue
			}
			cmd := ""
			if m := commandBeforeBrace.FindStringSubmatch(line[:i]); m != nil {
				cmd = m[1]
			}
			stack = append(stack, cmd)
		case '}':
			if IsEscaped(line, i) || len(stack) == 0 {
				continue
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) == 0 {
		return "", false
	}
	return stack[len(stack)-1], true
}
