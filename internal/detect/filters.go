package detect

import "github.com/zjrosen/texdup/internal/latex"

// MatchFilter rejects a match at line[start:end] when it returns true.
// Each filter looks at one syntactic context and nothing else.
type MatchFilter func(line string, start, end int) bool

// RejectCommandName rejects matches directly preceded by a backslash: the
// match is a command name, not prose.
func RejectCommandName(line string, start, _ int) bool {
	return start > 0 && line[start-1] == '\\'
}

// RejectEnvironmentName rejects matches inside the name argument of
// \begin{...} or \end{...}.
func RejectEnvironmentName(line string, start, end int) bool {
	for _, span := range latex.EnvironmentNameSpans(line) {
		if start >= span[0] && end <= span[1] {
			return true
		}
	}
	return false
}

// RejectCommandArgument rejects matches inside the still-open braced argument
// of a command whose argument is not prose, such as \ref{...} or \usepackage{...}.
// Arguments of formatting and sectioning commands are prose and stay visible.
func RejectCommandArgument(line string, start, _ int) bool {
	name, ok := latex.EnclosingCommand(line, start)
	return ok && name != "" && !latex.IsProseCommand(name)
}

// RejectAfterComment rejects matches that follow an unescaped '%'.
func RejectAfterComment(line string, start, _ int) bool {
	i := latex.CommentIndex(line)
	return i >= 0 && i < start
}

// LaTeXFilters is the filter chain applied to LaTeX documents, in order.
func LaTeXFilters() []MatchFilter {
	return []MatchFilter{
		RejectCommandName,
		RejectEnvironmentName,
		RejectCommandArgument,
		RejectAfterComment,
	}
}

func rejected(filters []MatchFilter, line string, start, end int) bool {
	for _, f := range filters {
		if f(line, start, end) {
			return true
		}
	}
	return false
}
