package monitor

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Edits summarizes the line-level difference between two document versions.
type Edits struct {
	Inserted int `json:"inserted"`
	Deleted  int `json:"deleted"`
}

// Empty reports whether no line changed.
func (e Edits) Empty() bool {
	return e.Inserted == 0 && e.Deleted == 0
}

// LineEdits diffs before and after line by line. A changed line counts as one
// deletion and one insertion.
func LineEdits(before, after []string) Edits {
	a := joinLines(before)
	b := joinLines(after)
	if a == b {
		return Edits{}
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffMain(ca, cb, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var e Edits
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			e.Inserted += n
		case diffmatchpatch.DiffDelete:
			e.Deleted += n
		}
	}
	return e
}

// joinLines terminates every line so the last one diffs like the others.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
