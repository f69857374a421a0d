package detect

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/segment"
	"github.com/zjrosen/texdup/internal/testutil"
)

func check(t *testing.T, doc *document.Lines, d *Duplicates) []Result {
	t.Helper()
	paras := segment.ForDialect(doc.Dialect()).Segment(doc)
	results, err := d.Check(doc, paras)
	require.NoError(t, err)
	return results
}

func occurrences(results []Result) []Occurrence {
	out := make([]Occurrence, len(results))
	for i, r := range results {
		out[i] = r.Occurrence
	}
	return out
}

func TestDuplicates_RepeatedLeadingWord(t *testing.T) {
	doc := testutil.NewBuilder(t, "a.tex").WithLines("Although Although the results").Build()

	results := check(t, doc, NewDuplicates(nil))

	require.Equal(t, []Occurrence{
		{Line: 0, StartCol: 0, EndCol: 8, Token: "although"},
		{Line: 0, StartCol: 9, EndCol: 17, Token: "although"},
	}, occurrences(results))
	require.Equal(t, CategoryDuplicateToken, results[0].Category)
	require.Equal(t, `Duplicate word "although" in this paragraph`, results[0].Message)
	require.NotEmpty(t, results[0].Suggestion)
}

func TestDuplicates_FormattingArgumentIsProse(t *testing.T) {
	doc := testutil.NewBuilder(t, "b.tex").WithLines(`\textbf{bold bold text}`).Build()

	results := check(t, doc, NewDuplicates(nil))

	require.Equal(t, []Occurrence{
		{Line: 0, StartCol: 8, EndCol: 12, Token: "bold"},
		{Line: 0, StartCol: 13, EndCol: 17, Token: "bold"},
	}, occurrences(results))
}

func TestDuplicates_CitationKeyStrippedBeforeCounting(t *testing.T) {
	doc := testutil.NewBuilder(t, "c.tex").WithLines(`\cite{smith2020} smith2020 appears again`).Build()
	require.Empty(t, check(t, doc, NewDuplicates(nil)))

	doc = testutil.NewBuilder(t, "c.tex").WithLines(`\cite{smith2020} smith2020 and smith2020 again`).Build()
	results := check(t, doc, NewDuplicates(nil))
	require.Equal(t, []Occurrence{
		{Line: 0, StartCol: 17, EndCol: 26, Token: "smith2020"},
		{Line: 0, StartCol: 31, EndCol: 40, Token: "smith2020"},
	}, occurrences(results))
}

func TestDuplicates_MathEnvironmentYieldsNothing(t *testing.T) {
	doc := testutil.NewBuilder(t, "d.tex").WithEnvironment("equation", "x x x = y y").Build()
	require.Empty(t, check(t, doc, NewDuplicates(nil)))
}

func TestDuplicates_TableContentAfterInnerTabularIgnored(t *testing.T) {
	doc := testutil.NewBuilder(t, "t.tex").
		WithEnvironment("table",
			`\begin{tabular}{ll}`,
			`a & b \\`,
			`\end{tabular}`,
			`Source survey survey data`,
		).
		WithLines("", "prose prose follows").
		Build()

	results := check(t, doc, NewDuplicates(nil))

	require.Equal(t, []Occurrence{
		{Line: 7, StartCol: 0, EndCol: 5, Token: "prose"},
		{Line: 7, StartCol: 6, EndCol: 11, Token: "prose"},
	}, occurrences(results))
}

func TestDuplicates_StandardDocument(t *testing.T) {
	doc := testutil.NewBuilder(t, "paper.tex").WithStandardDocument().Build()

	results := check(t, doc, NewDuplicates(nil))

	require.Equal(t, []Occurrence{
		{Line: 0, StartCol: 9, EndCol: 16, Token: "results"},
		{Line: 0, StartCol: 22, EndCol: 29, Token: "results"},
		{Line: 1, StartCol: 8, EndCol: 15, Token: "results"},
		{Line: 7, StartCol: 4, EndCol: 9, Token: "model"},
		{Line: 8, StartCol: 0, EndCol: 5, Token: "model"},
		{Line: 8, StartCol: 22, EndCol: 27, Token: "model"},
	}, occurrences(results))
}

func TestDuplicates_ExclusionVocabulary(t *testing.T) {
	doc := testutil.NewBuilder(t, "e.tex").WithLines("the cat and the dog and the bird").Build()

	results := check(t, doc, NewDuplicates(NewVocabulary([]string{"THE"}, []string{"and"})))
	require.Empty(t, results)

	results = check(t, doc, NewDuplicates(NewVocabulary([]string{"the"})))
	for _, r := range results {
		require.Equal(t, "and", r.Occurrence.Token)
	}
	require.Len(t, results, 2)
}

func TestDuplicates_CommandAndEnvironmentNamesNotHighlighted(t *testing.T) {
	doc := testutil.NewBuilder(t, "f.tex").
		WithLines(`\begin{itemize} itemize item`, `\item the item \end{itemize}`).
		Build()

	results := check(t, doc, NewDuplicates(nil))

	for _, r := range results {
		line := doc.LineAt(r.Occurrence.Line)
		require.NotEqual(t, byte('\\'), line[r.Occurrence.StartCol-1], "command name highlighted: %+v", r)
	}
	require.Contains(t, occurrences(results), Occurrence{Line: 0, StartCol: 16, EndCol: 23, Token: "itemize"})
	require.NotContains(t, occurrences(results), Occurrence{Line: 0, StartCol: 7, EndCol: 14, Token: "itemize"})
}

func TestDuplicates_MatchAfterInlineCommentRejected(t *testing.T) {
	doc := testutil.NewBuilder(t, "g.tex").
		WithLines("word and word").
		WithOptions(testutil.TrailingComment("word")).
		Build()

	results := check(t, doc, NewDuplicates(nil))
	require.Len(t, results, 2)
	for _, r := range results {
		require.Less(t, r.Occurrence.StartCol, 13)
	}
}

func TestDuplicates_BoundaryLineSkipped(t *testing.T) {
	doc := document.FromLines("h.tex", []string{"repeat here", `repeat \end{align}`}, document.DialectLaTeX)
	paras := []segment.Paragraph{{Text: "repeat here repeat", StartLine: 0, EndLine: 1}}

	results, err := NewDuplicates(nil).Check(doc, paras)
	require.NoError(t, err)
	require.Equal(t, []Occurrence{{Line: 0, StartCol: 0, EndCol: 6, Token: "repeat"}}, occurrences(results))
}

func TestDuplicates_ParagraphBeyondDocumentIsSkipped(t *testing.T) {
	doc := document.FromLines("shrunk.tex", []string{"echo echo"}, document.DialectLaTeX)
	paras := []segment.Paragraph{{Text: "echo echo echo echo", StartLine: 0, EndLine: 5}}

	var results []Result
	require.NotPanics(t, func() {
		var err error
		results, err = NewDuplicates(nil).Check(doc, paras)
		require.NoError(t, err)
	})
	require.Len(t, results, 2)
}

func TestDuplicates_LineScope(t *testing.T) {
	doc := testutil.NewBuilder(t, "l.tex").
		WithLines("the quick fox", "the slow fox fox").
		Build()

	paragraphScope := check(t, doc, NewDuplicates(nil))
	lineScope := check(t, doc, NewDuplicates(nil, WithScope(ScopeLine)))

	require.Len(t, paragraphScope, 5, "the x2 and fox x3")
	require.Equal(t, []Occurrence{
		{Line: 1, StartCol: 9, EndCol: 12, Token: "fox"},
		{Line: 1, StartCol: 13, EndCol: 16, Token: "fox"},
	}, occurrences(lineScope))
	require.Equal(t, `Duplicate word "fox" in this line`, lineScope[0].Message)
}

func TestDuplicates_PlainDialectHasNoSyntaxFilters(t *testing.T) {
	doc := testutil.NewBuilder(t, "notes.md").
		WithDialect(document.DialectPlain).
		WithLines(`% percent percent`).
		Build()

	results := check(t, doc, NewDuplicates(nil))
	require.Len(t, results, 2)
}

func TestDuplicates_SameTokenInTwoParagraphsIsIndependent(t *testing.T) {
	doc := testutil.NewBuilder(t, "i.tex").
		WithParagraph("data data").
		WithParagraph("data once").
		WithParagraph("data data").
		Build()

	results := check(t, doc, NewDuplicates(nil))
	require.Equal(t, []Occurrence{
		{Line: 0, StartCol: 0, EndCol: 4, Token: "data"},
		{Line: 0, StartCol: 5, EndCol: 9, Token: "data"},
		{Line: 4, StartCol: 0, EndCol: 4, Token: "data"},
		{Line: 4, StartCol: 5, EndCol: 9, Token: "data"},
	}, occurrences(results))
}

func TestCandidates_DiscoveryOrder(t *testing.T) {
	got := Candidates("b a B c a A b", nil)
	require.Equal(t, []string{"b", "a"}, got)
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("")
	require.NoError(t, err)
	require.Equal(t, ScopeParagraph, s)

	s, err = ParseScope("LINE")
	require.NoError(t, err)
	require.Equal(t, ScopeLine, s)

	_, err = ParseScope("sentence")
	require.Error(t, err)
}

func TestFunc_AdaptsFunction(t *testing.T) {
	d := Func{DetectorName: "broken", Fn: func(document.Document, []segment.Paragraph) ([]Result, error) {
		return nil, errors.New("nope")
	}}
	require.Equal(t, "broken", d.Name())
	_, err := d.Check(document.New("x", "", document.DialectPlain), nil)
	require.Error(t, err)
}

var words = []string{"alpha", "beta", "gamma", "delta", "Alpha", "BETA", "the", "of"}

func genDocument(t *rapid.T) *document.Lines {
	nLines := rapid.IntRange(1, 12).Draw(t, "lines")
	lines := make([]string, nLines)
	for i := range lines {
		if rapid.IntRange(0, 4).Draw(t, fmt.Sprintf("blank-%d", i)) == 0 {
			continue
		}
		n := rapid.IntRange(1, 6).Draw(t, fmt.Sprintf("words-%d", i))
		ws := make([]string, n)
		for j := range ws {
			ws[j] = rapid.SampledFrom(words).Draw(t, fmt.Sprintf("w-%d-%d", i, j))
		}
		lines[i] = strings.Join(ws, " ")
	}
	return document.FromLines("prop.tex", lines, document.DialectLaTeX)
}

func TestProperty_ExcludedTokensNeverReported(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := genDocument(t)
		excluded := rapid.SliceOfDistinct(rapid.SampledFrom([]string{"alpha", "beta", "the"}), func(s string) string { return s }).Draw(t, "excluded")
		vocab := NewVocabulary(excluded)

		paras := segment.LaTeX{}.Segment(doc)
		results, err := NewDuplicates(vocab).Check(doc, paras)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, r := range results {
			if vocab.Contains(r.Occurrence.Token) {
				t.Fatalf("excluded token reported: %+v", r)
			}
		}
	})
}

func TestProperty_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := genDocument(t)
		d := NewDuplicates(NewVocabulary([]string{"of"}))

		first, _ := d.Check(doc, segment.LaTeX{}.Segment(doc))
		second, _ := d.Check(doc, segment.LaTeX{}.Segment(doc))
		if len(first) != len(second) {
			t.Fatalf("length differs: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("result %d differs: %+v vs %+v", i, first[i], second[i])
			}
		}
	})
}
