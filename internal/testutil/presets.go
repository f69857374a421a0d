package testutil

// WithStandardDocument adds a small paper with prose, math, a table, a
// bibliography and comments.
//
// Structure (line: content):
//
//	0-1   paragraph 0: "results" repeated
//	2     blank
//	3     comment
//	4-6   equation environment
//	7-8   paragraph 1: "model" repeated, one inside \ref
//	9     blank
//	10-13 table environment
//	14    paragraph 2: no duplicates
//	15    blank
//	16-18 bibliography
func (b *Builder) WithStandardDocument() *Builder {
	return b.
		WithParagraph(
			`\section{Results} The results were clear.`,
			`Further results confirm this.`,
		).
		WithComment("results results results").
		WithEnvironment("equation", `results = results + 1`).
		WithParagraph(
			`Our model uses \ref{model} as the base`,
			`model for every \emph{model} run.`,
		).
		WithEnvironment("table", `model & model \\`, `\hline`).
		WithParagraph(`A closing remark without repetition.`).
		WithEnvironment("thebibliography", `\bibitem{a} results results`)
}

// WithMathOnly adds a paragraph entirely inside an align environment.
func (b *Builder) WithMathOnly() *Builder {
	return b.WithEnvironment("align", `x &= x + y \\`, `x &= y`)
}
