package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/texdup/internal/analyzer"
	"github.com/zjrosen/texdup/internal/config"
	"github.com/zjrosen/texdup/internal/detect"
	"github.com/zjrosen/texdup/internal/document"
	"github.com/zjrosen/texdup/internal/log"
	"github.com/zjrosen/texdup/internal/render"
)

// ErrDuplicatesFound makes check exit non-zero without printing an error.
var ErrDuplicatesFound = errors.New("duplicates found")

// outputOptions are shared by check and watch.
type outputOptions struct {
	format       string
	color        string
	scope        string
	documentType string
}

func (o *outputOptions) register(c *cobra.Command) {
	c.Flags().StringVarP(&o.format, "format", "f", "text", "output format: text or json")
	c.Flags().StringVar(&o.color, "color", "auto", "colorize text output: auto, always or never")
	c.Flags().StringVar(&o.scope, "scope", "", "count repeats per paragraph or line (default from config)")
	c.Flags().StringVarP(&o.documentType, "type", "t", "", "document type: auto, latex or plain (default from config)")
}

// resolved is outputOptions merged with the loaded config.
type resolved struct {
	format  render.Format
	color   render.ColorMode
	dialect document.Dialect
}

func (o outputOptions) resolve(c config.Config) (resolved, error) {
	var r resolved
	var err error
	if r.format, err = render.ParseFormat(o.format); err != nil {
		return r, err
	}
	if r.color, err = render.ParseColorMode(o.color); err != nil {
		return r, err
	}
	if o.scope != "" {
		if _, err = detect.ParseScope(o.scope); err != nil {
			return r, err
		}
	}
	r.dialect = c.Dialect()
	if o.documentType != "" {
		if r.dialect, err = document.ParseDialect(o.documentType); err != nil {
			return r, err
		}
	}
	return r, nil
}

var checkOpts outputOptions

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Check documents once and report repeated words",
	Long: `Check each document once and print the repeated words it contains.
Use "-" to read a document from standard input.

The exit status is 1 when any duplicate was found.

Example:
  texdup check paper.tex
  texdup check --format json chapters/*.tex
  cat notes.txt | texdup check --type plain -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkOpts.register(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cleanup, err := initLogging("check")
	if err != nil {
		return err
	}
	defer cleanup()

	return check(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args, checkOpts)
}

func check(ctx context.Context, stdin io.Reader, out io.Writer, paths []string, opts outputOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := opts.resolve(cfg)
	if err != nil {
		return err
	}

	provider, shutdown, err := newTracing()
	if err != nil {
		return err
	}
	defer shutdown()

	renderer, err := render.New(r.format, out, r.color)
	if err != nil {
		return err
	}

	global, project := tierPaths()
	a := analyzer.New(analyzer.Config{
		Registry: detect.NewRegistry(newDetector(cfg, opts, global, project)),
		Tracer:   provider.Tracer(),
		Flags:    newFlags(),
	})

	found := 0
	for _, p := range paths {
		doc, name, err := openDocument(stdin, p, r.dialect)
		if err != nil {
			return err
		}
		report := a.Analyze(ctx, doc.ID(), doc)
		a.Close(doc.ID())
		if err := renderer.Render(render.Summary{Path: name, Lines: document.Snapshot(doc), Report: report}); err != nil {
			return err
		}
		found += len(report.Results)
	}

	log.Info(log.CatAnalyze, "check finished", "documents", len(paths), "duplicates", found)
	if found > 0 {
		return ErrDuplicatesFound
	}
	return nil
}

// openDocument loads path, or stdin for "-". Stdin defaults to LaTeX.
func openDocument(stdin io.Reader, path string, dialect document.Dialect) (*document.Lines, string, error) {
	if path != "-" {
		doc, err := document.Load(path, dialect)
		if err != nil {
			return nil, "", err
		}
		return doc, path, nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, "", fmt.Errorf("reading stdin: %w", err)
	}
	if dialect == "" {
		dialect = document.DialectLaTeX
	}
	return document.Untitled(string(data), dialect), "<stdin>", nil
}
