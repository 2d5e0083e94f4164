package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/desugar"
	"github.com/devbrain/datascript/internal/diag"
	"github.com/devbrain/datascript/internal/lexer"
	"github.com/devbrain/datascript/internal/loader"
	"github.com/devbrain/datascript/internal/parser"
	"github.com/devbrain/datascript/internal/semantic"
	"github.com/spf13/cobra"
)

var checkSuppress []string

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Load, desugar, and run full semantic analysis over a schema",
	Long: `Resolve every import of the given main file, desugar inline
composite fields, and run all seven semantic analysis phases, printing
every diagnostic found.

Exits non-zero when any error-level diagnostic remains after
suppression and the --warnings-as-errors promotion.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringSliceVar(&checkSuppress, "suppress", nil, "diagnostic code to suppress (repeatable)")
}

// buildContext loads file and its full import graph, desugars every
// loaded module, and runs the standard analysis passes, returning the
// resulting Context regardless of whether it accumulated errors.
func buildContext(file string) (*semantic.Context, error) {
	set, err := loader.Load(file, searchPaths, parseModule)
	if err != nil {
		return nil, err
	}
	for _, lm := range set.AllModules() {
		desugar.Module(lm.Module)
	}

	report := diag.NewReport()
	for _, c := range checkSuppress {
		report.Suppressed[c] = true
	}
	report.WarningsAsErrors = warningsAsErrors

	ctx := semantic.NewContext(set, report)
	if targetLanguage != "" {
		ctx.TargetLanguage = targetLanguage
	}
	semantic.NewPassManager(semantic.StandardPasses()...).RunAll(ctx)
	return ctx, nil
}

func runCheck(_ *cobra.Command, args []string) error {
	file := args[0]
	ctx, err := buildContext(file)
	if err != nil {
		return err
	}

	for _, d := range ctx.Report.All() {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if ctx.Report.HasErrors() {
		return fmt.Errorf("analysis failed with %d diagnostic(s)", ctx.Report.Count())
	}
	fmt.Fprintf(os.Stdout, "%s: ok (%d diagnostic(s))\n", file, ctx.Report.Count())
	return nil
}

// parseModule adapts internal/parser to loader.ParseFunc.
func parseModule(path string, contents []byte) (*ast.Module, error) {
	report := diag.NewReport()
	l := lexer.New(path, string(contents), lexer.WithPreserveComments(true))
	p := parser.New(path, l, report)
	m := p.ParseModule()
	m.File = path
	if report.HasErrors() {
		var sb strings.Builder
		for _, d := range report.All() {
			sb.WriteString(d.String())
			sb.WriteByte('\n')
		}
		return nil, fmt.Errorf("%s", sb.String())
	}
	return m, nil
}
