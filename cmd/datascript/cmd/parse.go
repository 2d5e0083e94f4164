package cmd

import (
	"fmt"
	"os"

	"github.com/devbrain/datascript/internal/diag"
	"github.com/devbrain/datascript/internal/lexer"
	"github.com/devbrain/datascript/internal/parser"
	"github.com/spf13/cobra"
)

var parseDumpCounts bool

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a .ds schema file and report any syntax errors",
	Long: `Parse a single schema file (without resolving its imports) and
print every syntax diagnostic found. With --counts, a successful parse
also prints a per-kind declaration count.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseDumpCounts, "counts", false, "print a per-kind declaration count instead of nothing on success")
}

func runParse(_ *cobra.Command, args []string) error {
	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	report := diag.NewReport()
	l := lexer.New(file, string(src), lexer.WithPreserveComments(true))
	p := parser.New(file, l, report)
	m := p.ParseModule()
	m.File = file

	for _, d := range report.All() {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if report.HasErrors() {
		return fmt.Errorf("parsing failed with %d diagnostic(s)", report.Count())
	}

	if parseDumpCounts {
		fmt.Printf("constants=%d subtypes=%d constraints=%d typealiases=%d enums=%d structs=%d unions=%d choices=%d\n",
			len(m.Constants), len(m.Subtypes), len(m.Constraints), len(m.TypeAliases),
			len(m.Enums), len(m.Structs), len(m.Unions), len(m.Choices))
	}
	return nil
}
