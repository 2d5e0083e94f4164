package cmd

import (
	"fmt"
	"os"

	"github.com/devbrain/datascript/internal/ir"
	"github.com/spf13/cobra"
)

var irOutFile string

var irCmd = &cobra.Command{
	Use:   "ir <file>",
	Short: "Analyze a schema and emit its IR bundle as JSON",
	Long: `Run the full analysis pipeline (same as "check"), then build the
renderer-facing IR bundle and print it as JSON (or write it to --output).
The bundle is emitted even when analysis reports errors; the command then
exits with an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runIR,
}

func init() {
	rootCmd.AddCommand(irCmd)
	irCmd.Flags().StringVarP(&irOutFile, "output", "o", "", "write the bundle here instead of stdout")
}

// runIR always builds and emits whatever bundle the analysis produced,
// even one poisoned by prior errors: the diagnostics printed alongside
// it are what tell a caller whether to trust it.
func runIR(_ *cobra.Command, args []string) error {
	file := args[0]
	ctx, err := buildContext(file)
	if err != nil {
		return err
	}
	for _, d := range ctx.Report.All() {
		fmt.Fprintln(os.Stderr, d.String())
	}

	bundle, err := ir.Build(ctx)
	if err != nil {
		return fmt.Errorf("building IR: %w", err)
	}
	raw, err := ir.MarshalIR(bundle)
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}

	if irOutFile == "" {
		if _, err := os.Stdout.Write(append(raw, '\n')); err != nil {
			return err
		}
	} else if err := os.WriteFile(irOutFile, raw, 0o644); err != nil {
		return err
	}

	if ctx.Report.HasErrors() {
		return fmt.Errorf("analysis failed with %d diagnostic(s); bundle may be partial", ctx.Report.Count())
	}
	return nil
}
