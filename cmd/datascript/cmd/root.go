package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	targetLanguage string
	searchPaths    []string
	warningsAsErrors bool
)

var rootCmd = &cobra.Command{
	Use:   "datascript",
	Short: "DataScript binary-format schema compiler",
	Long: `datascript analyzes .ds schema files describing binary record
formats and emits an intermediate representation a
renderer can turn into a parser/reader for a target language.

A schema declares structs, unions, and choices over fixed- and
variable-width primitives, with constants, subtypes, and enums shared
across files via a package/import system.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&targetLanguage, "target", "", "target language, checked against the registered keyword sets (e.g. \"go\", \"python\")")
	rootCmd.PersistentFlags().StringSliceVarP(&searchPaths, "include", "I", nil, "additional import search root (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&warningsAsErrors, "warnings-as-errors", false, "promote every warning to an error")
}
