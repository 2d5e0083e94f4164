package cmd

import (
	"fmt"
	"os"

	"github.com/devbrain/datascript/internal/lexer"
	"github.com/devbrain/datascript/internal/token"
	"github.com/spf13/cobra"
)

var (
	lexShowPos  bool
	lexOnlyBad  bool
)

var lexCmd = &cobra.Command{
	Use:   "lex <file>",
	Short: "Tokenize a .ds schema file",
	Long: `Tokenize a DataScript schema file and print the resulting tokens.

Useful for debugging the lexer or checking how a tricky literal or
identifier is tokenized without running the full pipeline.`,
	Args: cobra.ExactArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show each token's line:column")
	lexCmd.Flags().BoolVar(&lexOnlyBad, "only-errors", false, "show only illegal tokens")
}

func runLex(_ *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	l := lexer.New(args[0], string(src), lexer.WithPreserveComments(true))
	count, bad := 0, 0
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		isBad := tok.Type == token.ILLEGAL
		if lexOnlyBad && !isBad {
			continue
		}
		count++
		if isBad {
			bad++
		}
		line := fmt.Sprintf("%-14s %q", tok.Type, tok.Literal)
		if lexShowPos {
			line += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
		}
		fmt.Println(line)
	}
	if bad > 0 {
		return fmt.Errorf("found %d illegal token(s) out of %d", bad, count)
	}
	return nil
}
