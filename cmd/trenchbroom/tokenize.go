package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/s3thra/TrenchBroom/mapparser"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize <file.map>",
	Short: "Dump the token stream of a map file",
	Long:  "Tokenize breaks a map file into its raw tokens with positions, without applying any dialect grammar.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "Output format (pretty|json)")
	tokenizeCmd.Flags().Bool("eol", false, "Emit end-of-line tokens")

	rootCmd.AddCommand(tokenizeCmd)
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	eol, _ := cmd.Flags().GetBool("eol")

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading map file: %w", err)
	}

	tok := mapparser.NewTokenizer(src)
	tok.SetSkipEol(!eol)

	var tokens []mapparser.Token
	for {
		t, err := tok.Next()
		if err != nil {
			var lexErr *mapparser.LexError
			if errors.As(err, &lexErr) {
				printNotes([]mapparser.Note{{
					Line:     lexErr.Pos.Line,
					Severity: mapparser.SeverityError,
					Message:  lexErr.Message,
				}})
			}
			return fmt.Errorf("%s: %w", args[0], err)
		}
		tokens = append(tokens, t)
		if t.Kind == mapparser.KindEOF {
			break
		}
	}

	switch format {
	case "pretty":
		for _, t := range tokens {
			fmt.Fprintf(os.Stdout, "%4d:%-3d %-8s %q\n", t.Pos.Line, t.Pos.Column, t.Kind, t.Text)
		}
		return nil
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tokens)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
