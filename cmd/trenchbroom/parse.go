package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/s3thra/TrenchBroom/mapmodel"
	"github.com/s3thra/TrenchBroom/mapparser"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.map>",
	Short: "Parse a map file and report diagnostics",
	Long:  "Parse validates a map file against its dialect grammar and prints every warning and error with its line number.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().Bool("stats", false, "Print entity/brush/face counts")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	stats, _ := cmd.Flags().GetBool("stats")
	verbose := viper.GetBool("verbose")

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading map file: %w", err)
	}

	registry, err := loadRegistry()
	if err != nil {
		return err
	}
	profile, err := resolveProfile(registry, src)
	if err != nil {
		return err
	}
	source, target, err := resolveDialects(src, profile)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "[parse] %s: %s -> %s\n", args[0], source, target)
	}

	status := &mapparser.CollectStatus{}
	parser, err := mapparser.NewParser(src, source, target, status)
	if err != nil {
		return err
	}
	entities, err := parser.ParseDocument()
	printNotes(status.Notes)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	if stats {
		game := ""
		if profile != nil {
			game = profile.Name
		}
		world := mapmodel.Build(entities, mapmodel.BuildOptions{Game: game, Dialect: target})
		fmt.Fprintf(os.Stdout, "entities: %d\n", len(world.Entities))
		fmt.Fprintf(os.Stdout, "brushes:  %d\n", world.BrushCount())
		fmt.Fprintf(os.Stdout, "faces:    %d\n", world.FaceCount())
		fmt.Fprintf(os.Stdout, "patches:  %d\n", world.PatchCount())
	} else if verbose {
		fmt.Fprintf(os.Stderr, "[parse] OK: %d entities, %d warnings\n", len(entities), len(status.Warnings()))
	}
	return nil
}
