package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/s3thra/TrenchBroom/mapmodel"
	"github.com/s3thra/TrenchBroom/mapparser"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.map>",
	Short: "Probe a map file's header and summarize its contents",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading map file: %w", err)
	}

	game := mapparser.ReadGameComment(src)
	format := mapparser.ReadFormatComment(src)
	fmt.Fprintf(os.Stdout, "file:    %s\n", args[0])
	fmt.Fprintf(os.Stdout, "game:    %s\n", orDash(game))
	fmt.Fprintf(os.Stdout, "format:  %s\n", orDash(format))

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

	status := &mapparser.CollectStatus{}
	parser, err := mapparser.NewParser(src, source, target, status)
	if err != nil {
		return err
	}
	entities, err := parser.ParseDocument()
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	world := mapmodel.Build(entities, mapmodel.BuildOptions{Game: game, Dialect: target})
	fmt.Fprintf(os.Stdout, "dialect: %s\n", source)
	fmt.Fprintf(os.Stdout, "entities: %d (brushes %d, faces %d, patches %d)\n",
		len(world.Entities), world.BrushCount(), world.FaceCount(), world.PatchCount())
	if world.Worldspawn() != nil {
		if message, ok := world.Worldspawn().Property(mapmodel.PropMessage); ok {
			fmt.Fprintf(os.Stdout, "message: %s\n", message)
		}
	}
	if warnings := status.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(os.Stdout, "warnings: %d\n", len(warnings))
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
