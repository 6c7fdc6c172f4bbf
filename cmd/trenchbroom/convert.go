package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/s3thra/TrenchBroom/batch"
	"github.com/s3thra/TrenchBroom/mapcache"
	"github.com/s3thra/TrenchBroom/mapparser"
	"github.com/s3thra/TrenchBroom/mapwriter"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file.map | dir>",
	Short: "Convert a map file or directory to another dialect",
	Long:  "Convert reparses map sources under the source dialect, normalizes every face to the target dialect, and writes the result back out.",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringP("out", "o", "", "Output file or directory (default: stdout for a file, <dir>-converted for a directory)")
	convertCmd.Flags().IntP("jobs", "j", 0, "Parallel workers for directory conversion (default: GOMAXPROCS)")
	convertCmd.Flags().Bool("cache", false, "Cache parse results under the user cache directory")
	convertCmd.Flags().Int("precision", 0, "Round emitted numbers to this many decimal places (0: exact)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	jobs, _ := cmd.Flags().GetInt("jobs")
	useCache, _ := cmd.Flags().GetBool("cache")
	precision, _ := cmd.Flags().GetInt("precision")

	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	if info.IsDir() {
		return convertDir(cmd.Context(), args[0], out, jobs, useCache)
	}
	return convertFile(args[0], out, precision)
}

func convertFile(path, out string, precision int) error {
	src, err := os.ReadFile(path)
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

	status := &mapparser.CollectStatus{}
	parser, err := mapparser.NewParser(src, source, target, status)
	if err != nil {
		return err
	}
	entities, err := parser.ParseDocument()
	printNotes(status.Notes)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	game := mapparser.ReadGameComment(src)
	if profile != nil {
		game = profile.Name
	}
	writer := &mapwriter.Writer{Dialect: target, Game: game, Precision: precision}

	dst := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		dst = f
	}
	return writer.WriteEntities(dst, entities)
}

func convertDir(ctx context.Context, dir, out string, jobs int, useCache bool) error {
	if out == "" {
		out = filepath.Clean(dir) + "-converted"
	}

	registry, err := loadRegistry()
	if err != nil {
		return err
	}
	profile, err := resolveProfile(registry, nil)
	if err != nil {
		return err
	}
	source, target, err := resolveDialects(nil, profile)
	if err != nil {
		return err
	}

	var cache *mapcache.Cache
	if useCache {
		cache, err = mapcache.Open("")
		if err != nil {
			return err
		}
	}

	verbose := viper.GetBool("verbose")
	emitter := batch.NewEmitter()
	emitter.On(func(event batch.Event) {
		switch event.Type {
		case batch.EventFileWritten:
			fmt.Fprintf(os.Stderr, "[convert] %s -> %s\n", event.Data["path"], event.Data["out_path"])
		case batch.EventFileFailed:
			color.New(color.FgRed).Fprintf(os.Stderr, "[convert] FAILED %s: %s\n", event.Data["path"], event.Data["error"])
		case batch.EventFileCached:
			if verbose {
				fmt.Fprintf(os.Stderr, "[convert] cached %s\n", event.Data["path"])
			}
		case batch.EventRunCompleted:
			fmt.Fprintf(os.Stderr, "[convert] Done: %d ok, %d failed (%dms)\n",
				event.Data["ok_count"], event.Data["failure_count"], event.Data["duration_ms"])
		}
	})

	results, err := batch.ConvertDir(ctx, dir, out, batch.Options{
		Source:  source,
		Target:  target,
		Jobs:    jobs,
		Cache:   cache,
		Emitter: emitter,
	})
	if err != nil {
		return err
	}
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to convert", failed)
	}
	return nil
}
