package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/s3thra/TrenchBroom/gamecfg"
	"github.com/s3thra/TrenchBroom/mapparser"
)

var rootCmd = &cobra.Command{
	Use:   "trenchbroom",
	Short: "Map file toolchain",
	Long:  "Trenchbroom parses, inspects and converts Quake-style map files across engine dialects.",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("source", "s", "", "Source dialect (Standard, Valve, Quake2, Quake2 (Valve), Hexen2, Daikatana, Quake3)")
	rootCmd.PersistentFlags().StringP("target", "t", "", "Target dialect (default: same as source)")
	rootCmd.PersistentFlags().StringP("game", "g", "", "Game profile (e.g. Quake, Half-Life, Quake 3)")
	rootCmd.PersistentFlags().String("game-dir", "", "Extra game profile directory (*.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("color", "auto", "Colorize output (auto|on|off)")

	_ = viper.BindPFlag("source", rootCmd.PersistentFlags().Lookup("source"))
	_ = viper.BindPFlag("target", rootCmd.PersistentFlags().Lookup("target"))
	_ = viper.BindPFlag("game", rootCmd.PersistentFlags().Lookup("game"))
	_ = viper.BindPFlag("game_dir", rootCmd.PersistentFlags().Lookup("game-dir"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
}

func initConfig() {
	viper.SetEnvPrefix("TRENCHBROOM")
	viper.AutomaticEnv()

	switch viper.GetString("color") {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
}

// loadRegistry builds the game profile registry, extended by --game-dir.
func loadRegistry() (*gamecfg.Registry, error) {
	registry := gamecfg.NewRegistry()
	if dir := viper.GetString("game_dir"); dir != "" {
		if err := registry.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// resolveDialects determines the source and target dialects for a document.
// Explicit flags win; otherwise the game profile's default applies, then the
// document's own Format header, and the target falls back to the source.
func resolveDialects(src []byte, profile *gamecfg.Profile) (source, target mapparser.Dialect, err error) {
	if name := viper.GetString("source"); name != "" {
		source = mapparser.ParseDialect(name)
		if source == mapparser.DialectUnknown {
			return 0, 0, fmt.Errorf("unknown source dialect %q", name)
		}
	} else if profile != nil {
		source = profile.DefaultDialect()
	} else {
		source = mapparser.DetectDialect(src)
	}
	if source == mapparser.DialectUnknown {
		return 0, 0, fmt.Errorf("cannot determine source dialect: pass --source or --game, or add a Format header comment")
	}

	target = source
	if name := viper.GetString("target"); name != "" {
		target = mapparser.ParseDialect(name)
		if target == mapparser.DialectUnknown {
			return 0, 0, fmt.Errorf("unknown target dialect %q", name)
		}
	}
	if err := gamecfg.ValidatePair(profile, source, target); err != nil {
		return 0, 0, err
	}
	return source, target, nil
}

// resolveProfile finds the game profile: the --game flag wins, otherwise the
// document's Game header comment is probed. A nil profile is fine.
func resolveProfile(registry *gamecfg.Registry, src []byte) (*gamecfg.Profile, error) {
	if name := viper.GetString("game"); name != "" {
		profile := registry.Profile(name)
		if profile == nil {
			return nil, fmt.Errorf("unknown game %q (known: %v)", name, registry.Names())
		}
		return profile, nil
	}
	return registry.DetectProfile(src), nil
}

// printNotes writes collected diagnostics to stderr with severity coloring.
func printNotes(notes []mapparser.Note) {
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow)
	infoColor := color.New(color.FgCyan)

	for _, note := range notes {
		var c *color.Color
		switch note.Severity {
		case mapparser.SeverityError:
			c = errColor
		case mapparser.SeverityWarning:
			c = warnColor
		default:
			c = infoColor
		}
		c.Fprintf(os.Stderr, "%s", note.Severity)
		fmt.Fprintf(os.Stderr, " line %d: %s\n", note.Line, note.Message)
	}
}
