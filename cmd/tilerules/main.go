// tilerules runs tile-grid rule scenarios in the terminal.
//
// Usage:
//
//	tilerules list                          - List available scenarios
//	tilerules run <scenario|file>           - Run ticks headless and print the stage
//	tilerules watch <scenario|file>         - Watch a scenario in the viewer
//	tilerules preview <scenario|file> <rule> - Show a rule's before and after stages
//	tilerules runs [scenario]               - Show recorded runs
//
// Global flags:
//
//	--config <path>   - Config file (default: search ~/.tilerules/configs, ./configs)
//	--seed <value>    - Override the scenario seed
//	--db <path>       - Run log database (default from config)
//	--scenarios <dir> - Extra directory of scenario files
//	--verbose         - Debug logging
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilerules/internal/config"
	"github.com/vovakirdan/tilerules/internal/engine"
	"github.com/vovakirdan/tilerules/internal/registry"
	"github.com/vovakirdan/tilerules/internal/storage"

	// Import built-in scenarios to register them
	_ "github.com/vovakirdan/tilerules/internal/scenarios"
)

var (
	// Global flags
	flagConfig    string
	flagSeed      int64
	flagDBPath    string
	flagScenarios string
	flagVerbose   bool

	// Set up by the root command before any subcommand runs
	cfg    config.Config
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tilerules",
	Short: "Tile rules - run grid rule scenarios in your terminal",
	Long: `tilerules runs scenarios in which actors on a tile grid follow
picture rules: when the stage around an actor matches a rule's pattern,
the rule's actions move, create, delete or change actors.

Available commands:
  list     - Show all available scenarios
  run      - Run ticks headless and print the result
  watch    - Watch a scenario tick in the viewer
  preview  - Show a rule's before and after stages
  runs     - Show recorded runs

Examples:
  tilerules list
  tilerules run walker --ticks 5
  tilerules run keys --keys ArrowRight
  tilerules watch coins
  tilerules preview coins collect
  tilerules runs walker`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Seed override (0 = scenario or config seed)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run log database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagScenarios, "scenarios", "", "Directory of extra scenario files")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(runsCmd)
}

// setup loads the config, builds the logger and registers extra scenarios.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return err
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "tilerules"})
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("config: log level: %w", err)
	}
	if flagVerbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	if flagScenarios != "" {
		added, skipped, err := registry.RegisterDir(flagScenarios)
		if err != nil {
			return err
		}
		logger.Debug("scenarios registered", "dir", flagScenarios, "added", added)
		for _, id := range skipped {
			logger.Warn("scenario id already registered, file skipped", "id", id)
		}
	}
	return nil
}

// newEngine creates an engine configured from the loaded config.
func newEngine() *engine.Engine {
	return engine.New(
		engine.WithLogger(logger),
		engine.WithHistorySize(cfg.Engine.HistorySize),
	)
}

// openStore opens the run log. The --db flag wins over the config path.
func openStore() (*storage.Store, error) {
	path := flagDBPath
	if path == "" {
		path = config.ResolvePath(cfg.Storage.DBPath)
	}
	return storage.Open(path)
}

// snapshotDir returns the directory snapshots are written to.
func snapshotDir() string {
	return config.ResolvePath(cfg.Storage.SnapshotDir)
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
