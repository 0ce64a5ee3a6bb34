package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tilerules/internal/config"
	"github.com/vovakirdan/tilerules/internal/engine"
	"github.com/vovakirdan/tilerules/internal/platform/tui"
)

var (
	flagSpeed       string
	flagWatchSave   bool
	flagWatchResume bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <scenario|file>",
	Short: "Watch a scenario in the viewer",
	Long: `Play a scenario in the terminal viewer. Each tick's animation frames
are replayed before the next tick.

Controls:
  Arrows/Space/Enter - Key input for the next tick
  Click              - Click input on an actor
  P                  - Pause / resume
  N                  - Single step while paused
  B                  - Untick (step back)
  ?                  - Help
  Q/Ctrl+C           - Quit

Speed options:
  slow   - 1 tick per second
  normal - 2 ticks per second
  fast   - 6 ticks per second
  custom - Rates from the config file

Examples:
  tilerules watch walker
  tilerules watch keys --speed slow
  tilerules watch coins --save`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagSpeed, "speed", "", "Speed preset: slow, normal, fast, custom")
	watchCmd.Flags().BoolVar(&flagWatchSave, "save", false, "Save the final world as a snapshot")
	watchCmd.Flags().BoolVar(&flagWatchResume, "resume", false, "Start from the saved snapshot")
}

func runWatch(cmd *cobra.Command, args []string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fail("watch needs a terminal; use 'tilerules run' for headless output")
	}

	preset := config.SpeedPreset(flagSpeed)
	if preset != "" && !preset.Valid() {
		fail("unknown speed %q", flagSpeed)
	}
	config.ApplyPreset(&cfg, preset)

	sc, err := loadScenario(args[0])
	if err != nil {
		fail("%v", err)
	}
	w, err := startWorld(sc, flagWatchResume)
	if err != nil {
		fail("%v", err)
	}

	// Warnings would tear the alternate screen; keep errors only.
	viewLogger := logger.With()
	if !flagVerbose {
		viewLogger.SetLevel(log.ErrorLevel)
	}
	eng := engine.New(
		engine.WithLogger(viewLogger),
		engine.WithHistorySize(cfg.Engine.HistorySize),
	)

	store, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open run log: %v\n", err)
		// Continue without storage - the viewer still works
		store = nil
	}

	final, runErr := tui.Run(sc, eng, w, config.NewPacing(cfg.Playback), store)

	if store != nil {
		store.Close()
	}

	if flagWatchSave {
		path, err := saveWorld(sc, final)
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("Snapshot saved to %s\n", path)
	}

	if runErr != nil {
		fail("%v", runErr)
	}
}
