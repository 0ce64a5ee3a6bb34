package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/engine"
	"github.com/vovakirdan/tilerules/internal/platform/tui"
	"github.com/vovakirdan/tilerules/internal/storage"
)

var (
	flagTicks    int
	flagKeys     []string
	flagClicks   []string
	flagTrace    bool
	flagSave     bool
	flagResume   bool
	flagNoRecord bool
)

var runCmd = &cobra.Command{
	Use:   "run <scenario|file>",
	Short: "Run ticks headless and print the stage",
	Long: `Run a scenario for a number of ticks without the viewer, then print
the stage, the globals and how many ticks fired a rule.

Keys and clicks given with --keys and --click are held on every tick.
Key codes: ArrowLeft, ArrowRight, ArrowUp, ArrowDown, Space, Enter.

With --save the final world is written to the snapshot directory, and
--resume continues from that snapshot instead of the initial world.

Examples:
  tilerules run walker --ticks 5
  tilerules run keys --keys Space,ArrowRight --ticks 1
  tilerules run keys --click p1
  tilerules run coins --ticks 3 --save
  tilerules run coins --ticks 3 --resume --trace
  tilerules run ./my-scenario.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().IntVarP(&flagTicks, "ticks", "n", 10, "Number of ticks to run")
	runCmd.Flags().StringSliceVar(&flagKeys, "keys", nil, "Key codes held on every tick")
	runCmd.Flags().StringSliceVar(&flagClicks, "click", nil, "Actor ids clicked on every tick")
	runCmd.Flags().BoolVar(&flagTrace, "trace", false, "Print a line per tick")
	runCmd.Flags().BoolVar(&flagSave, "save", false, "Save the final world as a snapshot")
	runCmd.Flags().BoolVar(&flagResume, "resume", false, "Start from the saved snapshot")
	runCmd.Flags().BoolVar(&flagNoRecord, "no-record", false, "Do not record the run in the database")
}

func runRun(cmd *cobra.Command, args []string) {
	if flagTicks < 0 {
		fail("--ticks must not be negative")
	}

	sc, err := loadScenario(args[0])
	if err != nil {
		fail("%v", err)
	}
	w, err := startWorld(sc, flagResume)
	if err != nil {
		fail("%v", err)
	}

	input := core.NewInput()
	for _, k := range flagKeys {
		input.PressKey(strings.TrimSpace(k))
	}
	for _, id := range flagClicks {
		input.Click(strings.TrimSpace(id))
	}

	eng := newEngine()
	startTick := w.Tick
	fired, frames := 0, 0
	for i := 0; i < flagTicks; i++ {
		w.Input = input.Clone()
		next, err := eng.Tick(w, sc.Characters)
		if err != nil {
			fail("tick %d: %v", w.Tick, err)
		}
		w = next
		n := len(w.EvaluatedTickFrames)
		frames += n
		if engine.Fired(w) {
			fired++
		}
		if flagTrace {
			stage, _ := w.CurrentStage()
			fmt.Printf("tick %d: fired=%v frames=%d\n", w.Tick-1, engine.Fired(w), n)
			fmt.Println(indent(tui.StageText(sc.Scenario, tui.LiveFrame(stage))))
		}
	}

	stage, err := w.CurrentStage()
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("%s (%s) seed %d\n", sc.Name, sc.ID, w.Seed)
	fmt.Printf("tick %d -> %d: %d of %d ticks fired, %d frames\n", startTick, w.Tick, fired, flagTicks, frames)
	fmt.Println()
	fmt.Println(tui.StageText(sc.Scenario, tui.LiveFrame(stage)))
	fmt.Println()
	for _, line := range tui.FormatGlobals(w) {
		fmt.Println(line)
	}

	if flagSave {
		path, err := saveWorld(sc, w)
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("\nSnapshot saved to %s\n", path)
	}

	if flagNoRecord || flagTicks == 0 {
		return
	}
	store, err := openStore()
	if err != nil {
		logger.Warn("could not open run log", "err", err)
		return
	}
	defer store.Close()
	if _, err := store.SaveRun(storage.NewRunRecord(sc.ID, w, flagTicks, fired, "run")); err != nil {
		logger.Warn("run not recorded", "err", err)
	}
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
