package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tilerules/internal/platform/tui"
	"github.com/vovakirdan/tilerules/internal/storage"
)

var (
	flagRunsLimit  int
	flagRunsClear  bool
	flagRunsBrowse bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [scenario]",
	Short: "Show recorded runs",
	Long: `Display recent runs from the run log, for one scenario or for all.

Examples:
  tilerules runs
  tilerules runs walker --limit 5
  tilerules runs walker --clear
  tilerules runs --browse`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagRunsClear, "clear", false, "Delete the shown scenario's runs (all runs without a scenario)")
	runsCmd.Flags().BoolVar(&flagRunsBrowse, "browse", false, "Browse runs interactively")
}

func runRuns(cmd *cobra.Command, args []string) {
	scenarioID := ""
	if len(args) == 1 {
		scenarioID = args[0]
	}

	store, err := openStore()
	if err != nil {
		fail("opening run log: %v", err)
	}
	defer store.Close()

	if flagRunsClear {
		n, err := store.ClearRuns(scenarioID)
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("Deleted %d runs.\n", n)
		return
	}

	if flagRunsBrowse {
		width, height := 80, 24 // Defaults
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if err := tui.RunRunsBrowser(store, scenarioID, width, height); err != nil {
			fail("%v", err)
		}
		return
	}

	var runs []storage.RunRecord
	if scenarioID == "" {
		runs, err = store.RecentRuns(flagRunsLimit)
		fmt.Println("Recent runs")
	} else {
		runs, err = store.RunsForScenario(scenarioID, flagRunsLimit)
		fmt.Printf("Runs - %s\n", scenarioID)
	}
	if err != nil {
		fail("retrieving runs: %v", err)
	}
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	fmt.Printf("  %-5s  %-10s  %-6s  %-6s  %-6s  %-7s  %s\n", "Run", "Scenario", "Ticks", "Fired", "Tick", "Source", "Date")
	fmt.Printf("  %-5s  %-10s  %-6s  %-6s  %-6s  %-7s  %s\n", "---", "--------", "-----", "-----", "----", "------", "----")
	for _, r := range runs {
		fmt.Printf("  %-5d  %-10s  %-6d  %-6d  %-6d  %-7s  %s\n",
			r.ID, r.ScenarioID, r.Ticks, r.FiredTicks, r.FinalTick, r.Source, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	if scenarioID != "" {
		stats, err := store.GetScenarioStats(scenarioID)
		if err == nil && stats.Runs > 0 {
			fmt.Println()
			fmt.Printf("%d runs, %d ticks in total, longest %d, %.1f fired on average\n",
				stats.Runs, stats.TotalTicks, stats.MaxTicks, stats.AvgFired)
		}
	}
}
