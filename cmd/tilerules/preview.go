package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilerules/internal/engine"
	"github.com/vovakirdan/tilerules/internal/levels"
	"github.com/vovakirdan/tilerules/internal/platform/tui"
	"github.com/vovakirdan/tilerules/internal/world"
)

var flagCharacter string

var previewCmd = &cobra.Command{
	Use:   "preview <scenario|file> <rule-id>",
	Short: "Show a rule's before and after stages",
	Long: `Build a stage holding only a rule's template actors, then apply the
rule's actions once and show both stages side by side. The matcher's
verdict for the "before" stage is printed below, which explains why a
rule would or would not fire.

Examples:
  tilerules preview walker step-right
  tilerules preview coins collect
  tilerules preview fountain emit --character fountain`,
	Args: cobra.ExactArgs(2),
	Run:  runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&flagCharacter, "character", "", "Only search this character's rules")
}

func runPreview(cmd *cobra.Command, args []string) {
	sc, err := loadScenario(args[0])
	if err != nil {
		fail("%v", err)
	}
	rule, charID, err := findRule(sc, flagCharacter, args[1])
	if err != nil {
		fail("%v", err)
	}

	eng := newEngine()
	opts := engine.ResetOptions{
		Offset:  engine.DefaultOffset(rule),
		Globals: sc.World.Globals,
	}
	before, err := eng.ResetForRule(rule, sc.Characters, opts)
	if err != nil {
		fail("%v", err)
	}
	opts.ApplyActions = true
	after, err := eng.ResetForRule(rule, sc.Characters, opts)
	if err != nil {
		fail("%v", err)
	}

	name := rule.Name
	if name == "" {
		name = rule.ID
	}
	fmt.Printf("%s: rule %s of %s\n\n", sc.ID, name, charID)
	fmt.Println(sideBySide(
		"before", previewText(sc, before),
		fmt.Sprintf("after (%d frames)", len(after.EvaluatedTickFrames)), previewText(sc, after),
	))

	eval, err := eng.EvaluateRule(before, sc.Characters, rule.MainActorID, rule)
	if err != nil {
		fail("%v", err)
	}
	fmt.Println()
	printEvaluation(eval)
}

func previewText(sc levels.Scenario, w world.World) string {
	stage, err := w.CurrentStage()
	if err != nil {
		return ""
	}
	return tui.StageText(sc.Scenario, tui.LiveFrame(stage))
}

// sideBySide joins two titled text blocks into columns.
func sideBySide(leftTitle, left, rightTitle, right string) string {
	l := append([]string{leftTitle}, strings.Split(left, "\n")...)
	r := append([]string{rightTitle}, strings.Split(right, "\n")...)

	width := 0
	for _, line := range l {
		width = max(width, len([]rune(line)))
	}

	var b strings.Builder
	for i := 0; i < max(len(l), len(r)); i++ {
		var a, c string
		if i < len(l) {
			a = l[i]
		}
		if i < len(r) {
			c = r[i]
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a + strings.Repeat(" ", width-len([]rune(a))+4) + c)
	}
	return strings.TrimRight(b.String(), " ")
}

func printEvaluation(eval *world.RuleEvaluation) {
	if eval.Passed {
		fmt.Println("Matches its own pattern.")
	} else {
		fmt.Printf("Does not match: %s", eval.Failure)
		if eval.Message != "" {
			fmt.Printf(" (%s)", eval.Message)
		}
		fmt.Println()
	}
	for _, c := range eval.Conditions {
		mark := "x"
		if c.Passed {
			mark = "ok"
		}
		fmt.Printf("  [%s] %s: %s %s %s\n", mark, c.Key, c.Left, c.Comparator, c.Right)
	}
}
