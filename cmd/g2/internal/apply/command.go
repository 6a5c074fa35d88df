package apply

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/g2-project/g2/cmd/g2/internal"
	"github.com/g2-project/g2/pkg/skills"
)

func NewApplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apply <skill-dir>",
		Short:   "Apply a skill package onto the project",
		Example: "g2 apply ./skills/dark-mode",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runApply(args[0])
		},
	}

	return cmd
}

func runApply(skillDir string) error {
	e, err := internal.NewEngine()
	if err != nil {
		return err
	}

	result, err := e.Apply(skillDir)
	if err != nil {
		printApplyFailure(err)
		os.Exit(1)
	}

	fmt.Printf("%s applied %s v%s\n", color.GreenString("✓"), result.Skill, result.Version)
	for _, m := range result.MergeResults {
		fmt.Printf("  %s %s (%s)\n", mergeGlyph(m.Outcome), m.Path, m.Outcome)
	}
	if result.TestSkipped {
		fmt.Println("  (test skipped)")
	} else if result.TestPassed {
		fmt.Printf("  %s test passed\n", color.GreenString("✓"))
	}
	return nil
}

func mergeGlyph(outcome skills.MergeOutcome) string {
	if outcome == skills.MergeConflict {
		return color.RedString("✗")
	}
	return color.GreenString("✓")
}

func printApplyFailure(err error) {
	color.Red("✗ apply failed: %s", err)
	var engineErr *skills.EngineError
	if errors.As(err, &engineErr) && len(engineErr.Conflicts) > 0 {
		fmt.Println("  unresolved conflicts:")
		for _, c := range engineErr.Conflicts {
			fmt.Printf("    %s\n", c)
		}
	}
}
