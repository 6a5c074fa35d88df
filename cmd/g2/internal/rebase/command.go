package rebase

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/g2-project/g2/cmd/g2/internal"
	"github.com/g2-project/g2/pkg/skills"
)

func NewRebaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rebase [new-base-dir]",
		Short:   "Flatten applied skills into the base, or rebase them onto a new base",
		Example: "g2 rebase\ng2 rebase ../g2-core-v2",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			newBase := ""
			if len(args) == 1 {
				newBase = args[0]
			}
			return runRebase(newBase)
		},
	}

	return cmd
}

func runRebase(newBaseDir string) error {
	e, err := internal.NewEngine()
	if err != nil {
		return err
	}

	result, err := e.Rebase(newBaseDir)
	if err != nil {
		color.Red("✗ rebase failed: %s", err)
		var engineErr *skills.EngineError
		if errors.As(err, &engineErr) && len(engineErr.Conflicts) > 0 {
			fmt.Println("  unresolved conflicts (backup preserved, resolve then clear_backup or restore_backup):")
			for _, c := range engineErr.Conflicts {
				fmt.Printf("    %s\n", c)
			}
		}
		os.Exit(1)
	}

	fmt.Printf("%s rebase (%s) complete\n", color.GreenString("✓"), result.Mode)
	if result.ArchivedDiff != "" {
		fmt.Println("archived diff recorded")
	}
	return nil
}
