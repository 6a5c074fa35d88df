package uninstall

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/g2-project/g2/cmd/g2/internal"
	"github.com/g2-project/g2/pkg/skills"
)

func NewUninstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "uninstall <skill-name>",
		Short:   "Remove an applied skill by replaying the rest from base",
		Example: "g2 uninstall dark-mode",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runUninstall(args[0])
		},
	}

	return cmd
}

func runUninstall(name string) error {
	e, err := internal.NewEngine()
	if err != nil {
		return err
	}

	result, err := e.Uninstall(name)
	if err != nil {
		color.Red("✗ uninstall failed: %s", err)
		var engineErr *skills.EngineError
		if errors.As(err, &engineErr) && len(engineErr.Conflicts) > 0 {
			fmt.Println("  unresolved conflicts (backup preserved, resolve then clear_backup or restore_backup):")
			for _, c := range engineErr.Conflicts {
				fmt.Printf("    %s\n", c)
			}
		}
		os.Exit(1)
	}

	fmt.Printf("%s uninstalled %s, replayed %d remaining skill(s)\n", color.GreenString("✓"), result.Skill, len(result.Replayed))
	if !result.TestPassed {
		color.Yellow("⚠ no test was run to verify the remaining tree")
	}
	return nil
}
