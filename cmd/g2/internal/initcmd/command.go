package initcmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/g2-project/g2/cmd/g2/internal"
)

func NewInitCommand() *cobra.Command {
	var coreVersion string

	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Snapshot the current tree as the skills base and write a fresh ledger",
		Example: "g2 init --core-version 1.0.0",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(coreVersion)
		},
	}

	cmd.Flags().StringVar(&coreVersion, "core-version", "0.0.0", "core version to record for the freshly snapshotted base")

	return cmd
}

func runInit(coreVersion string) error {
	e, err := internal.NewEngine()
	if err != nil {
		return err
	}

	if e.IsInitialized() {
		color.Yellow("⊘ project already initialized")
		os.Exit(1)
	}

	if err := e.Init(coreVersion); err != nil {
		color.Red("✗ init failed: %s", err)
		os.Exit(1)
	}

	fmt.Printf("%s initialized g2 at core version %s\n", color.GreenString("✓"), coreVersion)
	return nil
}
