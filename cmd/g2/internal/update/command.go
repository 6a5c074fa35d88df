package update

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/g2-project/g2/cmd/g2/internal"
	"github.com/g2-project/g2/pkg/skills"
)

func NewUpdateCommand() *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:     "update <new-core-dir>",
		Short:   "Adopt a new core distribution as the project's base",
		Example: "g2 update --preview ../g2-core-v2",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if preview {
				return runPreview(args[0])
			}
			return runUpdate(args[0])
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "show what would change without applying it")

	return cmd
}

func runPreview(newCoreDir string) error {
	e, err := internal.NewEngine()
	if err != nil {
		return err
	}

	preview, err := e.PreviewUpdate(newCoreDir)
	if err != nil {
		color.Red("✗ preview failed: %s", err)
		os.Exit(1)
	}

	fmt.Printf("new core version: %s\n", preview.NewCoreVersion)
	fmt.Printf("changed files (%d):\n", len(preview.ChangedFiles))
	for _, f := range preview.ChangedFiles {
		fmt.Printf("  %s\n", f)
	}
	if len(preview.PathRemapEntries) > 0 {
		fmt.Println("path remaps:")
		for from, to := range preview.PathRemapEntries {
			fmt.Printf("  %s -> %s\n", from, to)
		}
	}
	return nil
}

func runUpdate(newCoreDir string) error {
	e, err := internal.NewEngine()
	if err != nil {
		return err
	}

	result, err := e.ApplyUpdate(newCoreDir)
	if err != nil {
		color.Red("✗ update failed: %s", err)
		var engineErr *skills.EngineError
		if errors.As(err, &engineErr) && len(engineErr.Conflicts) > 0 {
			fmt.Println("  unresolved conflicts (backup preserved, resolve then clear_backup or restore_backup):")
			for _, c := range engineErr.Conflicts {
				fmt.Printf("    %s\n", c)
			}
		}
		os.Exit(1)
	}

	fmt.Printf("%s updated core %s -> %s\n", color.GreenString("✓"), result.PreviousCoreVersion, result.NewCoreVersion)
	return nil
}
