package migrate

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/g2-project/g2/cmd/g2/internal"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "migrate <fresh-core-dir>",
		Short:   "Adopt g2 on a project with pre-existing local customizations",
		Example: "g2 migrate ../g2-core-template",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runMigrate(args[0])
		},
	}

	return cmd
}

func runMigrate(freshCoreDir string) error {
	e, err := internal.NewEngine()
	if err != nil {
		return err
	}

	if e.IsInitialized() {
		color.Yellow("⊘ project already initialized; migrate is for first adoption only")
		os.Exit(1)
	}

	mod, err := e.Migrate(freshCoreDir)
	if err != nil {
		color.Red("✗ migrate failed: %s", err)
		os.Exit(1)
	}

	if mod == nil {
		fmt.Printf("%s nothing to migrate: project already matches the core template\n", color.GreenString("✓"))
		return nil
	}

	fmt.Printf("%s recorded pre-existing customizations across %d file(s): %s\n",
		color.GreenString("✓"), len(mod.FilesModified), mod.PatchFile)
	return nil
}
