package customize

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/g2-project/g2/cmd/g2/internal"
)

func NewCustomizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customize",
		Short: "Capture hand-made edits to skill-managed files as a patch",
	}

	cmd.AddCommand(newStartCommand(), newCommitCommand(), newAbortCommand())
	return cmd
}

func newStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "start <description>",
		Short:   "Open a customize session over currently-applied skills' files",
		Example: "g2 customize start \"tweak onboarding copy\"",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runStart(args[0])
		},
	}
}

func newCommitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Close the session, archiving changes as a patch",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCommit()
		},
	}
}

func newAbortCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "abort",
		Short: "Discard the session, reverting touched files",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runAbort()
		},
	}
}

func runStart(description string) error {
	e, err := internal.NewEngine()
	if err != nil {
		return err
	}
	if err := e.CustomizeStart(description); err != nil {
		color.Red("✗ customize start failed: %s", err)
		os.Exit(1)
	}
	fmt.Printf("%s customize session opened\n", color.GreenString("✓"))
	return nil
}

func runCommit() error {
	e, err := internal.NewEngine()
	if err != nil {
		return err
	}
	mod, err := e.CustomizeCommit()
	if err != nil {
		color.Red("✗ customize commit failed: %s", err)
		os.Exit(1)
	}
	if mod == nil {
		fmt.Println("nothing to commit")
		return nil
	}
	fmt.Printf("%s recorded %s (%d files)\n", color.GreenString("✓"), mod.PatchFile, len(mod.FilesModified))
	return nil
}

func runAbort() error {
	e, err := internal.NewEngine()
	if err != nil {
		return err
	}
	if err := e.CustomizeAbort(); err != nil {
		color.Red("✗ customize abort failed: %s", err)
		os.Exit(1)
	}
	fmt.Printf("%s customize session discarded\n", color.GreenString("✓"))
	return nil
}
