package status

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/g2-project/g2/cmd/g2/internal"
)

func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"s"},
		Short:   "Show g2 ledger status",
		Run: func(_ *cobra.Command, _ []string) {
			statusCmd()
		},
	}

	return cmd
}

func statusCmd() {
	e, err := internal.NewEngine()
	if err != nil {
		color.Red("✗ %s", err)
		os.Exit(1)
	}

	if !e.IsInitialized() {
		color.Yellow("⊘ project is not initialized (run `g2 init`)")
		return
	}

	st, err := e.ReadState()
	if err != nil {
		color.Red("✗ %s", err)
		os.Exit(1)
	}

	fmt.Printf("core version: %s\n", st.CoreVersion)
	fmt.Printf("skills system: %s\n", st.SkillsSystemVersion)
	if st.RebasedAt != "" {
		fmt.Printf("rebased at:    %s\n", st.RebasedAt)
	}

	fmt.Println("\napplied skills:")
	if len(st.AppliedSkills) == 0 {
		fmt.Println("  (none)")
	}
	for _, a := range st.AppliedSkills {
		fmt.Printf("  %s %s (applied %s)\n", color.GreenString("✓"), a.Name, a.AppliedAt)
	}

	if len(st.CustomModifications) > 0 {
		fmt.Println("\ncustom modifications:")
		for _, c := range st.CustomModifications {
			fmt.Printf("  %s %s (%s)\n", color.CyanString("*"), c.Description, c.AppliedAt)
		}
	}

	if st.CustomizeSession != nil {
		color.Yellow("\n⚠ customize session open since %s", st.CustomizeSession.StartedAt)
	}
}
