package resolutions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/g2-project/g2/cmd/g2/internal"
	"github.com/g2-project/g2/pkg/skills"
)

func NewResolutionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolutions",
		Short: "Save or load cached merge resolutions for a skill set",
	}

	cmd.AddCommand(newSaveCommand(), newLoadCommand())
	return cmd
}

func newSaveCommand() *cobra.Command {
	var skillsCSV string
	var source string
	var skillDir string

	cmd := &cobra.Command{
		Use:     "save <file>...",
		Short:   "Cache the current content of files as the resolution for a skill set",
		Example: "g2 resolutions save --skills dark-mode,analytics package.json .env.example",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSave(skillsCSV, source, skillDir, args)
		},
	}

	cmd.Flags().StringVar(&skillsCSV, "skills", "", "comma-separated skill names the resolution applies to")
	cmd.Flags().StringVar(&source, "source", "user", "resolution source: maintainer, user, or assistant")
	cmd.Flags().StringVar(&skillDir, "skill-dir", "", "top skill package directory, used to compute the skill hash component")
	_ = cmd.MarkFlagRequired("skills")

	return cmd
}

func newLoadCommand() *cobra.Command {
	var skillsCSV string

	cmd := &cobra.Command{
		Use:     "load",
		Short:   "List the cached resolution files for a skill set",
		Example: "g2 resolutions load --skills dark-mode,analytics",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runLoad(skillsCSV)
		},
	}

	cmd.Flags().StringVar(&skillsCSV, "skills", "", "comma-separated skill names to look up")
	_ = cmd.MarkFlagRequired("skills")

	return cmd
}

func splitNames(csv string) []string {
	parts := strings.Split(csv, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

func parseSource(s string) skills.ResolutionSource {
	switch s {
	case "maintainer":
		return skills.ResolutionMaintainer
	case "assistant":
		return skills.ResolutionAssistant
	default:
		return skills.ResolutionUser
	}
}

func runSave(skillsCSV, source, skillDir string, files []string) error {
	e, err := internal.NewEngine()
	if err != nil {
		return err
	}

	names := splitNames(skillsCSV)
	if err := e.SaveResolution(names, files, parseSource(source), skillDir); err != nil {
		color.Red("✗ resolutions save failed: %s", err)
		os.Exit(1)
	}
	fmt.Printf("%s cached resolution for %s (%d files)\n", color.GreenString("✓"), strings.Join(names, "+"), len(files))
	return nil
}

func runLoad(skillsCSV string) error {
	e, err := internal.NewEngine()
	if err != nil {
		return err
	}

	names := splitNames(skillsCSV)
	files, found, err := e.LoadResolution(names)
	if err != nil {
		color.Red("✗ resolutions load failed: %s", err)
		os.Exit(1)
	}
	if !found {
		fmt.Println("no cached resolution for this skill set")
		return nil
	}

	fmt.Printf("resolution for %s:\n", strings.Join(names, "+"))
	for rel := range files {
		fmt.Printf("  %s\n", filepath.ToSlash(rel))
	}
	return nil
}
