// g2 - layered skill package manager for project codebases
// Inspired by and based on picoclaw: https://github.com/sipeed/picoclaw
// License: MIT
//
// Copyright (c) 2026 g2 contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/g2-project/g2/cmd/g2/internal"
	"github.com/g2-project/g2/cmd/g2/internal/apply"
	"github.com/g2-project/g2/cmd/g2/internal/customize"
	"github.com/g2-project/g2/cmd/g2/internal/initcmd"
	"github.com/g2-project/g2/cmd/g2/internal/migrate"
	"github.com/g2-project/g2/cmd/g2/internal/rebase"
	"github.com/g2-project/g2/cmd/g2/internal/resolutions"
	"github.com/g2-project/g2/cmd/g2/internal/status"
	"github.com/g2-project/g2/cmd/g2/internal/uninstall"
	"github.com/g2-project/g2/cmd/g2/internal/update"
	"github.com/g2-project/g2/cmd/g2/internal/version"
)

func NewG2Command() *cobra.Command {
	short := fmt.Sprintf("%s g2 - skill package manager v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "g2",
		Short:   short,
		Example: "g2 init\ng2 apply ./skills/dark-mode",
	}

	cmd.AddCommand(
		initcmd.NewInitCommand(),
		migrate.NewMigrateCommand(),
		apply.NewApplyCommand(),
		uninstall.NewUninstallCommand(),
		update.NewUpdateCommand(),
		rebase.NewRebaseCommand(),
		customize.NewCustomizeCommand(),
		resolutions.NewResolutionsCommand(),
		status.NewStatusCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewG2Command()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
