package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salacoste/rafctl/internal/dashboard"
	"github.com/salacoste/rafctl/internal/launch"
	"github.com/salacoste/rafctl/internal/render"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive profile overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == render.FormatJSON {
				return fmt.Errorf("dashboard is interactive; use rafctl status --output json instead")
			}

			action, err := dashboard.Run(store)
			if err != nil {
				return err
			}

			switch action.Kind {
			case dashboard.ActionRun:
				p, err := store.Load(action.Profile)
				if err != nil {
					return err
				}
				setTerminalTitle(p.Name, launch.Command(p.Tool))
				if _, err := launch.Run(cmd.Context(), store, p, launch.Options{Version: version}); err != nil {
					return err
				}
				recordUsage(action.Profile)
			case dashboard.ActionLogin:
				p, err := store.Load(action.Profile)
				if err != nil {
					return err
				}
				_, err = launch.Run(cmd.Context(), store, p, launch.Options{
					Args:          authArgs(p.Tool),
					Version:       version,
					SkipAuthCheck: true,
				})
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}
