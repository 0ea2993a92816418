package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salacoste/rafctl/internal/config"
	"github.com/salacoste/rafctl/internal/render"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage global settings",
	}
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configSetDefaultCmd())
	cmd.AddCommand(configClearDefaultCmd())
	cmd.AddCommand(configPathCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the global configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(store.Root())
			if err != nil {
				return err
			}

			if format == render.FormatJSON {
				render.JSON(map[string]string{
					"default_profile":   cfg.DefaultProfile,
					"last_used_profile": cfg.LastUsedProfile,
				})
				return nil
			}

			orNone := func(s string) string {
				if s == "" {
					return "(none)"
				}
				return s
			}
			fmt.Printf("Default profile:   %s\n", orNone(cfg.DefaultProfile))
			fmt.Printf("Last used profile: %s\n", orNone(cfg.LastUsedProfile))
			return nil
		},
	}
}

func configSetDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <name>",
		Short: "Set the default profile for rafctl run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveProfile(args[0])
			if err != nil {
				return err
			}
			if err := config.SetDefaultProfile(store.Root(), name); err != nil {
				return err
			}
			render.Success(format, fmt.Sprintf("default profile set to %q", name))
			return nil
		},
	}
}

func configClearDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-default",
		Short: "Clear the default profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SetDefaultProfile(store.Root(), ""); err != nil {
				return err
			}
			render.Success(format, "default profile cleared")
			return nil
		},
	}
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == render.FormatJSON {
				render.JSON(map[string]string{"path": config.Path(store.Root())})
				return nil
			}
			fmt.Println(config.Path(store.Root()))
			return nil
		},
	}
}
