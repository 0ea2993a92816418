package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/salacoste/rafctl/internal/launch"
	"github.com/salacoste/rafctl/internal/profile"
	"github.com/salacoste/rafctl/internal/render"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage profile authentication",
	}
	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authLogoutCmd())
	return cmd
}

// authArgs returns the tool's login subcommand. Claude has none; it
// authenticates interactively on first run.
func authArgs(tool profile.Tool) []string {
	if tool == profile.ToolCodex {
		return []string{"login"}
	}
	return nil
}

func authLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <name>",
		Short: "Authenticate a profile's tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveProfile(args[0])
			if err != nil {
				return err
			}
			p, err := store.Load(name)
			if err != nil {
				return err
			}

			if len(authArgs(p.Tool)) == 0 {
				render.Info(format, fmt.Sprintf("%s authenticates automatically on first run; complete the login in the browser", p.Tool))
			} else {
				render.Info(format, fmt.Sprintf("opening browser for %s authorization...", p.Tool))
			}

			_, err = launch.Run(cmd.Context(), store, p, launch.Options{
				Args:          authArgs(p.Tool),
				Version:       version,
				SkipAuthCheck: true,
			})
			if err != nil {
				return err
			}

			if launch.IsAuthenticated(store, name, p.Tool) {
				render.Success(format, "authenticated")
			} else {
				render.Error(format, "authentication failed or was cancelled")
			}
			return nil
		},
	}
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout <name>",
		Short: "Remove a profile's stored credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveProfile(args[0])
			if err != nil {
				return err
			}
			p, err := store.Load(name)
			if err != nil {
				return err
			}

			cred := launch.CredentialPath(store, name, p.Tool)
			if err := os.Remove(cred); err != nil {
				if os.IsNotExist(err) {
					render.Info(format, fmt.Sprintf("profile %q has no stored credentials", name))
					return nil
				}
				return fmt.Errorf("remove credentials: %w", err)
			}
			render.Success(format, fmt.Sprintf("logged out %q", name))
			return nil
		},
	}
}
