package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/salacoste/rafctl/internal/launch"
	"github.com/salacoste/rafctl/internal/profile"
	"github.com/salacoste/rafctl/internal/render"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles",
	}
	cmd.AddCommand(profileAddCmd())
	cmd.AddCommand(profileListCmd())
	cmd.AddCommand(profileShowCmd())
	cmd.AddCommand(profileRemoveCmd())
	return cmd
}

func profileAddCmd() *cobra.Command {
	var toolFlag string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := profileKey(args[0])
			if err := profile.ValidateName(name); err != nil {
				return err
			}
			if store.Exists(name) {
				return fmt.Errorf("profile %q already exists", name)
			}

			tool, err := profile.ParseTool(toolFlag)
			if err != nil {
				return err
			}

			if err := store.Save(profile.New(name, tool)); err != nil {
				return err
			}
			render.Success(format, fmt.Sprintf("created profile %q for %s", name, tool))
			render.Info(format, fmt.Sprintf("authenticate with: rafctl auth login %s", name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&toolFlag, "tool", "t", "", "Tool this profile launches: claude or codex")
	cmd.MarkFlagRequired("tool")

	return cmd
}

type profileInfo struct {
	Name          string     `json:"name"`
	Tool          string     `json:"tool"`
	Authenticated bool       `json:"authenticated"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUsed      *time.Time `json:"last_used,omitempty"`
}

func profileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := store.List()
			if err != nil {
				return err
			}

			infos := make([]profileInfo, 0, len(names))
			for _, name := range names {
				p, err := store.Load(name)
				if err != nil {
					return err
				}
				infos = append(infos, profileInfo{
					Name:          p.Name,
					Tool:          string(p.Tool),
					Authenticated: launch.IsAuthenticated(store, name, p.Tool),
					CreatedAt:     p.CreatedAt,
					LastUsed:      p.LastUsed,
				})
			}

			if format == render.FormatJSON {
				render.JSON(infos)
				return nil
			}
			if len(infos) == 0 {
				render.Info(format, "no profiles; create one with: rafctl profile add <name> --tool <claude|codex>")
				return nil
			}

			now := time.Now()
			fmt.Printf("%-16s %-8s %-6s %s\n", "NAME", "TOOL", "AUTH", "LAST USED")
			for _, info := range infos {
				auth := "no"
				if info.Authenticated {
					auth = "yes"
				}
				lastUsed := "never"
				if info.LastUsed != nil {
					lastUsed = render.FormatRelativeTime(*info.LastUsed, now)
				}
				fmt.Printf("%-16s %-8s %-6s %s\n", info.Name, info.Tool, auth, lastUsed)
			}
			return nil
		},
	}
}

func profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one profile's details",
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

			info := profileInfo{
				Name:          p.Name,
				Tool:          string(p.Tool),
				Authenticated: launch.IsAuthenticated(store, name, p.Tool),
				CreatedAt:     p.CreatedAt,
				LastUsed:      p.LastUsed,
			}
			if format == render.FormatJSON {
				render.JSON(info)
				return nil
			}

			auth := "not authenticated"
			if info.Authenticated {
				auth = "authenticated"
			}
			fmt.Printf("Name:       %s\n", info.Name)
			fmt.Printf("Tool:       %s\n", info.Tool)
			fmt.Printf("Auth:       %s\n", auth)
			fmt.Printf("Created:    %s\n", info.CreatedAt.Format("2006-01-02 15:04"))
			if info.LastUsed != nil {
				fmt.Printf("Last used:  %s\n", info.LastUsed.Format("2006-01-02 15:04"))
			} else {
				fmt.Printf("Last used:  never\n")
			}
			fmt.Printf("Config dir: %s\n", store.Dir(name))
			return nil
		},
	}
}

func profileRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a profile and everything under it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolveProfile(args[0])
			if err != nil {
				return err
			}
			if !force {
				return fmt.Errorf("removing %q deletes its credentials and sessions; re-run with --force", name)
			}
			if err := store.Delete(name); err != nil {
				return err
			}
			render.Success(format, fmt.Sprintf("removed profile %q", name))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation requirement")

	return cmd
}
