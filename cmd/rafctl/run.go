package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/salacoste/rafctl/internal/config"
	"github.com/salacoste/rafctl/internal/launch"
	"github.com/salacoste/rafctl/internal/render"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [profile] [-- tool-args...]",
		Short: "Launch a profile's tool",
		Long:  "Launches the profile's coding agent with its isolated config directory. Arguments after -- are passed to the tool unchanged.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var requested string
			toolArgs := args
			if len(args) > 0 && cmd.ArgsLenAtDash() != 0 {
				requested = args[0]
				toolArgs = args[1:]
			}

			name, err := resolveRunProfile(requested)
			if err != nil {
				return err
			}
			p, err := store.Load(name)
			if err != nil {
				return err
			}

			setTerminalTitle(p.Name, launch.Command(p.Tool))

			code, err := launch.Run(cmd.Context(), store, p, launch.Options{
				Args:    toolArgs,
				Version: version,
			})
			if err != nil {
				return err
			}

			recordUsage(name)

			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}
	return cmd
}

// resolveRunProfile picks the profile to launch: the explicit argument,
// else the configured default, else an error listing what exists.
func resolveRunProfile(requested string) (string, error) {
	if requested != "" {
		return resolveProfile(requested)
	}

	def, err := config.DefaultProfile(store.Root())
	if err != nil {
		return "", err
	}
	if def != "" && store.Exists(def) {
		return def, nil
	}

	names, err := store.List()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no profiles; create one with: rafctl profile add <name> --tool <claude|codex>")
	}
	return "", fmt.Errorf("no default profile; name one of %v or set a default with: rafctl config set-default <name>", names)
}

// recordUsage stamps last-used on the profile and global config. Failures
// here never fail the run; the tool already did its work.
func recordUsage(name string) {
	p, err := store.Load(name)
	if err == nil {
		now := time.Now().UTC()
		p.LastUsed = &now
		if err := store.Save(p); err != nil {
			render.Error(format, fmt.Sprintf("update profile: %v", err))
		}
	}
	if err := config.SetLastUsed(store.Root(), name); err != nil {
		render.Error(format, fmt.Sprintf("update last-used: %v", err))
	}
}

// setTerminalTitle tags the terminal with the active profile so parallel
// agent windows are tellable apart.
func setTerminalTitle(profileName, toolName string) {
	fmt.Printf("\x1b]0;[rafctl:%s] %s\x07", profileName, toolName)
}
