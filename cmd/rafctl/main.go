package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salacoste/rafctl/internal/profile"
	"github.com/salacoste/rafctl/internal/render"
)

const version = "0.4.0"

var (
	outputFlag string
	format     render.Format
	store      *profile.Store
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "rafctl",
		Short:   "Manage isolated coding-agent profiles",
		Long:    "rafctl keeps separate profiles for claude and codex, each with its own credentials, settings, and session history.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(outputFlag)
			if err != nil {
				return err
			}
			format = render.Resolve(f)
			store = profile.NewStore(profile.DefaultRoot())
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "human", "Output format: human, plain, or json")

	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(analyticsCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(dashboardCmd())

	if err := rootCmd.Execute(); err != nil {
		render.Error(format, err.Error())
		os.Exit(1)
	}
}

// resolveProfile maps a possibly-abbreviated name to an existing profile,
// suggesting a prefix match when the exact name is unknown.
func resolveProfile(name string) (string, error) {
	lower := profileKey(name)
	if store.Exists(lower) {
		return lower, nil
	}
	names, err := store.List()
	if err != nil {
		return "", err
	}
	if match, ok := profile.FindSimilar(name, names); ok {
		return match, nil
	}
	return "", fmt.Errorf("profile %q not found", name)
}

// Profile directories are lowercase; accept any case on input.
func profileKey(name string) string {
	return strings.ToLower(name)
}
