package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/salacoste/rafctl/internal/config"
	"github.com/salacoste/rafctl/internal/launch"
	"github.com/salacoste/rafctl/internal/render"
	"github.com/salacoste/rafctl/internal/stats"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [profile]",
		Short: "Show profile status",
		Long:  "With no arguments, summarizes every profile. With a profile name, shows that profile's full status including recent usage.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showSingleStatus(args[0])
			}
			return showAllStatus()
		},
	}
}

func showSingleStatus(requested string) error {
	name, err := resolveProfile(requested)
	if err != nil {
		return err
	}
	p, err := store.Load(name)
	if err != nil {
		return err
	}
	cfg, err := config.Load(store.Root())
	if err != nil {
		return err
	}

	authenticated := launch.IsAuthenticated(store, name, p.Tool)
	cache := stats.LoadForProfile(store, name, p.Tool)

	if format == render.FormatJSON {
		render.JSON(map[string]any{
			"name":          p.Name,
			"tool":          string(p.Tool),
			"authenticated": authenticated,
			"default":       cfg.DefaultProfile == name,
			"last_used":     p.LastUsed,
			"created_at":    p.CreatedAt,
			"tokens_7d":     cache.TotalTokens(7),
		})
		return nil
	}

	fmt.Printf("Profile: %s\n", p.Name)
	if cfg.DefaultProfile == name {
		fmt.Println("  Status:     default profile")
	} else if cfg.LastUsedProfile == name {
		fmt.Println("  Status:     last used")
	}
	fmt.Printf("  Tool:       %s\n", p.Tool)

	if authenticated {
		fmt.Println("  Auth:       authenticated")
	} else {
		fmt.Println("  Auth:       not authenticated")
	}

	fmt.Printf("  Created:    %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))

	lastUsed := "never"
	if p.LastUsed != nil {
		lastUsed = render.FormatRelativeTime(*p.LastUsed, time.Now())
	}
	fmt.Printf("  Last used:  %s\n", lastUsed)

	if !cache.IsEmpty() {
		fmt.Printf("  7d tokens:  %s\n", render.FormatTokens(cache.TotalTokens(7)))
	}
	if !authenticated {
		fmt.Println()
		fmt.Println(render.Dim(format, fmt.Sprintf("  Run: rafctl auth login %s", name)))
	}
	return nil
}

func showAllStatus() error {
	names, err := store.List()
	if err != nil {
		return err
	}
	cfg, err := config.Load(store.Root())
	if err != nil {
		return err
	}

	type statusJSON struct {
		Name          string `json:"name"`
		Tool          string `json:"tool"`
		Authenticated bool   `json:"authenticated"`
		Default       bool   `json:"default"`
	}
	rows := make([]statusJSON, 0, len(names))
	for _, name := range names {
		p, err := store.Load(name)
		if err != nil {
			continue
		}
		rows = append(rows, statusJSON{
			Name:          p.Name,
			Tool:          string(p.Tool),
			Authenticated: launch.IsAuthenticated(store, name, p.Tool),
			Default:       cfg.DefaultProfile == name,
		})
	}

	if format == render.FormatJSON {
		render.JSON(rows)
		return nil
	}
	if len(rows) == 0 {
		render.Info(format, "no profiles; create one with: rafctl profile add <name> --tool <claude|codex>")
		return nil
	}

	for _, row := range rows {
		marker := " "
		if row.Default {
			marker = "*"
		}
		auth := "not authenticated"
		if row.Authenticated {
			auth = "authenticated"
		}
		fmt.Printf("%s %-16s %-8s %s\n", marker, row.Name, row.Tool, auth)
	}
	return nil
}
