package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salacoste/rafctl/internal/config"
	"github.com/salacoste/rafctl/internal/render"
	"github.com/salacoste/rafctl/internal/stats"
)

func analyticsCmd() *cobra.Command {
	var (
		profileFlag string
		days        int
		all         bool
		cost        bool
	)

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show usage analytics from the tool's stats cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				days = 0
			}
			cache, label, err := loadAnalyticsCache(profileFlag)
			if err != nil {
				return err
			}
			if cache.IsEmpty() {
				render.Info(format, "no usage data yet")
				if format == render.FormatJSON {
					render.JSON(map[string]any{"profile": label, "days": days, "empty": true})
				}
				return nil
			}

			if cost {
				return showCost(cache, label, days)
			}
			return showActivity(cache, label, days)
		},
	}

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Read this profile's stats instead of the global cache")
	cmd.Flags().IntVarP(&days, "days", "d", 7, "Days of history to include")
	cmd.Flags().BoolVar(&all, "all", false, "Include all recorded history")
	cmd.Flags().BoolVar(&cost, "cost", false, "Estimate spend per model instead of listing activity")

	return cmd
}

// loadAnalyticsCache picks the stats source: an explicit profile, else the
// default profile, else the global cache.
func loadAnalyticsCache(profileFlag string) (*stats.Cache, string, error) {
	name := profileFlag
	if name == "" {
		def, err := config.DefaultProfile(store.Root())
		if err != nil {
			return nil, "", err
		}
		// A stale default (profile since removed) degrades to global.
		if def == "" || !store.Exists(def) {
			global, err := stats.GlobalPath()
			if err != nil {
				return nil, "", err
			}
			return stats.Load(global), "", nil
		}
		name = def
	}

	resolved, err := resolveProfile(name)
	if err != nil {
		return nil, "", err
	}
	p, err := store.Load(resolved)
	if err != nil {
		return nil, "", err
	}
	return stats.LoadForProfile(store, resolved, p.Tool), resolved, nil
}

func showActivity(cache *stats.Cache, label string, days int) error {
	activity := cache.RecentActivity(days)

	if format == render.FormatJSON {
		type dayJSON struct {
			Date     string `json:"date"`
			Messages uint64 `json:"messages"`
			Sessions uint64 `json:"sessions"`
			Tools    uint64 `json:"tools"`
			Tokens   uint64 `json:"tokens"`
		}
		out := struct {
			Profile string            `json:"profile,omitempty"`
			Days    int               `json:"days"`
			Daily   []dayJSON         `json:"daily_activity"`
			Models  map[string]uint64 `json:"tokens_by_model"`
			Total   uint64            `json:"total_tokens"`
		}{
			Profile: label,
			Days:    days,
			Models:  cache.TokensByModel(days),
			Total:   cache.TotalTokens(days),
		}
		for _, day := range activity {
			out.Daily = append(out.Daily, dayJSON{
				Date:     day.Date,
				Messages: day.MessageCount,
				Sessions: day.SessionCount,
				Tools:    day.ToolCallCount,
				Tokens:   cache.TokensForDate(day.Date),
			})
		}
		render.JSON(out)
		return nil
	}

	if label != "" {
		fmt.Printf("Profile: %s\n\n", label)
	}
	fmt.Printf("%-12s %8s %8s %8s %8s\n", "DATE", "MSGS", "SESSIONS", "TOOLS", "TOKENS")

	var maxTokens uint64
	for _, day := range activity {
		if n := cache.TokensForDate(day.Date); n > maxTokens {
			maxTokens = n
		}
	}
	for _, day := range activity {
		tokens := cache.TokensForDate(day.Date)
		line := fmt.Sprintf("%-12s %8d %8d %8d %8s", day.Date,
			day.MessageCount, day.SessionCount, day.ToolCallCount, render.FormatTokens(tokens))
		if format == render.FormatHuman && maxTokens > 0 {
			line += "  " + render.ProgressBar(float64(tokens)/float64(maxTokens)*100, 12)
		}
		fmt.Println(line)
	}

	fmt.Printf("\nTotal: %s tokens %s\n", render.FormatTokens(cache.TotalTokens(days)), spanLabel(days))
	return nil
}

func spanLabel(days int) string {
	if days <= 0 {
		return "all time"
	}
	return fmt.Sprintf("over %d days", days)
}

func showCost(cache *stats.Cache, label string, days int) error {
	costs := stats.EstimateCosts(cache.TokensByModel(days))
	total := stats.TotalEstimated(costs)

	if format == render.FormatJSON {
		type costJSON struct {
			Model       string  `json:"model"`
			InputTokens uint64  `json:"input_tokens"`
			InputCost   float64 `json:"input_cost"`
			OutputCost  float64 `json:"output_cost_estimated"`
			TotalCost   float64 `json:"total_cost_estimated"`
		}
		out := struct {
			Profile string     `json:"profile,omitempty"`
			Days    int        `json:"days"`
			Models  []costJSON `json:"models"`
			Total   float64    `json:"total_estimated"`
		}{Profile: label, Days: days, Total: total}
		for _, c := range costs {
			out.Models = append(out.Models, costJSON{
				Model:       c.Model,
				InputTokens: c.InputTokens,
				InputCost:   c.InputCost,
				OutputCost:  c.OutputCost,
				TotalCost:   c.TotalCost,
			})
		}
		render.JSON(out)
		return nil
	}

	if label != "" {
		fmt.Printf("Profile: %s\n\n", label)
	}
	fmt.Printf("%-24s %10s %10s\n", "MODEL", "TOKENS", "EST COST")
	for _, c := range costs {
		fmt.Printf("%-24s %10s %9.2f$\n", render.ShortenModel(c.Model),
			render.FormatTokens(c.InputTokens), c.TotalCost)
	}
	fmt.Printf("\nEstimated total %s: $%.2f\n", spanLabel(days), total)
	render.Info(format, "output token volume is estimated at 3x input; treat costs as a rough guide")
	return nil
}
