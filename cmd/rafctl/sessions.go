package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/salacoste/rafctl/internal/render"
	"github.com/salacoste/rafctl/internal/transcript"
)

func sessionsCmd() *cobra.Command {
	var (
		profileFlag string
		limit       int
		detail      bool
	)

	var today bool

	cmd := &cobra.Command{
		Use:   "sessions [session-id]",
		Short: "List recent coding sessions",
		Long:  "Reads session transcripts and summarizes each one: working directory, branch, model, message and tool counts. With a session id (or id prefix), shows that session's full detail. With --profile, reads that profile's isolated transcripts instead of the global ones.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := transcriptsRoot(profileFlag)
			if err != nil {
				return err
			}

			paths := transcript.ListAllSessions(root)
			if len(paths) == 0 {
				render.Info(format, "no sessions found")
				if format == render.FormatJSON {
					render.JSON([]sessionJSON{})
				}
				return nil
			}

			if len(args) == 1 {
				return showOneSession(paths, args[0])
			}

			var details []*transcript.SessionDetail
			for _, path := range paths {
				d, err := transcript.ParseFile(path)
				if err != nil || d == nil {
					continue
				}
				if today && !startedToday(d.Summary.StartedAt) {
					continue
				}
				details = append(details, d)
				if limit > 0 && len(details) == limit {
					break
				}
			}

			if format == render.FormatJSON {
				render.JSON(sessionsToJSON(details, detail))
				return nil
			}
			if len(details) == 0 {
				render.Info(format, "no sessions found")
				return nil
			}
			printSessions(details, detail)
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Read sessions from this profile's transcripts")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum sessions to show (0 for all)")
	cmd.Flags().BoolVar(&detail, "detail", false, "Include per-tool breakdown and sub-agent dispatches")
	cmd.Flags().BoolVar(&today, "today", false, "Only sessions that started today")

	return cmd
}

// showOneSession finds a session by id or id prefix and prints its full
// detail. File stems are session ids, so the match runs on filenames
// without parsing every transcript.
func showOneSession(paths []string, id string) error {
	var path string
	for _, p := range paths {
		stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		if stem == id || strings.HasPrefix(stem, id) {
			path = p
			break
		}
	}
	if path == "" {
		return fmt.Errorf("session %q not found", id)
	}

	d, err := transcript.ParseFile(path)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("session file %s holds no usable session", path)
	}

	if format == render.FormatJSON {
		render.JSON(sessionsToJSON([]*transcript.SessionDetail{d}, true)[0])
		return nil
	}

	s := d.Summary
	fmt.Printf("Session:   %s\n", s.SessionID)
	fmt.Printf("Project:   %s\n", projectName(s.Cwd))
	if s.GitBranch != "" {
		fmt.Printf("Branch:    %s\n", s.GitBranch)
	}
	if s.Model != "" {
		fmt.Printf("Model:     %s\n", s.Model)
	}
	if dur, ok := s.Duration(); ok {
		fmt.Printf("Duration:  %s\n", render.FormatDuration(dur))
	}
	fmt.Printf("Messages:  %d\n", s.MessageCount)
	fmt.Printf("Tools:     %d (%d failed)\n", s.ToolCalls, s.ToolErrors)
	if s.AgentCalls > 0 {
		fmt.Printf("Agents:    %d\n", s.AgentCalls)
	}
	fmt.Println()
	printBreakdown(d)
	return nil
}

func startedToday(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	now := time.Now()
	y1, m1, d1 := t.Local().Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// transcriptsRoot picks the transcript tree to read: a profile's sandboxed
// tree, or the global ~/.claude/projects.
func transcriptsRoot(profileName string) (string, error) {
	if profileName == "" {
		return transcript.GlobalTranscriptsDir()
	}
	name, err := resolveProfile(profileName)
	if err != nil {
		return "", err
	}
	return transcript.ProfileTranscriptsDir(store.ProfilesDir(), name), nil
}

type sessionJSON struct {
	SessionID    string         `json:"session_id"`
	Cwd          string         `json:"cwd,omitempty"`
	GitBranch    string         `json:"git_branch,omitempty"`
	Model        string         `json:"model,omitempty"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	EndedAt      *time.Time     `json:"ended_at,omitempty"`
	DurationSecs *int64         `json:"duration_secs,omitempty"`
	Messages     int            `json:"messages"`
	ToolCalls    int            `json:"tool_calls"`
	ToolErrors   int            `json:"tool_errors"`
	AgentCalls   int            `json:"agent_calls"`
	Tools        map[string]int `json:"tools,omitempty"`
}

func sessionsToJSON(details []*transcript.SessionDetail, withTools bool) []sessionJSON {
	out := make([]sessionJSON, 0, len(details))
	for _, d := range details {
		s := d.Summary
		row := sessionJSON{
			SessionID:  s.SessionID,
			Cwd:        s.Cwd,
			GitBranch:  s.GitBranch,
			Model:      s.Model,
			Messages:   s.MessageCount,
			ToolCalls:  s.ToolCalls,
			ToolErrors: s.ToolErrors,
			AgentCalls: s.AgentCalls,
		}
		if !s.StartedAt.IsZero() {
			t := s.StartedAt
			row.StartedAt = &t
		}
		if !s.EndedAt.IsZero() {
			t := s.EndedAt
			row.EndedAt = &t
		}
		if dur, ok := s.Duration(); ok {
			secs := int64(dur.Seconds())
			row.DurationSecs = &secs
		}
		if withTools {
			row.Tools = d.ToolBreakdown
		}
		out = append(out, row)
	}
	return out
}

func printSessions(details []*transcript.SessionDetail, withDetail bool) {
	fmt.Printf("%-15s %-22s %-14s %-8s %5s %5s %4s\n",
		"SESSION", "PROJECT", "MODEL", "WHEN", "MSGS", "TOOLS", "ERRS")
	now := time.Now()
	for _, d := range details {
		s := d.Summary
		when := "?"
		if !s.StartedAt.IsZero() {
			when = render.FormatRelativeTime(s.StartedAt, now)
		}
		fmt.Printf("%-15s %-22s %-14s %-8s %5d %5d %4d\n",
			render.ShortenSessionID(s.SessionID),
			truncateCell(projectName(s.Cwd), 22),
			render.ShortenModel(s.Model),
			when,
			s.MessageCount, s.ToolCalls, s.ToolErrors)

		if withDetail {
			printBreakdown(d)
		}
	}
}

func printBreakdown(d *transcript.SessionDetail) {
	type toolCount struct {
		name  string
		count int
	}
	counts := make([]toolCount, 0, len(d.ToolBreakdown))
	for name, n := range d.ToolBreakdown {
		counts = append(counts, toolCount{name, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].name < counts[j].name
	})

	for _, tc := range counts {
		fmt.Printf("    %-12s %d\n", tc.name, tc.count)
	}
	for _, agent := range d.AgentCalls {
		fmt.Printf("    agent %s: %s\n", agent.SubagentType, agent.Description)
	}
	if dur, ok := d.Summary.Duration(); ok {
		fmt.Printf("    duration %s\n", render.FormatDuration(dur))
	}
}

func projectName(cwd string) string {
	if cwd == "" {
		return "?"
	}
	return filepath.Base(cwd)
}

func truncateCell(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
