// Package dashboard is an interactive profile overview. It lists every
// profile with its auth state and recent usage, and lets the user pick one
// to run or log in to; the chosen action is returned to the caller, which
// performs it after the terminal is restored.
package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/salacoste/rafctl/internal/launch"
	"github.com/salacoste/rafctl/internal/profile"
	"github.com/salacoste/rafctl/internal/render"
	"github.com/salacoste/rafctl/internal/stats"
)

// ActionKind says what the user chose before the dashboard exited.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionRun
	ActionLogin
)

// Action is the dashboard's result.
type Action struct {
	Kind    ActionKind
	Profile string
}

// Row is one profile line in the table.
type Row struct {
	Name          string
	Tool          profile.Tool
	Authenticated bool
	LastUsed      string
	Tokens7d      uint64
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	badStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	helpStyle     = lipgloss.NewStyle().Faint(true).Padding(0, 1)
)

type model struct {
	rows   []Row
	cursor int
	action Action
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter", "r":
		if len(m.rows) > 0 {
			m.action = Action{Kind: ActionRun, Profile: m.rows[m.cursor].Name}
			return m, tea.Quit
		}
	case "l":
		if len(m.rows) > 0 {
			m.action = Action{Kind: ActionLogin, Profile: m.rows[m.cursor].Name}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("rafctl profiles"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString("  no profiles yet; create one with: rafctl profile add <name> --tool claude\n")
	}

	header := fmt.Sprintf("  %-16s %-8s %-6s %-12s %8s", "NAME", "TOOL", "AUTH", "LAST USED", "7D TOKENS")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(header))
	b.WriteString("\n")

	for i, row := range m.rows {
		auth := badStyle.Render("no")
		if row.Authenticated {
			auth = okStyle.Render("yes")
		}
		line := fmt.Sprintf("  %-16s %-8s %-6s %-12s %8s",
			row.Name, row.Tool, auth, row.LastUsed, render.FormatTokens(row.Tokens7d))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move  enter run  l login  q quit"))
	b.WriteString("\n")
	return b.String()
}

// LoadRows builds the table from the profile store. Profiles that fail to
// load are skipped rather than aborting the whole view.
func LoadRows(store *profile.Store) ([]Row, error) {
	names, err := store.List()
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(names))
	for _, name := range names {
		p, err := store.Load(name)
		if err != nil {
			continue
		}
		lastUsed := "never"
		if p.LastUsed != nil {
			lastUsed = p.LastUsed.Format("2006-01-02")
		}
		cache := stats.LoadForProfile(store, name, p.Tool)
		rows = append(rows, Row{
			Name:          p.Name,
			Tool:          p.Tool,
			Authenticated: launch.IsAuthenticated(store, name, p.Tool),
			LastUsed:      lastUsed,
			Tokens7d:      cache.TotalTokens(7),
		})
	}
	return rows, nil
}

// Run shows the dashboard and blocks until the user exits, returning the
// chosen action.
func Run(store *profile.Store) (Action, error) {
	rows, err := LoadRows(store)
	if err != nil {
		return Action{}, err
	}

	final, err := tea.NewProgram(model{rows: rows}, tea.WithAltScreen()).Run()
	if err != nil {
		return Action{}, fmt.Errorf("dashboard: %w", err)
	}
	return final.(model).action, nil
}
