package dashboard

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/salacoste/rafctl/internal/launch"
	"github.com/salacoste/rafctl/internal/profile"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func testModel() model {
	return model{rows: []Row{
		{Name: "personal", Tool: profile.ToolClaude, Authenticated: true, LastUsed: "2026-01-05"},
		{Name: "work", Tool: profile.ToolCodex, LastUsed: "never"},
	}}
}

func TestCursorMovementClamps(t *testing.T) {
	m := testModel()

	next, _ := m.Update(keyMsg("up"))
	if next.(model).cursor != 0 {
		t.Error("cursor moved above first row")
	}

	next, _ = m.Update(keyMsg("down"))
	next, _ = next.(model).Update(keyMsg("down"))
	if next.(model).cursor != 1 {
		t.Errorf("cursor = %d, want clamped to 1", next.(model).cursor)
	}
}

func TestEnterSelectsRun(t *testing.T) {
	m := testModel()
	next, cmd := m.Update(keyMsg("down"))
	next, cmd = next.(model).Update(keyMsg("enter"))
	got := next.(model).action
	if got.Kind != ActionRun || got.Profile != "work" {
		t.Errorf("action = %+v, want run work", got)
	}
	if cmd == nil {
		t.Error("enter did not quit")
	}
}

func TestLoginKey(t *testing.T) {
	m := testModel()
	next, _ := m.Update(keyMsg("l"))
	got := next.(model).action
	if got.Kind != ActionLogin || got.Profile != "personal" {
		t.Errorf("action = %+v, want login personal", got)
	}
}

func TestQuitLeavesNoAction(t *testing.T) {
	m := testModel()
	next, cmd := m.Update(keyMsg("q"))
	if next.(model).action.Kind != ActionNone {
		t.Errorf("action = %+v, want none", next.(model).action)
	}
	if cmd == nil {
		t.Error("q did not quit")
	}
}

func TestViewListsProfiles(t *testing.T) {
	out := testModel().View()
	for _, want := range []string{"personal", "work", "NAME", "7D TOKENS"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewEmptyState(t *testing.T) {
	out := model{}.View()
	if !strings.Contains(out, "no profiles yet") {
		t.Error("empty view missing hint")
	}
}

func TestLoadRows(t *testing.T) {
	store := profile.NewStore(t.TempDir())
	if err := store.Save(profile.New("work", profile.ToolClaude)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(launch.CredentialPath(store, "work", profile.ToolClaude), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	rows, err := LoadRows(store)
	if err != nil {
		t.Fatalf("LoadRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Name != "work" || !rows[0].Authenticated || rows[0].LastUsed != "never" {
		t.Errorf("row = %+v", rows[0])
	}
}
