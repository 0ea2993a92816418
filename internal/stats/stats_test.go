package stats

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/salacoste/rafctl/internal/profile"
)

const sampleCache = `{
	"version": 1,
	"lastComputedDate": "2026-01-06",
	"dailyActivity": [
		{"date": "2026-01-06", "messageCount": 245, "sessionCount": 12, "toolCallCount": 1234},
		{"date": "2026-01-05", "messageCount": 189, "sessionCount": 8, "toolCallCount": 892}
	],
	"dailyModelTokens": [
		{"date": "2026-01-06", "tokensByModel": {"claude-sonnet-4-5": 450000, "claude-opus-4-5": 50000}},
		{"date": "2026-01-05", "tokensByModel": {"claude-sonnet-4-5": 320000}}
	],
	"totalSessions": 556,
	"totalMessages": 137728,
	"modelUsage": {
		"claude-sonnet-4-5": {"inputTokens": 2508205, "outputTokens": 15554917, "costUsd": 0}
	}
}`

func writeCache(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stats-cache.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSampleCache(t *testing.T) {
	cache := Load(writeCache(t, sampleCache))

	if cache.Version != 1 || cache.LastComputedDate != "2026-01-06" {
		t.Errorf("header = %d %q", cache.Version, cache.LastComputedDate)
	}
	if len(cache.DailyActivity) != 2 || len(cache.DailyModelTokens) != 2 {
		t.Fatalf("entries = %d activity, %d tokens", len(cache.DailyActivity), len(cache.DailyModelTokens))
	}
	if cache.TotalSessions != 556 || cache.TotalMessages != 137728 {
		t.Errorf("totals = %d sessions, %d messages", cache.TotalSessions, cache.TotalMessages)
	}
	usage, ok := cache.ModelUsage["claude-sonnet-4-5"]
	if !ok || usage.InputTokens != 2508205 || usage.OutputTokens != 15554917 {
		t.Errorf("model usage = %+v", usage)
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	cache := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !cache.IsEmpty() {
		t.Error("missing file not empty")
	}
}

func TestLoadMalformedFileIsEmpty(t *testing.T) {
	cache := Load(writeCache(t, "{broken"))
	if !cache.IsEmpty() {
		t.Error("malformed file not empty")
	}
}

func TestTokensForDate(t *testing.T) {
	cache := Load(writeCache(t, sampleCache))
	if got := cache.TokensForDate("2026-01-06"); got != 500000 {
		t.Errorf("TokensForDate(01-06) = %d, want 500000", got)
	}
	if got := cache.TokensForDate("2026-01-05"); got != 320000 {
		t.Errorf("TokensForDate(01-05) = %d, want 320000", got)
	}
	if got := cache.TokensForDate("2026-01-04"); got != 0 {
		t.Errorf("TokensForDate(01-04) = %d, want 0", got)
	}
}

func TestRecentActivityNewestFirst(t *testing.T) {
	cache := Load(writeCache(t, sampleCache))
	recent := cache.RecentActivity(1)
	if len(recent) != 1 || recent[0].Date != "2026-01-06" {
		t.Errorf("RecentActivity(1) = %+v", recent)
	}
}

func TestTokensByModelAggregation(t *testing.T) {
	cache := Load(writeCache(t, sampleCache))

	all := cache.TokensByModel(0)
	if all["claude-sonnet-4-5"] != 770000 || all["claude-opus-4-5"] != 50000 {
		t.Errorf("TokensByModel(0) = %v", all)
	}
	if got := cache.TotalTokens(0); got != 820000 {
		t.Errorf("TotalTokens(0) = %d, want 820000", got)
	}
	if got := cache.TotalTokens(1); got != 500000 {
		t.Errorf("TotalTokens(1) = %d, want 500000", got)
	}
}

func TestActivityForDate(t *testing.T) {
	cache := Load(writeCache(t, sampleCache))
	activity, ok := cache.ActivityForDate("2026-01-06")
	if !ok || activity.MessageCount != 245 || activity.ToolCallCount != 1234 {
		t.Errorf("ActivityForDate = %+v, %v", activity, ok)
	}
	if _, ok := cache.ActivityForDate("2020-01-01"); ok {
		t.Error("found activity for unknown date")
	}
}

func TestLoadForProfileFallsBackPastMissingProfileCache(t *testing.T) {
	store := profile.NewStore(t.TempDir())
	// No profile cache written; global path likely absent too under test,
	// so the result degrades to empty rather than erroring.
	cache := LoadForProfile(store, "work", profile.ToolClaude)
	if cache == nil {
		t.Fatal("LoadForProfile returned nil")
	}
}

func TestProfilePathLayout(t *testing.T) {
	store := profile.NewStore("/tmp/rafctl-root")
	got := ProfilePath(store, "Work", profile.ToolCodex)
	want := filepath.Join("/tmp/rafctl-root", "profiles", "work", "codex", "stats-cache.json")
	if got != want {
		t.Errorf("ProfilePath = %q, want %q", got, want)
	}
}

func TestPricingFor(t *testing.T) {
	p := PricingFor("claude-opus-4-5-20251101")
	if p.InputPerMillion != 15.0 || p.OutputPerMillion != 75.0 {
		t.Errorf("opus pricing = %+v", p)
	}
	// Unknown models price at the sonnet tier.
	p = PricingFor("mystery-model")
	if p.InputPerMillion != 3.0 || p.OutputPerMillion != 15.0 {
		t.Errorf("fallback pricing = %+v", p)
	}
}

func TestEstimateCosts(t *testing.T) {
	costs := EstimateCosts(map[string]uint64{
		"claude-sonnet-4-5": 1_000_000,
		"claude-haiku-4-5":  1_000_000,
	})
	if len(costs) != 2 {
		t.Fatalf("got %d cost entries", len(costs))
	}
	// Sonnet: $3 input + 3M estimated output at $15/M = $48.
	if costs[0].Model != "claude-sonnet-4-5" {
		t.Errorf("costs not sorted by total: %+v", costs)
	}
	if math.Abs(costs[0].TotalCost-48.0) > 1e-9 {
		t.Errorf("sonnet total = %f, want 48", costs[0].TotalCost)
	}
	// Haiku: $0.80 input + 3M output at $4/M = $12.80.
	if math.Abs(costs[1].TotalCost-12.8) > 1e-9 {
		t.Errorf("haiku total = %f, want 12.8", costs[1].TotalCost)
	}
	if math.Abs(TotalEstimated(costs)-60.8) > 1e-9 {
		t.Errorf("TotalEstimated = %f, want 60.8", TotalEstimated(costs))
	}
}
