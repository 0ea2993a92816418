// Package stats parses the stats-cache.json file that Claude Code keeps
// in its config directory, exposing daily activity and token usage.
// Parsing degrades gracefully: a missing or malformed cache is treated as
// empty rather than failing the command that asked for it.
package stats

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/salacoste/rafctl/internal/profile"
)

const (
	cacheFileName = "stats-cache.json"

	// schemaVersion is the stats-cache.json schema we know how to read.
	// Newer versions are parsed anyway on the assumption of additive change.
	schemaVersion = 1
)

// Cache mirrors the stats-cache.json schema.
type Cache struct {
	Version          int              `json:"version"`
	LastComputedDate string           `json:"lastComputedDate"`
	DailyActivity    []DailyActivity  `json:"dailyActivity"`
	DailyModelTokens []DailyTokens    `json:"dailyModelTokens"`
	TotalSessions    uint64           `json:"totalSessions"`
	TotalMessages    uint64           `json:"totalMessages"`
	ModelUsage       map[string]Usage `json:"modelUsage"`
}

// DailyActivity is one day of message, session, and tool counts. Dates are
// YYYY-MM-DD strings, which sort lexically in date order.
type DailyActivity struct {
	Date          string `json:"date"`
	MessageCount  uint64 `json:"messageCount"`
	SessionCount  uint64 `json:"sessionCount"`
	ToolCallCount uint64 `json:"toolCallCount"`
}

// DailyTokens is one day of token counts keyed by model id.
type DailyTokens struct {
	Date          string            `json:"date"`
	TokensByModel map[string]uint64 `json:"tokensByModel"`
}

// Usage is the all-time token summary for one model.
type Usage struct {
	InputTokens  uint64  `json:"inputTokens"`
	OutputTokens uint64  `json:"outputTokens"`
	CostUSD      float64 `json:"costUsd"`
}

// IsEmpty reports whether the cache holds no usable data.
func (c *Cache) IsEmpty() bool {
	return len(c.DailyActivity) == 0 && len(c.DailyModelTokens) == 0 && c.TotalSessions == 0
}

// TokensForDate returns the total tokens across models for a YYYY-MM-DD date.
func (c *Cache) TokensForDate(date string) uint64 {
	for _, d := range c.DailyModelTokens {
		if d.Date == date {
			var sum uint64
			for _, n := range d.TokensByModel {
				sum += n
			}
			return sum
		}
	}
	return 0
}

// ActivityForDate returns the activity entry for a date, if present.
func (c *Cache) ActivityForDate(date string) (DailyActivity, bool) {
	for _, d := range c.DailyActivity {
		if d.Date == date {
			return d, true
		}
	}
	return DailyActivity{}, false
}

// RecentActivity returns up to days entries, most recent first; days <= 0
// means all entries.
func (c *Cache) RecentActivity(days int) []DailyActivity {
	sorted := make([]DailyActivity, len(c.DailyActivity))
	copy(sorted, c.DailyActivity)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	if days > 0 && len(sorted) > days {
		sorted = sorted[:days]
	}
	return sorted
}

// RecentTokens returns up to days token entries, most recent first; days <= 0
// means all entries.
func (c *Cache) RecentTokens(days int) []DailyTokens {
	sorted := make([]DailyTokens, len(c.DailyModelTokens))
	copy(sorted, c.DailyModelTokens)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	if days > 0 && len(sorted) > days {
		sorted = sorted[:days]
	}
	return sorted
}

// TokensByModel sums per-model tokens over the last days entries; days <= 0
// means all time.
func (c *Cache) TokensByModel(days int) map[string]uint64 {
	entries := c.DailyModelTokens
	if days > 0 {
		entries = c.RecentTokens(days)
	}
	totals := make(map[string]uint64)
	for _, daily := range entries {
		for model, n := range daily.TokensByModel {
			totals[model] += n
		}
	}
	return totals
}

// TotalTokens sums tokens across all models over the last days entries;
// days <= 0 means all time.
func (c *Cache) TotalTokens(days int) uint64 {
	var sum uint64
	for _, n := range c.TokensByModel(days) {
		sum += n
	}
	return sum
}

// GlobalPath returns the shared Claude stats cache, ~/.claude/stats-cache.json.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude", cacheFileName), nil
}

// ProfilePath returns the per-profile stats cache inside the profile's tool
// config directory.
func ProfilePath(store *profile.Store, name string, tool profile.Tool) string {
	return filepath.Join(store.Dir(name), string(tool), cacheFileName)
}

// Load reads a stats cache from path. Missing or malformed files yield an
// empty cache; read and parse problems are logged, not returned, so a
// broken cache never breaks analytics output.
func Load(path string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("warning: read stats cache %s: %v", path, err)
		}
		return &Cache{}
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		log.Printf("warning: parse stats cache %s: %v", path, err)
		return &Cache{}
	}
	if cache.Version != 0 && cache.Version != schemaVersion {
		log.Printf("warning: stats cache %s has schema version %d, expected %d; parsing anyway", path, cache.Version, schemaVersion)
	}
	return &cache
}

// LoadForProfile loads the profile's own stats cache, falling back to the
// global cache when the profile has none.
func LoadForProfile(store *profile.Store, name string, tool profile.Tool) *Cache {
	path := ProfilePath(store, name, tool)
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	global, err := GlobalPath()
	if err != nil {
		return &Cache{}
	}
	return Load(global)
}
