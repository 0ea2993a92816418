package render

import (
	"fmt"
	"strings"
	"time"
)

// FormatTokens compacts a token count for display: 1.5M, 320K, 999.
func FormatTokens(n uint64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.0fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatDuration renders a session duration the way humans read it:
// 45s, 12m, 2h 5m.
func FormatDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm", secs/60)
	default:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	}
}

// ProgressBar renders a width-character bar filled to percentage.
func ProgressBar(percentage float64, width int) string {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	filled := int(percentage/100*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// ShortenModel compacts a model id for table cells:
// claude-sonnet-4-5-20250929 becomes sonnet-4-5.
func ShortenModel(model string) string {
	s := strings.TrimPrefix(model, "claude-")
	if i := strings.Index(s, "-20"); i > 0 {
		s = s[:i]
	}
	return s
}

// ShortenSessionID truncates a session id to its first 12 characters.
func ShortenSessionID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// FormatRelativeTime renders how long ago t was: just now, 5m ago, 3h ago,
// 2d ago. Zero times render as "never".
func FormatRelativeTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
