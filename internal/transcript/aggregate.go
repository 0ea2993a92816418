package transcript

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"
)

// Transcript lines can be large (tool results embed whole files).
const maxLineSize = 10 * 1024 * 1024

// SessionSummary is the headline view of one session. String and time
// fields follow a first-non-empty-wins rule; StartedAt/EndedAt track the
// first and most recent timestamps in file order.
type SessionSummary struct {
	SessionID    string
	Cwd          string
	GitBranch    string
	StartedAt    time.Time
	EndedAt      time.Time
	MessageCount int
	ToolCalls    int
	ToolErrors   int
	AgentCalls   int
	Model        string
}

// SessionDetail is the full derived view of one transcript.
type SessionDetail struct {
	Summary       SessionSummary
	ToolCalls     []ToolCall
	AgentCalls    []AgentCall
	ToolBreakdown map[string]int
}

// Duration returns the wall-clock span of the session, or false when either
// endpoint is unknown.
func (s *SessionSummary) Duration() (time.Duration, bool) {
	if s.StartedAt.IsZero() || s.EndedAt.IsZero() {
		return 0, false
	}
	d := s.EndedAt.Sub(s.StartedAt)
	if d < 0 {
		d = 0
	}
	return d, true
}

// Aggregate folds a transcript stream into a SessionDetail in a single
// ordered pass. Lines that fail to decode are skipped. Returns nil when no
// record ever carried a session id: such a file (zero-byte, header-only) is
// not a usable session transcript and must not yield a half-populated
// summary.
func Aggregate(r io.Reader) *SessionDetail {
	summary := SessionSummary{}
	corr := NewCorrelator()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		rec, err := DecodeRecord(line)
		if err != nil {
			continue
		}

		if summary.SessionID == "" {
			summary.SessionID = rec.SessionID
		}
		if summary.Cwd == "" {
			summary.Cwd = rec.Cwd
		}
		if summary.GitBranch == "" {
			summary.GitBranch = rec.GitBranch
		}
		if !rec.Timestamp.IsZero() {
			if summary.StartedAt.IsZero() {
				summary.StartedAt = rec.Timestamp
			}
			// Out-of-order timestamps never shrink the session span.
			if rec.Timestamp.After(summary.EndedAt) {
				summary.EndedAt = rec.Timestamp
			}
		}
		if rec.Kind == KindUser || rec.Kind == KindAssistant {
			summary.MessageCount++
		}
		if summary.Model == "" {
			summary.Model = rec.Model
		}

		for _, block := range rec.Blocks {
			switch block.Type {
			case BlockToolUse:
				corr.ObserveToolUse(block.ID, block.Name, block.Input, rec.Timestamp)
			case BlockToolResult:
				corr.ObserveToolResult(block.ToolUseID, block.IsError, rec.Timestamp)
			}
		}
	}

	corr.Drain()

	if summary.SessionID == "" {
		return nil
	}

	summary.ToolCalls = corr.ToolCallCount()
	summary.ToolErrors = corr.ToolErrorCount()
	summary.AgentCalls = corr.AgentCallCount()

	return &SessionDetail{
		Summary:       summary,
		ToolCalls:     corr.Calls(),
		AgentCalls:    corr.AgentCalls(),
		ToolBreakdown: corr.Breakdown(),
	}
}

// ParseFile aggregates one transcript file. The error covers only opening
// the file; an unusable transcript returns (nil, nil) so batch listings can
// silently skip it.
func ParseFile(path string) (*SessionDetail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript %s: %w", path, err)
	}
	defer f.Close()

	return Aggregate(f), nil
}
