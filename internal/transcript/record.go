// Package transcript parses Claude Code JSONL transcript files into typed
// records and folds them into per-session analytics: a summary, the list of
// tool calls with durations and error flags, sub-agent dispatches, and a
// tool-name histogram.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind discriminates transcript records by their top-level "type" field.
type Kind int

const (
	// KindOther covers records that are neither user nor assistant turns
	// (summaries, meta records, anything unrecognized). Consumers treat
	// them as no-ops apart from the shared metadata fields.
	KindOther Kind = iota
	KindUser
	KindAssistant
)

// BlockType discriminates content blocks inside an assistant message.
type BlockType int

const (
	BlockUnknown BlockType = iota
	BlockToolUse
	BlockToolResult
	BlockText
)

// Record is one decoded transcript line. Absent optional fields are zero
// values: a zero Timestamp means the line carried no parseable timestamp.
type Record struct {
	Kind      Kind
	Timestamp time.Time
	SessionID string
	Cwd       string
	GitBranch string

	// Model and Blocks are populated from the embedded message, when present.
	Model  string
	Blocks []ContentBlock
}

// ContentBlock is one element of a message's content array. Fields are
// populated according to Type: ID/Name/Input for tool_use, ToolUseID/IsError
// for tool_result. Text and unknown blocks carry nothing the analytics need.
type ContentBlock struct {
	Type BlockType

	ID    string
	Name  string
	Input json.RawMessage

	ToolUseID string
	IsError   bool
}

// ErrNotTranscript is returned when a line decodes as JSON but carries none
// of the recognized transcript fields.
var ErrNotTranscript = errors.New("no transcript fields present")

// rawRecord mirrors the observed Claude Code JSONL shape. Pointer fields let
// the decoder distinguish "absent" from "empty" so it can reject objects
// that are valid JSON but not transcript records at all.
type rawRecord struct {
	Type      *string     `json:"type"`
	Timestamp *string     `json:"timestamp"`
	SessionID *string     `json:"sessionId"`
	Cwd       *string     `json:"cwd"`
	GitBranch *string     `json:"gitBranch"`
	Message   *rawMessage `json:"message"`
}

type rawMessage struct {
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
}

type rawBlock struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
}

// DecodeRecord parses a single transcript line. Unknown fields are ignored.
// A record without a "type" field decodes as KindOther rather than failing;
// only malformed JSON or JSON with no recognized fields is an error, which
// callers recover from by skipping the line.
func DecodeRecord(line []byte) (*Record, error) {
	var raw rawRecord
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	if raw.Type == nil && raw.Timestamp == nil && raw.SessionID == nil &&
		raw.Cwd == nil && raw.GitBranch == nil && raw.Message == nil {
		return nil, ErrNotTranscript
	}

	rec := &Record{Kind: KindOther}

	if raw.Type != nil {
		switch *raw.Type {
		case "user":
			rec.Kind = KindUser
		case "assistant":
			rec.Kind = KindAssistant
		}
	}

	if raw.Timestamp != nil {
		if ts, err := time.Parse(time.RFC3339, *raw.Timestamp); err == nil {
			rec.Timestamp = ts.UTC()
		}
	}
	if raw.SessionID != nil {
		rec.SessionID = *raw.SessionID
	}
	if raw.Cwd != nil {
		rec.Cwd = *raw.Cwd
	}
	if raw.GitBranch != nil {
		rec.GitBranch = *raw.GitBranch
	}

	if raw.Message != nil {
		rec.Model = raw.Message.Model
		rec.Blocks = decodeBlocks(raw.Message.Content)
	}

	return rec, nil
}

// decodeBlocks parses a message content array. User messages often carry a
// plain string instead of an array; that and any other non-array shape
// yields no blocks.
func decodeBlocks(content json.RawMessage) []ContentBlock {
	if len(content) == 0 {
		return nil
	}

	var raws []rawBlock
	if err := json.Unmarshal(content, &raws); err != nil {
		return nil
	}

	blocks := make([]ContentBlock, 0, len(raws))
	for _, rb := range raws {
		b := ContentBlock{Type: BlockUnknown}
		switch rb.Type {
		case "tool_use":
			b.Type = BlockToolUse
			b.ID = rb.ID
			b.Name = rb.Name
			b.Input = rb.Input
		case "tool_result":
			b.Type = BlockToolResult
			b.ToolUseID = rb.ToolUseID
			b.IsError = rb.IsError
		case "text":
			b.Type = BlockText
		}
		blocks = append(blocks, b)
	}
	return blocks
}
