package transcript

import (
	"encoding/json"
	"time"
)

// AgentToolName is the tool that dispatches a sub-agent. Its invocations are
// tracked as AgentCalls, not ToolCalls, and never enter the tool histogram.
const AgentToolName = "Task"

// ToolCall is the derived fact for one tool invocation. A call is open until
// its tool_result arrives; calls still open at end of stream survive Drain
// with Resolved false and no duration, keeping crashed or still-running
// sessions visible.
type ToolCall struct {
	ID        string
	Name      string
	Target    string
	InvokedAt time.Time
	IsError   bool

	// Duration is valid only when HasDuration is true: both the invocation
	// and result carried timestamps.
	Duration    time.Duration
	HasDuration bool
	Resolved    bool
}

// AgentCall is a sub-agent dispatch projected from a Task invocation.
type AgentCall struct {
	SubagentType string
	Description  string
	Timestamp    time.Time
}

// Correlator pairs tool_use blocks with their later tool_result blocks by
// invocation id. Its lifetime is bound to a single parse; it is not safe for
// concurrent use and holds no state beyond one transcript.
type Correlator struct {
	pending map[string]*ToolCall
	order   []string

	closed    []ToolCall
	agents    []AgentCall
	breakdown map[string]int

	toolCalls  int
	toolErrors int
}

func NewCorrelator() *Correlator {
	return &Correlator{
		pending:   make(map[string]*ToolCall),
		breakdown: make(map[string]int),
	}
}

// ObserveToolUse records a tool invocation. Sub-agent dispatches become
// AgentCalls and do not touch the pending map. A reused invocation id
// overwrites the earlier open entry; ids are assumed unique upstream, so
// this is a defined-but-degenerate case, not an error.
func (c *Correlator) ObserveToolUse(id, name string, input json.RawMessage, at time.Time) {
	if name == AgentToolName {
		c.agents = append(c.agents, AgentCall{
			SubagentType: inputString(input, "subagent_type"),
			Description:  inputString(input, "description"),
			Timestamp:    at,
		})
		return
	}

	c.toolCalls++
	c.breakdown[name]++

	if _, exists := c.pending[id]; !exists {
		c.order = append(c.order, id)
	}
	c.pending[id] = &ToolCall{
		ID:        id,
		Name:      name,
		Target:    ToolTarget(name, input),
		InvokedAt: at,
	}
}

// ObserveToolResult closes the matching open call, setting its error flag
// and duration (clamped non-negative to guard against out-of-order
// timestamps). A result with no matching open invocation carries no
// actionable data and is dropped.
func (c *Correlator) ObserveToolResult(id string, isError bool, at time.Time) {
	call, ok := c.pending[id]
	if !ok {
		return
	}
	delete(c.pending, id)
	c.removeFromOrder(id)

	call.Resolved = true
	call.IsError = isError
	if isError {
		c.toolErrors++
	}
	if !call.InvokedAt.IsZero() && !at.IsZero() {
		d := at.Sub(call.InvokedAt)
		if d < 0 {
			d = 0
		}
		call.Duration = d
		call.HasDuration = true
	}
	c.closed = append(c.closed, *call)
}

// Drain moves every still-open invocation to the closed list as-is, in
// observation order. Called once at end of stream.
func (c *Correlator) Drain() {
	for _, id := range c.order {
		if call, ok := c.pending[id]; ok {
			c.closed = append(c.closed, *call)
			delete(c.pending, id)
		}
	}
	c.order = nil
}

// Calls returns closed calls in resolution order, with drained open calls
// appended in invocation order.
func (c *Correlator) Calls() []ToolCall { return c.closed }

func (c *Correlator) AgentCalls() []AgentCall { return c.agents }

// Breakdown returns the tool-name histogram. AgentCalls are never counted.
func (c *Correlator) Breakdown() map[string]int { return c.breakdown }

func (c *Correlator) ToolCallCount() int  { return c.toolCalls }
func (c *Correlator) ToolErrorCount() int { return c.toolErrors }
func (c *Correlator) AgentCallCount() int { return len(c.agents) }

func (c *Correlator) removeFromOrder(id string) {
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// inputString extracts a top-level string field from an opaque input payload.
func inputString(input json.RawMessage, key string) string {
	if len(input) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(input, &fields); err != nil {
		return ""
	}
	var s string
	if raw, ok := fields[key]; ok && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return ""
}
