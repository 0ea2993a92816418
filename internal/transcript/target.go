package transcript

import (
	"encoding/json"
	"path/filepath"
)

// Display truncation limits per tool family.
const (
	patternTargetLen = 40
	commandTargetLen = 30
	descTargetLen    = 40
)

// ToolTarget projects a tool's input payload onto a short human-readable
// target: a file basename for file tools, a truncated command or pattern for
// shell and search tools, a truncated description for sub-agent dispatch.
// Returns "" when the tool has no meaningful target.
func ToolTarget(toolName string, input json.RawMessage) string {
	if len(input) == 0 {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(input, &fields); err != nil {
		return ""
	}

	str := func(keys ...string) string {
		for _, k := range keys {
			var s string
			if raw, ok := fields[k]; ok && json.Unmarshal(raw, &s) == nil {
				return s
			}
		}
		return ""
	}

	switch toolName {
	case "Read", "Write", "Edit":
		if p := str("file_path", "filePath", "path"); p != "" {
			return truncatePath(p)
		}
	case "Glob", "Grep":
		if p := str("pattern"); p != "" {
			return truncateRunes(p, patternTargetLen)
		}
	case "Bash":
		if c := str("command"); c != "" {
			return truncateRunes(c, commandTargetLen)
		}
	case AgentToolName:
		if d := str("description"); d != "" {
			return truncateRunes(d, descTargetLen)
		}
	case "TodoWrite":
		return "updating todos"
	}
	return ""
}

// truncatePath reduces a file path to its basename, falling back to a
// truncated form for paths with no usable basename.
func truncatePath(path string) string {
	if base := filepath.Base(path); base != "." && base != string(filepath.Separator) {
		return base
	}
	return truncateRunes(path, commandTargetLen)
}

// truncateRunes shortens s to at most max characters, appending "..." when
// it cuts. It counts runes, not bytes, so multi-byte text is never split.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	keep := max - 3
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + "..."
}
