// Package render handles CLI output in three formats: human (styled for a
// terminal), plain (stable, grep-friendly), and json (machine-readable).
// Human output downgrades to plain automatically when stdout is not a TTY,
// so piped rafctl invocations stay scriptable.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Format selects the output encoding.
type Format int

const (
	FormatHuman Format = iota
	FormatPlain
	FormatJSON
)

// ParseFormat converts a --output flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "human":
		return FormatHuman, nil
	case "plain":
		return FormatPlain, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatHuman, fmt.Errorf("invalid output format %q (valid options: human, plain, json)", s)
	}
}

func (f Format) String() string {
	switch f {
	case FormatPlain:
		return "plain"
	case FormatJSON:
		return "json"
	default:
		return "human"
	}
}

// Resolve downgrades human output to plain when stdout is not a terminal.
// Explicit plain and json requests pass through untouched.
func Resolve(f Format) Format {
	if f == FormatHuman && !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatPlain
	}
	return f
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle     = lipgloss.NewStyle().Faint(true)

	// HeaderStyle renders section headers in tabular human output.
	HeaderStyle = lipgloss.NewStyle().Bold(true)
)

// Success prints a confirmation in the given format.
func Success(f Format, msg string) {
	switch f {
	case FormatHuman:
		fmt.Println(successStyle.Render("✓") + " " + msg)
	case FormatPlain:
		fmt.Println("OK: " + msg)
	case FormatJSON:
		JSON(map[string]any{"ok": true, "message": msg})
	}
}

// Error prints a failure message to stderr.
func Error(f Format, msg string) {
	switch f {
	case FormatHuman:
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗")+" "+msg)
	case FormatPlain:
		fmt.Fprintln(os.Stderr, "ERROR: "+msg)
	case FormatJSON:
		data, _ := json.MarshalIndent(map[string]any{"ok": false, "error": msg}, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	}
}

// Info prints an advisory line. JSON output suppresses it; advisory text
// would corrupt a machine-readable stream.
func Info(f Format, msg string) {
	switch f {
	case FormatHuman:
		fmt.Println(infoStyle.Render("ℹ") + " " + msg)
	case FormatPlain:
		fmt.Println("INFO: " + msg)
	}
}

// Dim returns s styled faint for human output, unchanged otherwise.
func Dim(f Format, s string) string {
	if f == FormatHuman {
		return dimStyle.Render(s)
	}
	return s
}

// JSON pretty-prints v to stdout.
func JSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: encode json: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// TerminalWidth returns the stdout width, or a conservative default when
// stdout is not a terminal.
func TerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}
