package tail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			t.Fatal(err)
		}
	}
}

func appendRaw(t *testing.T, path, s string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(s); err != nil {
		t.Fatal(err)
	}
}

func userLine(ts string) string {
	return fmt.Sprintf(`{"type":"user","timestamp":"%s","sessionId":"s1","message":{"content":"hello"}}`, ts)
}

func toolUseLine(ts, id, name, input string) string {
	return fmt.Sprintf(`{"type":"assistant","timestamp":"%s","sessionId":"s1","message":{"content":[{"type":"tool_use","id":"%s","name":"%s","input":%s}]}}`, ts, id, name, input)
}

func toolResultLine(ts, id string, isError bool) string {
	return fmt.Sprintf(`{"type":"user","timestamp":"%s","sessionId":"s1","message":{"content":[{"type":"tool_result","tool_use_id":"%s","is_error":%t}]}}`, ts, id, isError)
}

// recorder collects emitted events behind a mutex; emit runs on the watch
// goroutine while tests inspect from their own.
type recorder struct {
	mu     sync.Mutex
	events []Event
	notify chan struct{}
}

func newRecorder() *recorder {
	return &recorder{notify: make(chan struct{}, 16)}
}

func (r *recorder) emit(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) waitFor(t *testing.T, n int) []Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		got := r.snapshot()
		if len(got) >= n {
			return got
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, have %d", n, len(got))
		}
	}
}

// runEngine drives the engine's watch loop with a synthetic wake channel so
// tests control exactly when the file is re-read.
func runEngine(t *testing.T, e *Engine, wake <-chan struct{}) {
	t.Helper()
	f, err := os.Open(e.path)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.bootstrap(f); err != nil {
		f.Close()
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan error, 1)
	go func() {
		defer f.Close()
		finished <- e.watch(ctx, f, wake)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-finished:
			if err != nil {
				t.Errorf("watch: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("watch loop did not stop")
		}
	})
}

func TestBootstrapEmitsNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	writeLines(t, path,
		userLine("2025-01-15T10:00:00.000Z"),
		toolUseLine("2025-01-15T10:00:01.000Z", "t1", "Read", `{"file_path":"/a/b.go"}`),
		toolResultLine("2025-01-15T10:00:02.000Z", "t1", false),
	)

	rec := newRecorder()
	e := New(path, rec.emit)
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := e.bootstrap(f); err != nil {
		t.Fatal(err)
	}

	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("bootstrap emitted %d events, want 0", len(got))
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if e.Offset() != info.Size() {
		t.Errorf("offset = %d, want %d", e.Offset(), info.Size())
	}
}

func TestAppendedLinesBecomeEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	writeLines(t, path, userLine("2025-01-15T10:00:00.000Z"))

	rec := newRecorder()
	wake := make(chan struct{}, 1)
	e := New(path, rec.emit)
	runEngine(t, e, wake)

	writeLines(t, path,
		userLine("2025-01-15T10:01:00.000Z"),
		toolUseLine("2025-01-15T10:01:01.000Z", "t9", "Bash", `{"command":"go vet ./..."}`),
	)
	wake <- struct{}{}

	got := rec.waitFor(t, 2)
	if got[0].Type != EventUserMessage {
		t.Errorf("events[0].Type = %v, want user message", got[0].Type)
	}
	if got[1].Type != EventToolUse || got[1].ToolName != "Bash" {
		t.Errorf("events[1] = %+v, want Bash tool use", got[1])
	}
	if got[1].Target != "go vet ./..." {
		t.Errorf("Target = %q, want command text", got[1].Target)
	}
}

func TestDuplicateWakesAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	writeLines(t, path, userLine("2025-01-15T10:00:00.000Z"))

	rec := newRecorder()
	wake := make(chan struct{}, 4)
	e := New(path, rec.emit)
	runEngine(t, e, wake)

	writeLines(t, path, toolUseLine("2025-01-15T10:01:00.000Z", "t1", "Glob", `{"pattern":"**/*.go"}`))
	// One write, several notifications.
	wake <- struct{}{}
	wake <- struct{}{}
	wake <- struct{}{}

	got := rec.waitFor(t, 1)
	time.Sleep(50 * time.Millisecond)
	if got = rec.snapshot(); len(got) != 1 {
		t.Fatalf("got %d events after replayed wakes, want 1", len(got))
	}
	if got[0].Type != EventToolUse || got[0].Target != "**/*.go" {
		t.Errorf("event = %+v", got[0])
	}
}

func TestToolErrorEmitted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	writeLines(t, path, userLine("2025-01-15T10:00:00.000Z"))

	rec := newRecorder()
	wake := make(chan struct{}, 1)
	e := New(path, rec.emit)
	runEngine(t, e, wake)

	writeLines(t, path,
		toolUseLine("2025-01-15T10:01:00.000Z", "t1", "Bash", `{"command":"exit 1"}`),
		toolResultLine("2025-01-15T10:01:02.000Z", "t1", true),
	)
	wake <- struct{}{}

	got := rec.waitFor(t, 2)
	if got[1].Type != EventToolError {
		t.Errorf("events[1].Type = %v, want tool error", got[1].Type)
	}
}

func TestErrorResultAfterReportedUse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	writeLines(t, path, userLine("2025-01-15T10:00:00.000Z"))

	rec := newRecorder()
	wake := make(chan struct{}, 4)
	e := New(path, rec.emit)
	runEngine(t, e, wake)

	// The tool use arrives and is reported on its own wake.
	writeLines(t, path, toolUseLine("2025-01-15T10:01:00.000Z", "t1", "Bash", `{"command":"exit 1"}`))
	wake <- struct{}{}
	rec.waitFor(t, 1)

	// Its error result lands on a later wake and must still be reported.
	writeLines(t, path, toolResultLine("2025-01-15T10:01:05.000Z", "t1", true))
	wake <- struct{}{}

	got := rec.waitFor(t, 2)
	if got[1].Type != EventToolError {
		t.Fatalf("events[1].Type = %v, want tool error", got[1].Type)
	}

	// Replayed notifications must not repeat the error marker.
	wake <- struct{}{}
	time.Sleep(50 * time.Millisecond)
	if got = rec.snapshot(); len(got) != 2 {
		t.Errorf("got %d events after replayed wake, want 2", len(got))
	}
}

func TestSuccessfulResultsSilent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	writeLines(t, path, userLine("2025-01-15T10:00:00.000Z"))

	rec := newRecorder()
	wake := make(chan struct{}, 1)
	e := New(path, rec.emit)
	runEngine(t, e, wake)

	writeLines(t, path,
		toolUseLine("2025-01-15T10:01:00.000Z", "t1", "Read", `{"file_path":"/src/main.go"}`),
		toolResultLine("2025-01-15T10:01:01.000Z", "t1", false),
	)
	wake <- struct{}{}

	got := rec.waitFor(t, 1)
	time.Sleep(50 * time.Millisecond)
	if got = rec.snapshot(); len(got) != 1 {
		t.Fatalf("got %d events, want only the tool use", len(got))
	}
	if got[0].Target != "main.go" {
		t.Errorf("Target = %q, want basename", got[0].Target)
	}
}

func TestCursorResetReplaySuppressed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	writeLines(t, path,
		toolUseLine("2025-01-15T10:00:00.000Z", "t1", "Bash", `{"command":"exit 1"}`),
		toolResultLine("2025-01-15T10:00:02.000Z", "t1", true),
	)

	rec := newRecorder()
	e := New(path, rec.emit)
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := e.consume(f, true); err != nil {
		t.Fatal(err)
	}
	got := rec.snapshot()
	if len(got) != 2 || got[0].Type != EventToolUse || got[1].Type != EventToolError {
		t.Fatalf("events = %+v, want tool use then tool error", got)
	}

	// A truncated file resets the cursor; re-reading the same ids must not
	// repeat either the use or the error marker.
	e.offset = 0
	if err := e.consume(f, true); err != nil {
		t.Fatal(err)
	}
	if got = rec.snapshot(); len(got) != 2 {
		t.Errorf("got %d events after cursor reset, want 2", len(got))
	}
}

func TestPartialLineHeldUntilComplete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	writeLines(t, path, userLine("2025-01-15T10:00:00.000Z"))

	rec := newRecorder()
	wake := make(chan struct{}, 2)
	e := New(path, rec.emit)
	runEngine(t, e, wake)

	line := userLine("2025-01-15T10:02:00.000Z") + "\n"
	half := len(line) / 2
	appendRaw(t, path, line[:half])
	wake <- struct{}{}
	time.Sleep(50 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("partial line produced %d events, want 0", len(got))
	}

	appendRaw(t, path, line[half:])
	wake <- struct{}{}
	got := rec.waitFor(t, 1)
	if got[0].Type != EventUserMessage {
		t.Errorf("event type = %v, want user message", got[0].Type)
	}
}

func TestMalformedAppendedLineSkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	writeLines(t, path, userLine("2025-01-15T10:00:00.000Z"))

	rec := newRecorder()
	wake := make(chan struct{}, 1)
	e := New(path, rec.emit)
	runEngine(t, e, wake)

	writeLines(t, path,
		"{not json",
		userLine("2025-01-15T10:03:00.000Z"),
	)
	wake <- struct{}{}

	got := rec.waitFor(t, 1)
	if got[0].Type != EventUserMessage {
		t.Errorf("event type = %v, want user message", got[0].Type)
	}
}

func TestRunFailsOnMissingFile(t *testing.T) {
	e := New(filepath.Join(t.TempDir(), "gone.jsonl"), func(Event) {})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.Run(ctx); err == nil {
		t.Fatal("Run on missing file returned nil error")
	}
}
