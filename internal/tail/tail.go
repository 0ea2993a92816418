// Package tail follows a growing transcript file and reports new session
// activity as it happens. It bootstraps from the existing content, then
// wakes on filesystem change notifications and reads only newly appended
// complete lines, deduplicating tool events by invocation id.
package tail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/salacoste/rafctl/internal/transcript"
)

// EventType classifies the presentation events the engine emits.
type EventType int

const (
	// EventUserMessage marks a user turn.
	EventUserMessage EventType = iota
	// EventToolUse marks a tool invocation; ToolName and Target are set.
	EventToolUse
	// EventToolError marks a failed tool result.
	EventToolError
)

// Event is one live notification. Assistant free text is intentionally
// never emitted; live mode is a terse activity stream, not a mirror of the
// transcript.
type Event struct {
	Type      EventType
	Timestamp time.Time
	ToolName  string
	Target    string
}

// Engine tails a single transcript file. One engine per file; instances
// share no state, so independent files can be watched concurrently.
type Engine struct {
	path string
	emit func(Event)

	// wakeEvery bounds the blocking wait so the loop stays responsive to
	// cancellation even when the file never changes.
	wakeEvery time.Duration

	offset int64

	// Tool uses and tool results are deduplicated independently: a result
	// carries the id of its use, so one shared set would let the use
	// suppress its own result.
	seenUses    map[string]struct{}
	seenResults map[string]struct{}
}

// New creates an engine for the given transcript file that delivers events
// to emit. emit is called from the goroutine that runs Run.
func New(path string, emit func(Event)) *Engine {
	return &Engine{
		path:        path,
		emit:        emit,
		wakeEvery:   500 * time.Millisecond,
		seenUses:    make(map[string]struct{}),
		seenResults: make(map[string]struct{}),
	}
}

// Run bootstraps from the file's current content, registers a filesystem
// watch, and blocks processing appended lines until ctx is cancelled. Any
// failure to open or read the file, or to set up the watch, is returned
// before or during watching; the engine does not limp along half-initialized.
func (e *Engine) Run(ctx context.Context) error {
	f, err := os.Open(e.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", e.path, err)
	}
	defer f.Close()

	if err := e.bootstrap(f); err != nil {
		return fmt.Errorf("bootstrap %s: %w", e.path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(e.path); err != nil {
		return fmt.Errorf("watch %s: %w", e.path, err)
	}

	// Forward raw notifications into a bounded wake channel so the main
	// loop stays single-threaded and testable with a synthetic queue.
	wake := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				select {
				case wake <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return e.watch(ctx, f, wake)
}

// bootstrap consumes everything already written, seeding the seen-id sets
// and leaving the byte cursor at the end of the last complete line. No
// events are emitted for pre-existing content.
func (e *Engine) bootstrap(f *os.File) error {
	return e.consume(f, false)
}

// watch blocks on wake signals with a bounded timeout, reading newly
// appended lines after each wake. Returns nil on cancellation.
func (e *Engine) watch(ctx context.Context, f *os.File, wake <-chan struct{}) error {
	ticker := time.NewTicker(e.wakeEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-wake:
		case <-ticker.C:
		}

		// Truncation (session file rewritten) resets the cursor; the
		// seen sets still suppress already-reported tool events.
		if info, err := os.Stat(e.path); err == nil && info.Size() < e.offset {
			e.offset = 0
		}

		if err := e.consume(f, true); err != nil {
			return fmt.Errorf("read %s: %w", e.path, err)
		}
	}
}

// consume reads complete lines from the cursor to EOF, advancing the cursor
// past each consumed line. A trailing partial line (still being written) is
// left for the next wake. When live is true, genuinely new records are
// emitted as events.
func (e *Engine) consume(f *os.File, live bool) error {
	if _, err := f.Seek(e.offset, io.SeekStart); err != nil {
		return err
	}

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		e.offset += int64(len(line))
		e.handleLine(line[:len(line)-1], live)
	}
}

func (e *Engine) handleLine(line []byte, live bool) {
	if len(line) == 0 {
		return
	}
	rec, err := transcript.DecodeRecord(line)
	if err != nil {
		return
	}

	// User records that only carry tool results are transport for the tool
	// protocol, not a turn; only a block-free user record marks one.
	if live && rec.Kind == transcript.KindUser && len(rec.Blocks) == 0 {
		e.emit(Event{Type: EventUserMessage, Timestamp: rec.Timestamp})
		return
	}

	for _, block := range rec.Blocks {
		switch block.Type {
		case transcript.BlockToolUse:
			if alreadySeen(e.seenUses, block.ID) {
				continue
			}
			if live {
				e.emit(Event{
					Type:      EventToolUse,
					Timestamp: rec.Timestamp,
					ToolName:  block.Name,
					Target:    transcript.ToolTarget(block.Name, block.Input),
				})
			}
		case transcript.BlockToolResult:
			if alreadySeen(e.seenResults, block.ToolUseID) {
				continue
			}
			if live && block.IsError {
				e.emit(Event{Type: EventToolError, Timestamp: rec.Timestamp})
			}
		}
	}
}

// alreadySeen marks id seen in set and reports whether it had been seen
// before. Duplicate notifications for one write replay the same ids; marking
// on first sight keeps event emission idempotent.
func alreadySeen(set map[string]struct{}, id string) bool {
	if id == "" {
		return false
	}
	if _, ok := set[id]; ok {
		return true
	}
	set[id] = struct{}{}
	return false
}

// Offset returns the current resume cursor, in bytes from the start of the
// file. Exposed for tests and diagnostics; the cursor is process-local and
// never persisted.
func (e *Engine) Offset() int64 {
	return e.offset
}
