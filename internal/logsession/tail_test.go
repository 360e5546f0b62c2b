package logsession

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a concurrency-safe writer for collecting watcher output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func appendBuffer(t *testing.T, path, data string) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open buffer: %v", err)
	}
	defer file.Close()
	if _, err := file.WriteString(data); err != nil {
		t.Fatalf("append buffer: %v", err)
	}
}

func waitForOutput(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), want) {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("output never contained %q; have %q", want, out.String())
}

func TestWatcherEmitsBackwardWindowFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdout")
	var existing strings.Builder
	for i := 1; i <= 15; i++ {
		fmt.Fprintf(&existing, "line %d\n", i)
	}
	appendBuffer(t, path, existing.String())

	out := &syncBuffer{}
	watcher := NewWatcher(path, 10, time.Millisecond, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Watch(ctx) }()

	waitForOutput(t, out, "line 15\n")
	appendBuffer(t, path, "line 16\n")
	waitForOutput(t, out, "line 16\n")
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Watch returned %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("expected 10 window lines plus one appended, got %d: %v", len(lines), lines)
	}
	// The window holds exactly the last 10 pre-existing lines, in order.
	for i := 0; i < 10; i++ {
		want := fmt.Sprintf("line %d", i+6)
		if lines[i] != want {
			t.Fatalf("window line %d = %q, want %q", i, lines[i], want)
		}
	}
	if lines[10] != "line 16" {
		t.Fatalf("appended line = %q", lines[10])
	}
}

func TestWatcherHoldsBackUnterminatedBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdout")
	appendBuffer(t, path, "complete line\n")

	out := &syncBuffer{}
	watcher := NewWatcher(path, 10, time.Millisecond, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- watcher.Watch(ctx) }()

	waitForOutput(t, out, "complete line\n")
	appendBuffer(t, path, "partial")
	time.Sleep(20 * time.Millisecond)
	if got := out.String(); strings.Contains(got, "partial") {
		t.Fatalf("unterminated bytes emitted early: %q", got)
	}

	appendBuffer(t, path, " now done\n")
	waitForOutput(t, out, "partial now done\n")
	cancel()
	<-done
}

func TestWatcherToleratesMissingBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdout")

	out := &syncBuffer{}
	watcher := NewWatcher(path, 10, time.Millisecond, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- watcher.Watch(ctx) }()

	// Buffer appears only after the watcher started.
	time.Sleep(5 * time.Millisecond)
	appendBuffer(t, path, "late arrival\n")
	waitForOutput(t, out, "late arrival\n")
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Watch returned %v", err)
	}
}

func TestSplitCompleteLines(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		lines    []string
		consumed int
	}{
		{"empty", "", nil, 0},
		{"no terminator", "pending", nil, 0},
		{"single line", "a\n", []string{"a"}, 2},
		{"trailing partial", "a\nb\nc", []string{"a", "b"}, 4},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}, 6},
		{"blank line", "\n", []string{""}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, consumed := splitCompleteLines([]byte(tt.data))
			if consumed != tt.consumed {
				t.Fatalf("consumed = %d, want %d", consumed, tt.consumed)
			}
			if len(lines) != len(tt.lines) {
				t.Fatalf("lines = %v, want %v", lines, tt.lines)
			}
			for i := range lines {
				if lines[i] != tt.lines[i] {
					t.Fatalf("line %d = %q, want %q", i, lines[i], tt.lines[i])
				}
			}
		})
	}
}
