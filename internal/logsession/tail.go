package logsession

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Watcher emits lines appended to a local buffer file. It starts with a
// bounded backward window of the last complete lines, then follows new
// appends by polling. It only ever reads the buffer; partially written
// trailing bytes are held back until their terminator arrives.
type Watcher struct {
	path     string
	window   int
	interval time.Duration
	out      io.Writer
}

// NewWatcher creates a Watcher over the buffer at path, emitting to out.
// window is the number of existing lines shown before following.
func NewWatcher(path string, window int, interval time.Duration, out io.Writer) *Watcher {
	return &Watcher{path: path, window: window, interval: interval, out: out}
}

// Watch emits the backward window and then newly appended complete lines
// until ctx is cancelled. It never returns on its own.
func (w *Watcher) Watch(ctx context.Context) error {
	lines, offset, err := readLastLines(w.path, w.window)
	if err != nil {
		return err
	}
	if err := w.emit(lines); err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		lines, next, err := readForward(w.path, offset)
		if err != nil {
			return err
		}
		if err := w.emit(lines); err != nil {
			return err
		}
		offset = next
	}
}

func (w *Watcher) emit(lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w.out, line); err != nil {
			return fmt.Errorf("emit line: %w", err)
		}
	}
	return nil
}

// readLastLines returns the last limit complete lines of the file and the
// offset just past the final line terminator. A missing file counts as empty.
func readLastLines(path string, limit int) ([]string, int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("read buffer: %w", err)
	}

	lines, consumed := splitCompleteLines(data)
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines, int64(consumed), nil
}

// readForward returns the complete lines appended after offset and the new
// offset past the last terminator seen.
func readForward(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, offset, nil
		}
		return nil, offset, fmt.Errorf("open buffer: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek buffer: %w", err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, offset, fmt.Errorf("read buffer: %w", err)
	}

	lines, consumed := splitCompleteLines(data)
	return lines, offset + int64(consumed), nil
}

// splitCompleteLines splits data into terminated lines and reports how many
// bytes they cover. Bytes after the last terminator are left unconsumed.
func splitCompleteLines(data []byte) ([]string, int) {
	last := bytes.LastIndexByte(data, '\n')
	if last < 0 {
		return nil, 0
	}
	complete := data[:last]
	if len(complete) == 0 {
		return []string{""}, last + 1
	}
	raw := bytes.Split(complete, []byte{'\n'})
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = string(bytes.TrimSuffix(line, []byte{'\r'}))
	}
	return lines, last + 1
}
