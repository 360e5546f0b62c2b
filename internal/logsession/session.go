package logsession

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/velocidi/adstax-spark-job-manager/internal/dispatcher"
	"github.com/velocidi/adstax-spark-job-manager/internal/logging"
	"github.com/velocidi/adstax-spark-job-manager/internal/mesos"
)

const (
	streamStdout = "stdout"
	streamStderr = "stderr"
)

// Options selects the session mode.
type Options struct {
	// Follow keeps capturing and tailing until the context is cancelled.
	Follow bool
	// ShowStderr includes the stderr stream alongside stdout.
	ShowStderr bool
}

// Params wires a Session.
type Params struct {
	Dispatcher *dispatcher.Client
	Locator    *mesos.Locator
	Reader     Reader

	// CaptureDir is the directory session buffers are created under.
	CaptureDir string
	ChunkSize  int64
	// PollInterval is the delay between incremental remote reads.
	PollInterval time.Duration
	// TailInterval is the delay between local buffer scans.
	TailInterval time.Duration
	// QueueInterval is the delay between status polls while queued.
	QueueInterval time.Duration
	// TailLines is the backward window emitted before following.
	TailLines int

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Session locates a submission's logs and streams them locally, either as a
// one-shot snapshot or as a continuously-following tail.
type Session struct {
	p      Params
	logger *slog.Logger
}

// New creates a Session from the supplied parameters.
func New(p Params) *Session {
	if p.Logger == nil {
		p.Logger = logging.NewNop()
	}
	return &Session{p: p, logger: p.Logger.With(slog.String("component", "logsession"))}
}

// Run resolves the submission and streams its logs according to opts. In
// follow mode the only way out is cancellation, returned as ctx.Err(); every
// resolution failure is terminal.
func (s *Session) Run(ctx context.Context, submissionID string, opts Options) error {
	status, err := s.p.Dispatcher.Status(ctx, submissionID)
	if err != nil {
		return err
	}

	switch status.DriverState {
	case dispatcher.StateNotFound:
		return fmt.Errorf("%w: %s", ErrSubmissionNotFound, submissionID)
	case dispatcher.StateQueued:
		if !opts.Follow {
			return fmt.Errorf("%w: %s", ErrSubmissionStillQueued, submissionID)
		}
		if err := s.waitWhileQueued(ctx, submissionID); err != nil {
			return err
		}
	}

	location, err := s.p.Locator.Locate(ctx, submissionID)
	if err != nil {
		return err
	}
	s.logger.Info("located submission",
		slog.String("submission_id", submissionID),
		slog.String("agent", location.Agent),
		slog.String("directory", location.Directory))

	sessionDir := filepath.Join(s.p.CaptureDir, uuid.NewString())
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	defer os.RemoveAll(sessionDir)

	lock := flock.New(filepath.Join(sessionDir, "capture.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock session directory: %w", err)
	}
	if !locked {
		return fmt.Errorf("session directory %s already locked", sessionDir)
	}
	defer lock.Unlock()

	streams := s.streams(opts)
	if !opts.Follow {
		return s.snapshot(ctx, location, sessionDir, streams)
	}
	return s.follow(ctx, location, sessionDir, streams)
}

type stream struct {
	name string
	out  io.Writer
}

// streams lists the logical streams in print order: stderr first when
// requested, stdout always.
func (s *Session) streams(opts Options) []stream {
	out := make([]stream, 0, 2)
	if opts.ShowStderr {
		out = append(out, stream{name: streamStderr, out: s.p.Stderr})
	}
	return append(out, stream{name: streamStdout, out: s.p.Stdout})
}

func (s *Session) waitWhileQueued(ctx context.Context, submissionID string) error {
	s.logger.Info("submission queued, waiting for it to start",
		slog.String("submission_id", submissionID))

	ticker := time.NewTicker(s.p.QueueInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		status, err := s.p.Dispatcher.Status(ctx, submissionID)
		if err != nil {
			return err
		}
		switch status.DriverState {
		case dispatcher.StateQueued:
			continue
		case dispatcher.StateNotFound:
			return fmt.Errorf("%w: %s", ErrSubmissionNotFound, submissionID)
		default:
			s.logger.Info("submission left the queue",
				slog.String("submission_id", submissionID),
				slog.String("state", string(status.DriverState)))
			return nil
		}
	}
}

// snapshot captures every stream fully, then prints the buffers in order.
func (s *Session) snapshot(ctx context.Context, location mesos.Location, sessionDir string, streams []stream) error {
	for _, st := range streams {
		capture := NewCapture(s.p.Reader, location.Agent,
			location.Directory+"/"+st.name, filepath.Join(sessionDir, st.name),
			s.p.ChunkSize, s.p.PollInterval, s.logger)
		if err := capture.Snapshot(ctx); err != nil {
			return err
		}
	}
	for _, st := range streams {
		if err := printFile(filepath.Join(sessionDir, st.name), st.out); err != nil {
			return err
		}
	}
	return nil
}

// follow runs one capture and one watcher per stream over the same buffer.
// The capture is the buffer's only writer; the watcher polls it and tolerates
// seeing a prefix of the final content. Only cancellation ends the loop,
// unless a capture or watcher fails first.
func (s *Session) follow(ctx context.Context, location mesos.Location, sessionDir string, streams []stream) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 2*len(streams))

	for _, st := range streams {
		localPath := filepath.Join(sessionDir, st.name)
		capture := NewCapture(s.p.Reader, location.Agent,
			location.Directory+"/"+st.name, localPath,
			s.p.ChunkSize, s.p.PollInterval, s.logger)
		watcher := NewWatcher(localPath, s.p.TailLines, s.p.TailInterval, st.out)

		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := capture.Follow(ctx); err != nil {
				errCh <- err
				cancel()
			}
		}()
		go func() {
			defer wg.Done()
			if err := watcher.Watch(ctx); err != nil {
				errCh <- err
				cancel()
			}
		}()
	}

	wg.Wait()
	close(errCh)

	// Prefer a real failure over the cancellation it triggered.
	var first error
	for err := range errCh {
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if first == nil {
				first = err
			}
			continue
		}
		first = err
		break
	}
	return first
}

func printFile(path string, out io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open local buffer: %w", err)
	}
	defer file.Close()
	if _, err := io.Copy(out, file); err != nil {
		return fmt.Errorf("print local buffer: %w", err)
	}
	return nil
}
