package logsession

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/velocidi/adstax-spark-job-manager/internal/logging"
	"github.com/velocidi/adstax-spark-job-manager/internal/mesos"
)

// Reader is the remote read surface a capture drives.
type Reader interface {
	ReadFile(ctx context.Context, agent, path string, offset, length int64) (mesos.Chunk, error)
	FileLength(ctx context.Context, agent, path string) (int64, error)
}

// Capture copies one remote log stream into an exclusively-owned local
// buffer file. The buffer only ever grows; nothing else writes to it.
type Capture struct {
	reader     Reader
	agent      string
	remotePath string
	localPath  string
	chunkSize  int64
	interval   time.Duration
	logger     *slog.Logger
}

// NewCapture wires a capture for one logical stream. remotePath is the file
// inside the agent sandbox, localPath the buffer this capture owns.
func NewCapture(reader Reader, agent, remotePath, localPath string, chunkSize int64, interval time.Duration, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Capture{
		reader:     reader,
		agent:      agent,
		remotePath: remotePath,
		localPath:  localPath,
		chunkSize:  chunkSize,
		interval:   interval,
		logger:     logger,
	}
}

// Snapshot performs a one-shot full copy: a length query followed by a single
// read of the discovered size. An empty remote file yields an empty buffer
// without a second read.
func (c *Capture) Snapshot(ctx context.Context) error {
	size, err := c.reader.FileLength(ctx, c.agent, c.remotePath)
	if err != nil {
		return fmt.Errorf("discover length of %s: %w", c.remotePath, err)
	}

	file, err := os.OpenFile(c.localPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create local buffer: %w", err)
	}
	defer file.Close()

	if size == 0 {
		return nil
	}

	chunk, err := c.reader.ReadFile(ctx, c.agent, c.remotePath, 0, size)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.remotePath, err)
	}
	if _, err := file.WriteString(chunk.Data); err != nil {
		return fmt.Errorf("write local buffer: %w", err)
	}
	return nil
}

// Follow polls the remote file at a fixed interval, appending every new chunk
// to the local buffer. The read cursor always advances by exactly the payload
// length from the response's own offset, so the buffer holds the remote bytes
// from offset 0 onward with no gap and no duplicate. Runs until ctx is
// cancelled.
func (c *Capture) Follow(ctx context.Context) error {
	file, err := os.OpenFile(c.localPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create local buffer: %w", err)
	}
	defer file.Close()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	var cursor int64
	for {
		chunk, err := c.reader.ReadFile(ctx, c.agent, c.remotePath, cursor, c.chunkSize)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read %s at offset %d: %w", c.remotePath, cursor, err)
		}
		if len(chunk.Data) > 0 {
			if _, err := file.WriteString(chunk.Data); err != nil {
				return fmt.Errorf("append local buffer: %w", err)
			}
			if err := file.Sync(); err != nil {
				return fmt.Errorf("flush local buffer: %w", err)
			}
			c.logger.Debug("appended chunk",
				slog.String("path", c.remotePath),
				slog.Int64("offset", chunk.Offset),
				slog.Int("bytes", len(chunk.Data)))
		}
		cursor = chunk.Offset + int64(len(chunk.Data))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
