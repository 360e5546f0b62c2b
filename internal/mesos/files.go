package mesos

import (
	"context"
	"net/url"
	"strconv"
)

// Chunk is the result of one remote file read: the payload and the offset it
// was taken from. For a length query (offset -1) Data is empty and Offset
// carries the file's current length.
type Chunk struct {
	Data   string `json:"data"`
	Offset int64  `json:"offset"`
}

// ReadFile performs one chunked read of a file inside an agent's sandbox via
// the agent's /files/read endpoint. offset -1 with length -1 queries the
// current file length. The response's Offset is authoritative: the next read
// must start at Offset + len(Data), whatever length was requested.
func (c *Client) ReadFile(ctx context.Context, agent, path string, offset, length int64) (Chunk, error) {
	values := url.Values{}
	values.Set("path", path)
	values.Set("offset", strconv.FormatInt(offset, 10))
	values.Set("length", strconv.FormatInt(length, 10))

	var chunk Chunk
	endpoint := "http://" + agent + "/files/read?" + values.Encode()
	if err := c.getJSON(ctx, endpoint, &chunk); err != nil {
		return Chunk{}, err
	}
	return chunk, nil
}

// FileLength reports the current length of a remote file.
func (c *Client) FileLength(ctx context.Context, agent, path string) (int64, error) {
	chunk, err := c.ReadFile(ctx, agent, path, -1, -1)
	if err != nil {
		return 0, err
	}
	return chunk.Offset, nil
}
