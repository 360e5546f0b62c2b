package config

import (
	"fmt"
	"net/url"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeCluster(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLog()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeCluster() error {
	var err error
	if c.Cluster.AdStaxURL, err = normalizeEndpoint(c.Cluster.AdStaxURL); err != nil {
		return fmt.Errorf("cluster.adstax_url: %w", err)
	}
	if c.Cluster.DispatcherURL, err = normalizeEndpoint(c.Cluster.DispatcherURL); err != nil {
		return fmt.Errorf("cluster.dispatcher_url: %w", err)
	}
	if c.Cluster.RequestTimeout <= 0 {
		c.Cluster.RequestTimeout = defaultRequestTimeout
	}
	if strings.TrimSpace(c.Cluster.SparkVersion) == "" {
		c.Cluster.SparkVersion = defaultSparkVersion
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Log.CaptureDir) == "" {
		c.Log.CaptureDir = defaultCaptureDir
	}
	if c.Log.CaptureDir, err = expandPath(c.Log.CaptureDir); err != nil {
		return fmt.Errorf("log.capture_dir: %w", err)
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLog() {
	if c.Log.ChunkSize <= 0 {
		c.Log.ChunkSize = defaultChunkSize
	}
	if c.Log.PollIntervalMillis <= 0 {
		c.Log.PollIntervalMillis = defaultPollIntervalMillis
	}
	if c.Log.TailIntervalMillis <= 0 {
		c.Log.TailIntervalMillis = defaultTailIntervalMillis
	}
	if c.Log.QueueIntervalMillis <= 0 {
		c.Log.QueueIntervalMillis = defaultQueueIntervalMillis
	}
	if c.Log.TailLines <= 0 {
		c.Log.TailLines = defaultTailLines
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// normalizeEndpoint trims whitespace and trailing slashes and supplies an
// http scheme when the value carries none. Empty values pass through so
// validation can report which commands need them.
func normalizeEndpoint(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if !strings.Contains(value, "://") {
		value = "http://" + value
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", err
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host in %q", value)
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}
