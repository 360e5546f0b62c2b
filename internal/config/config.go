package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Cluster contains the endpoints of the AdStax cluster stack.
type Cluster struct {
	// AdStaxURL is the orchestration layer endpoint used to discover the
	// Mesos leader (GET /v2/info).
	AdStaxURL string `toml:"adstax_url"`
	// DispatcherURL is the Spark dispatcher REST endpoint used for
	// submission create/kill/status requests.
	DispatcherURL  string `toml:"dispatcher_url"`
	RequestTimeout int    `toml:"request_timeout"`
	SparkVersion   string `toml:"spark_version"`
}

// Log contains tuning for submission log capture and tailing.
type Log struct {
	ChunkSize           int    `toml:"chunk_size"`
	PollIntervalMillis  int    `toml:"poll_interval_ms"`
	TailIntervalMillis  int    `toml:"tail_interval_ms"`
	QueueIntervalMillis int    `toml:"queue_poll_interval_ms"`
	TailLines           int    `toml:"tail_lines"`
	CaptureDir          string `toml:"capture_dir"`
}

// History contains configuration for the local submission history store.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for diagnostic log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the job manager.
type Config struct {
	Cluster Cluster `toml:"cluster"`
	Log     Log     `toml:"log"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/adstax-spark-job-manager/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and endpoint URLs normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("adstax.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// RequestTimeout returns the HTTP timeout for single synchronous cluster calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Cluster.RequestTimeout) * time.Second
}

// PollInterval returns the delay between incremental capture reads.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Log.PollIntervalMillis) * time.Millisecond
}

// TailInterval returns the delay between local buffer scans while tailing.
func (c *Config) TailInterval() time.Duration {
	return time.Duration(c.Log.TailIntervalMillis) * time.Millisecond
}

// QueueInterval returns the delay between dispatcher status polls while a
// submission is still queued.
func (c *Config) QueueInterval() time.Duration {
	return time.Duration(c.Log.QueueIntervalMillis) * time.Millisecond
}

// EnsureDirectories creates the directories the CLI writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Log.CaptureDir}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) != "" {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
