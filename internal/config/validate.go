package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCluster(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCluster() error {
	if c.Cluster.DispatcherURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/adstax-spark-job-manager/config.toml"
		}
		return fmt.Errorf("cluster.dispatcher_url is required. Edit %s (create with 'adstax-spark config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateLog() error {
	if c.Log.ChunkSize > 10_000_000 {
		return errors.New("log.chunk_size must not exceed 10000000 bytes")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
