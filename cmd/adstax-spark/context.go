package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/velocidi/adstax-spark-job-manager/internal/config"
	"github.com/velocidi/adstax-spark-job-manager/internal/dispatcher"
	"github.com/velocidi/adstax-spark-job-manager/internal/history"
	"github.com/velocidi/adstax-spark-job-manager/internal/logging"
	"github.com/velocidi/adstax-spark-job-manager/internal/mesos"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
	})
}

func (c *commandContext) httpClient() (*http.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return &http.Client{Timeout: cfg.RequestTimeout()}, nil
}

func (c *commandContext) dispatcherClient() (*dispatcher.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	httpClient, err := c.httpClient()
	if err != nil {
		return nil, err
	}
	return dispatcher.New(dispatcher.Config{
		BaseURL:      cfg.Cluster.DispatcherURL,
		SparkVersion: cfg.Cluster.SparkVersion,
		HTTPClient:   httpClient,
	})
}

func (c *commandContext) mesosClient() (*mesos.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	httpClient, err := c.httpClient()
	if err != nil {
		return nil, err
	}
	return mesos.New(mesos.Config{
		AdStaxURL:  cfg.Cluster.AdStaxURL,
		HTTPClient: httpClient,
	})
}

// recordHistory appends an entry to the local history store when enabled.
// History failures never fail the command itself.
func (c *commandContext) recordHistory(ctx context.Context, logger *slog.Logger, entry history.Entry) {
	cfg, err := c.ensureConfig()
	if err != nil || !cfg.History.Enabled || strings.TrimSpace(cfg.History.Path) == "" {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		if logger != nil {
			logger.Warn("open history store", slog.String("error", err.Error()))
		}
		return
	}
	defer store.Close()
	if err := store.Record(ctx, entry); err != nil && logger != nil {
		logger.Warn("record history entry", slog.String("error", err.Error()))
	}
}
