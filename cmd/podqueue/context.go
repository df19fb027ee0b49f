package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"podqueue/internal/config"
	"podqueue/internal/logging"
	"podqueue/internal/queue"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
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

// baseLogger falls back to a no-op logger when the configured sinks cannot
// be opened, so a broken log directory never blocks queue commands.
func (c *commandContext) baseLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err == nil {
			c.logger, err = logging.NewFromConfig(cfg)
		}
		if err != nil || c.logger == nil {
			c.logger = logging.NewNop()
		}
	})
	return c.logger
}

// withStore opens the store for the duration of fn together with an orderer
// that serializes with every other podqueue process through the configured
// lock file.
func (c *commandContext) withStore(fn func(*queue.Store, *queue.Orderer) error, opts ...queue.OrdererOption) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	all := append(queue.OrdererOptionsFromConfig(cfg), queue.WithLogger(c.baseLogger()))
	all = append(all, opts...)
	return fn(store, queue.NewOrderer(store, all...))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func parseEpisodeID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid episode id %q", raw)
	}
	return id, nil
}
