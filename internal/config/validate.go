package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateQueue() error {
	switch c.Queue.OutOfRange {
	case OutOfRangeClamp, OutOfRangeReject:
	default:
		return fmt.Errorf("queue.out_of_range must be %q or %q, got %q", OutOfRangeClamp, OutOfRangeReject, c.Queue.OutOfRange)
	}
	if c.Queue.LockTimeout < 0 {
		return errors.New("queue.lock_timeout must be non-negative")
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.BusyTimeoutMillis < 0 {
		return errors.New("store.busy_timeout_ms must be non-negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
