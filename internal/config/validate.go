package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Client.TimeoutSeconds <= 0 {
		return errors.New("client.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.APIBind != "" {
		if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
			return fmt.Errorf("paths.api_bind %q: %w", c.Paths.APIBind, err)
		}
	}
	// Unix socket paths are limited to 108 bytes on Linux.
	if len(c.SocketPath()) > 104 {
		return fmt.Errorf("paths.log_dir %q is too long for a unix socket path", c.Paths.LogDir)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json", "styled":
	default:
		return fmt.Errorf("logging.format must be one of %s (got %q)", strings.Join([]string{"console", "json", "styled"}, ", "), c.Logging.Format)
	}
	return nil
}
