package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownProviders = map[string]struct{}{
	"filetrans": {},
	"omni":      {},
	"whisper":   {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateResolver() error {
	seen := make(map[string]struct{}, len(c.Resolver.ProviderOrder))
	for _, name := range c.Resolver.ProviderOrder {
		if _, ok := knownProviders[name]; !ok {
			return fmt.Errorf("resolver.provider_order: unknown provider %q", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("resolver.provider_order: provider %q listed twice", name)
		}
		seen[name] = struct{}{}
	}
	if !c.anyProviderEnabled() {
		return errors.New("no ASR provider is enabled; enable at least one [providers.*] block")
	}
	return nil
}

func (c *Config) anyProviderEnabled() bool {
	return c.Providers.FileTrans.Enabled || c.Providers.Omni.Enabled || c.Providers.Whisper.Enabled
}

func (c *Config) validateProviders() error {
	if c.Providers.FileTrans.Enabled {
		if strings.TrimSpace(c.Providers.FileTrans.APIKey) == "" {
			return errors.New("providers.filetrans.api_key must be set when providers.filetrans.enabled is true")
		}
		if strings.TrimSpace(c.Providers.FileTrans.AppKey) == "" {
			return errors.New("providers.filetrans.app_key must be set when providers.filetrans.enabled is true")
		}
	}
	if c.Providers.Omni.Enabled && strings.TrimSpace(c.Providers.Omni.APIKey) == "" {
		return errors.New("providers.omni.api_key must be set when providers.omni.enabled is true")
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
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
