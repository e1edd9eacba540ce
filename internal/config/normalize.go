package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLocator(); err != nil {
		return err
	}
	c.normalizeFetcher()
	c.normalizeProviders()
	c.normalizeResolver()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = defaultScratchDir
	}
	if c.Paths.ScratchDir, err = ExpandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLocator() error {
	c.Locator.BaseURL = strings.TrimRight(strings.TrimSpace(c.Locator.BaseURL), "/")
	if c.Locator.BaseURL == "" {
		c.Locator.BaseURL = defaultLocatorBaseURL
	}
	if c.Locator.RequestTimeout <= 0 {
		c.Locator.RequestTimeout = defaultLocatorRequestTimeout
	}
	if strings.TrimSpace(c.Locator.CookieFile) != "" {
		expanded, err := ExpandPath(c.Locator.CookieFile)
		if err != nil {
			return fmt.Errorf("locator.cookie_file: %w", err)
		}
		c.Locator.CookieFile = expanded
	}
	return nil
}

func (c *Config) normalizeFetcher() {
	if c.Fetcher.MaxFetchMiB <= 0 {
		c.Fetcher.MaxFetchMiB = defaultMaxFetchMiB
	}
	if c.Fetcher.MinBytes <= 0 {
		c.Fetcher.MinBytes = defaultFetchMinBytes
	}
	if c.Fetcher.TimeoutSeconds <= 0 {
		c.Fetcher.TimeoutSeconds = defaultFetchTimeoutSeconds
	}
}

func (c *Config) normalizeProviders() {
	ft := &c.Providers.FileTrans
	ft.BaseURL = strings.TrimRight(strings.TrimSpace(ft.BaseURL), "/")
	if ft.BaseURL == "" {
		ft.BaseURL = defaultFileTransBaseURL
	}
	if ft.PollIntervalSeconds <= 0 {
		ft.PollIntervalSeconds = defaultFileTransPollInterval
	}
	if ft.MaxWaitSeconds <= 0 {
		ft.MaxWaitSeconds = defaultFileTransMaxWait
	}
	if ft.PricePerHour < 0 {
		ft.PricePerHour = defaultFileTransPricePerHour
	}
	if ft.MaxInputMiB <= 0 {
		ft.MaxInputMiB = defaultFileTransMaxInputMiB
	}

	om := &c.Providers.Omni
	om.BaseURL = strings.TrimRight(strings.TrimSpace(om.BaseURL), "/")
	if om.BaseURL == "" {
		om.BaseURL = defaultOmniBaseURL
	}
	if strings.TrimSpace(om.Model) == "" {
		om.Model = defaultOmniModel
	}
	if om.TimeoutSeconds <= 0 {
		om.TimeoutSeconds = defaultOmniTimeoutSeconds
	}
	if om.MaxInputMiB <= 0 {
		om.MaxInputMiB = defaultOmniMaxInputMiB
	}

	wh := &c.Providers.Whisper
	if strings.TrimSpace(wh.Model) == "" {
		wh.Model = defaultWhisperModel
	}
	if strings.TrimSpace(wh.WhisperBinary) == "" {
		wh.WhisperBinary = defaultWhisperBinary
	}
	if strings.TrimSpace(wh.FFmpegBinary) == "" {
		wh.FFmpegBinary = defaultFFmpegBinary
	}
}

func (c *Config) normalizeResolver() {
	order := make([]string, 0, len(c.Resolver.ProviderOrder))
	for _, name := range c.Resolver.ProviderOrder {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			order = append(order, name)
		}
	}
	if len(order) == 0 {
		order = []string{"filetrans", "omni", "whisper"}
	}
	c.Resolver.ProviderOrder = order

	if c.Resolver.PerProviderTimeoutSeconds <= 0 {
		c.Resolver.PerProviderTimeoutSeconds = defaultPerProviderTimeoutSeconds
	}
	if c.Resolver.ResolutionTimeoutSeconds <= 0 {
		c.Resolver.ResolutionTimeoutSeconds = defaultResolutionTimeoutSeconds
	}
	if c.Resolver.TimeoutRetryBackoffSeconds <= 0 {
		c.Resolver.TimeoutRetryBackoffSeconds = defaultTimeoutRetryBackoffSeconds
	}
	c.Resolver.Language = strings.TrimSpace(c.Resolver.Language)
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
