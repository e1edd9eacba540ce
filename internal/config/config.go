package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
	ScratchDir string `toml:"scratch_dir"`
}

// Locator contains configuration for the platform detail API client.
type Locator struct {
	BaseURL        string `toml:"base_url"`
	CookieFile     string `toml:"cookie_file"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Fetcher contains configuration for the budgeted media downloader.
type Fetcher struct {
	MaxFetchMiB    int   `toml:"max_fetch_mib"`
	MinBytes       int64 `toml:"min_bytes"`
	TimeoutSeconds int   `toml:"timeout_seconds"`
}

// FileTrans contains configuration for the submit-and-poll ASR vendor.
type FileTrans struct {
	Enabled             bool    `toml:"enabled"`
	AppKey              string  `toml:"app_key"`
	APIKey              string  `toml:"api_key"`
	BaseURL             string  `toml:"base_url"`
	PollIntervalSeconds int     `toml:"poll_interval_seconds"`
	MaxWaitSeconds      int     `toml:"max_wait_seconds"`
	PricePerHour        float64 `toml:"price_per_hour"`
	MaxInputMiB         int     `toml:"max_input_mib"`
}

// Omni contains configuration for the synchronous multimodal ASR vendor.
type Omni struct {
	Enabled          bool    `toml:"enabled"`
	APIKey           string  `toml:"api_key"`
	BaseURL          string  `toml:"base_url"`
	Model            string  `toml:"model"`
	TimeoutSeconds   int     `toml:"timeout_seconds"`
	InputTokenPrice  float64 `toml:"input_token_price"`
	OutputTokenPrice float64 `toml:"output_token_price"`
	MaxInputMiB      int     `toml:"max_input_mib"`
}

// Whisper contains configuration for the local offline ASR backend.
type Whisper struct {
	Enabled       bool   `toml:"enabled"`
	Model         string `toml:"model"`
	WhisperBinary string `toml:"whisper_binary"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	MaxInputMiB   int    `toml:"max_input_mib"`
}

// Providers groups the per-backend blocks.
type Providers struct {
	FileTrans FileTrans `toml:"filetrans"`
	Omni      Omni      `toml:"omni"`
	Whisper   Whisper   `toml:"whisper"`
}

// Resolver contains configuration for the fallback chain.
type Resolver struct {
	// ProviderOrder lists enabled backends in the order the chain tries them.
	ProviderOrder              []string `toml:"provider_order"`
	PerProviderTimeoutSeconds  int      `toml:"per_provider_timeout_seconds"`
	ResolutionTimeoutSeconds   int      `toml:"resolution_timeout_seconds"`
	TimeoutRetryBackoffSeconds int      `toml:"timeout_retry_backoff_seconds"`
	Language                   string   `toml:"language"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vidscribe.
//
// Configuration sections by subsystem:
//   - Paths: data, log, and scratch directories
//   - Locator: platform detail API endpoint and cookie bundle
//   - Fetcher: download budgets (size ceiling, minimum viable size, timeout)
//   - Providers: per-backend ASR vendor settings
//   - Resolver: provider ordering, timeouts, retry backoff, language hint
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Locator   Locator   `toml:"locator"`
	Fetcher   Fetcher   `toml:"fetcher"`
	Providers Providers `toml:"providers"`
	Resolver  Resolver  `toml:"resolver"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/vidscribe/config.toml")
}

// SampleConfig returns the annotated sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to the target path.
func CreateSample(target string) error {
	if err := os.WriteFile(target, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
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

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.ScratchDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
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
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("vidscribe.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ExpandPath resolves a leading tilde and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
