package testsupport

import (
	"path/filepath"
	"testing"

	"vidscribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.Locator.CookieFile = filepath.Join(base, "cookies.txt")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithProviderOrder overrides the fallback chain order on the test config.
func WithProviderOrder(order ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolver.ProviderOrder = order
	}
}

// WithFileTrans enables the submit-and-poll backend with test credentials.
func WithFileTrans(appKey, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Providers.FileTrans.Enabled = true
		b.cfg.Providers.FileTrans.AppKey = appKey
		b.cfg.Providers.FileTrans.APIKey = apiKey
	}
}

// WithOmni enables the multimodal backend with a test API key.
func WithOmni(apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Providers.Omni.Enabled = true
		b.cfg.Providers.Omni.APIKey = apiKey
	}
}

// WithWhisperDisabled switches off the local backend, which is on by default.
func WithWhisperDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Providers.Whisper.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
