package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if resolved != path {
		t.Fatalf("resolved = %q", resolved)
	}
	if cfg.Fetcher.MaxFetchMiB != defaultMaxFetchMiB {
		t.Fatalf("fetcher default lost: %d", cfg.Fetcher.MaxFetchMiB)
	}
	if len(cfg.Resolver.ProviderOrder) != 3 {
		t.Fatalf("provider order default lost: %v", cfg.Resolver.ProviderOrder)
	}
}

func TestLoadPartialFileKeepsOtherDefaults(t *testing.T) {
	path := writeConfig(t, `
[resolver]
provider_order = ["whisper"]
language = "en"

[providers.omni]
enabled = true
api_key = "sk-test"
`)
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected file to exist")
	}
	if got := cfg.Resolver.ProviderOrder; len(got) != 1 || got[0] != "whisper" {
		t.Fatalf("provider order = %v", got)
	}
	if cfg.Resolver.Language != "en" {
		t.Fatalf("language = %q", cfg.Resolver.Language)
	}
	if cfg.Providers.Omni.Model != defaultOmniModel {
		t.Fatalf("omni model default lost: %q", cfg.Providers.Omni.Model)
	}
	if cfg.Providers.FileTrans.PollIntervalSeconds != defaultFileTransPollInterval {
		t.Fatalf("filetrans defaults lost")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, `
[resolver]
provider_order = ["filetrans", "skynet"]
`)
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "skynet") {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestLoadRejectsDuplicateProvider(t *testing.T) {
	path := writeConfig(t, `
[resolver]
provider_order = ["whisper", "whisper"]
`)
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "listed twice") {
		t.Fatalf("expected duplicate provider error, got %v", err)
	}
}

func TestLoadRequiresCredentialsForEnabledVendors(t *testing.T) {
	path := writeConfig(t, `
[providers.filetrans]
enabled = true
`)
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "filetrans") {
		t.Fatalf("expected filetrans credential error, got %v", err)
	}
}

func TestLoadRequiresAtLeastOneProvider(t *testing.T) {
	path := writeConfig(t, `
[providers.whisper]
enabled = false
`)
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "no ASR provider") {
		t.Fatalf("expected no-provider error, got %v", err)
	}
}

func TestNormalizeExpandsTilde(t *testing.T) {
	path := writeConfig(t, `
[paths]
data_dir = "~/vidscribe-data"
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.HasPrefix(cfg.Paths.DataDir, "~") {
		t.Fatalf("tilde not expanded: %q", cfg.Paths.DataDir)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("path not absolute: %q", cfg.Paths.DataDir)
	}
}

func TestValidateRejectsBadLogging(t *testing.T) {
	path := writeConfig(t, `
[logging]
format = "xml"
`)
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging format error, got %v", err)
	}
}
