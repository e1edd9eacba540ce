package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"vidscribe/internal/asr"
	"vidscribe/internal/asr/filetrans"
	"vidscribe/internal/asr/omni"
	"vidscribe/internal/asr/whisper"
	"vidscribe/internal/config"
	"vidscribe/internal/fetcher"
	"vidscribe/internal/locator"
	"vidscribe/internal/resolver"
)

const mebibyte = 1024 * 1024

// buildResolver assembles the full pipeline from configuration. The HTTP
// client is shared by the locator, the fetcher, and every network-backed
// provider.
func buildResolver(cfg *config.Config, logger *slog.Logger, language string) (*resolver.Resolver, error) {
	httpClient := &http.Client{}

	loc := locator.NewClient(
		cfg.Locator.BaseURL,
		time.Duration(cfg.Locator.RequestTimeout)*time.Second,
		logger,
		locator.WithHTTPClient(httpClient),
	)
	fet := fetcher.New(httpClient, cfg.Fetcher.MinBytes, logger)

	providers, err := buildProviders(cfg, httpClient, logger)
	if err != nil {
		return nil, err
	}

	opts := resolver.Options{
		ScratchDir: cfg.Paths.ScratchDir,
		FetchBudget: fetcher.Budget{
			MaxBytes:    int64(cfg.Fetcher.MaxFetchMiB) * mebibyte,
			MaxDuration: time.Duration(cfg.Fetcher.TimeoutSeconds) * time.Second,
		},
		PerProviderTimeout: time.Duration(cfg.Resolver.PerProviderTimeoutSeconds) * time.Second,
		ResolutionTimeout:  time.Duration(cfg.Resolver.ResolutionTimeoutSeconds) * time.Second,
		TimeoutBackoff:     time.Duration(cfg.Resolver.TimeoutRetryBackoffSeconds) * time.Second,
		Language:           language,
	}
	return resolver.New(loc, fet, providers, opts, logger), nil
}

// buildProviders constructs the enabled backends in configured chain order.
// Disabled backends in the order are skipped.
func buildProviders(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) ([]asr.Provider, error) {
	providers := make([]asr.Provider, 0, len(cfg.Resolver.ProviderOrder))
	for _, name := range cfg.Resolver.ProviderOrder {
		switch name {
		case "filetrans":
			if !cfg.Providers.FileTrans.Enabled {
				continue
			}
			ft := cfg.Providers.FileTrans
			client := filetrans.NewClient(ft.AppKey, ft.APIKey, ft.BaseURL, filetrans.WithHTTPClient(httpClient))
			providers = append(providers, filetrans.NewProvider(client, filetrans.Config{
				PollInterval:  time.Duration(ft.PollIntervalSeconds) * time.Second,
				MaxWait:       time.Duration(ft.MaxWaitSeconds) * time.Second,
				PricePerHour:  ft.PricePerHour,
				MaxInputBytes: int64(ft.MaxInputMiB) * mebibyte,
			}, logger))
		case "omni":
			if !cfg.Providers.Omni.Enabled {
				continue
			}
			om := cfg.Providers.Omni
			client := omni.NewClient(om.APIKey, om.BaseURL, om.Model,
				time.Duration(om.TimeoutSeconds)*time.Second, omni.WithHTTPClient(httpClient))
			providers = append(providers, omni.NewProvider(client, omni.Config{
				InputTokenPrice:  om.InputTokenPrice,
				OutputTokenPrice: om.OutputTokenPrice,
				MaxInputBytes:    int64(om.MaxInputMiB) * mebibyte,
			}, logger))
		case "whisper":
			if !cfg.Providers.Whisper.Enabled {
				continue
			}
			wh := cfg.Providers.Whisper
			service := whisper.NewService(whisper.Config{
				Model:         wh.Model,
				WhisperBinary: wh.WhisperBinary,
				FFmpegBinary:  wh.FFmpegBinary,
			})
			providers = append(providers, whisper.NewProvider(service, int64(wh.MaxInputMiB)*mebibyte, logger))
		default:
			return nil, fmt.Errorf("unknown provider %q in resolver.provider_order", name)
		}
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no enabled providers in resolver.provider_order")
	}
	return providers, nil
}
