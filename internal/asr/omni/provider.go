package omni

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math"
	"os"

	"vidscribe/internal/asr"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
)

// Config captures runtime settings for the omni provider.
type Config struct {
	// InputTokenPrice and OutputTokenPrice are per 1K tokens.
	InputTokenPrice  float64
	OutputTokenPrice float64
	MaxInputBytes    int64
}

// Rough planning figure for duration-based estimates before the vendor
// reports real token usage.
const estimatedTokensPerSecond = 25

// Provider adapts the omni client to the asr.Provider contract.
type Provider struct {
	client *Client
	cfg    Config
	logger *slog.Logger
}

// NewProvider wraps an omni client in the provider contract.
func NewProvider(client *Client, cfg Config, logger *slog.Logger) *Provider {
	return &Provider{
		client: client,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "omni"),
	}
}

// Name identifies this backend in provider chains and transcript provenance.
func (p *Provider) Name() string { return "omni" }

// MaxInputBytes returns the input capability limit.
func (p *Provider) MaxInputBytes() int64 { return p.cfg.MaxInputBytes }

// EstimateCost predicts a token-based charge from the asset duration. With no
// duration there is nothing to price against, so the estimate is zero.
func (p *Provider) EstimateCost(asset media.Asset) float64 {
	if asset.DurationSeconds <= 0 {
		return 0
	}
	tokens := asset.DurationSeconds * estimatedTokensPerSecond
	return round4(tokens / 1000 * p.cfg.InputTokenPrice)
}

// Transcribe sends the media in one synchronous generation call. Media is
// passed by URL when the asset has one; otherwise the local bytes are inlined
// as a data URI, which is why the provider's input ceiling matters.
func (p *Provider) Transcribe(ctx context.Context, asset media.Asset, languageHint string) (asr.Transcript, error) {
	var empty asr.Transcript
	if err := asr.CheckInputSize(p.Name(), asset, p.cfg.MaxInputBytes); err != nil {
		return empty, err
	}

	mediaRef := asset.SourceURL
	if mediaRef == "" {
		encoded, err := p.inlineAsset(asset)
		if err != nil {
			return empty, err
		}
		mediaRef = encoded
	}

	text, usage, err := p.client.Generate(ctx, mediaRef, asset.IsVideo(), languageHint)
	if err != nil {
		return empty, err
	}

	transcript := asr.Transcript{Text: text}
	if usage.InputTokens > 0 || usage.OutputTokens > 0 {
		transcript.Cost = round4(
			float64(usage.InputTokens)/1000*p.cfg.InputTokenPrice +
				float64(usage.OutputTokens)/1000*p.cfg.OutputTokenPrice)
		p.logger.Debug("usage reported",
			logging.Int64("input_tokens", usage.InputTokens),
			logging.Int64("output_tokens", usage.OutputTokens),
			logging.Float64("cost", transcript.Cost),
		)
	}
	return transcript, nil
}

func (p *Provider) inlineAsset(asset media.Asset) (string, error) {
	data, err := os.ReadFile(asset.Path)
	if err != nil {
		return "", asr.Wrap(asr.ErrUnknown, p.Name(), "transcribe", "read media asset", err)
	}
	if p.cfg.MaxInputBytes > 0 && int64(len(data)) > p.cfg.MaxInputBytes {
		return "", asr.Wrap(asr.ErrUnsupportedFormat, p.Name(), "transcribe",
			"media exceeds provider input limit", nil)
	}
	mimeType := asset.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
