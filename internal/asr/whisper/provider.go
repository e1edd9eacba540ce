package whisper

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"vidscribe/internal/asr"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
)

// Provider adapts the whisper service to the asr.Provider contract.
type Provider struct {
	service       *Service
	maxInputBytes int64
	logger        *slog.Logger
}

// NewProvider wraps a whisper service in the provider contract.
func NewProvider(service *Service, maxInputBytes int64, logger *slog.Logger) *Provider {
	return &Provider{
		service:       service,
		maxInputBytes: maxInputBytes,
		logger:        logging.NewComponentLogger(logger, "whisper"),
	}
}

// Name identifies this backend in provider chains and transcript provenance.
func (p *Provider) Name() string { return "whisper" }

// MaxInputBytes returns the input capability limit.
func (p *Provider) MaxInputBytes() int64 { return p.maxInputBytes }

// EstimateCost is always zero: the backend runs locally and bills nothing.
func (p *Provider) EstimateCost(media.Asset) float64 { return 0 }

// Transcribe normalizes the asset next to its source file and runs the local
// toolchain on it. The normalized WAV lives in the same scratch directory as
// the asset, so resolution cleanup reclaims it automatically.
func (p *Provider) Transcribe(ctx context.Context, asset media.Asset, languageHint string) (asr.Transcript, error) {
	var empty asr.Transcript
	if err := asr.CheckInputSize(p.Name(), asset, p.maxInputBytes); err != nil {
		return empty, err
	}
	if strings.TrimSpace(asset.Path) == "" {
		return empty, asr.Wrap(asr.ErrUnsupportedFormat, p.Name(), "transcribe", "local media file required", nil)
	}

	workDir := filepath.Dir(asset.Path)
	normalized := filepath.Join(workDir, "normalized.wav")
	if err := p.service.NormalizeAudio(ctx, asset.Path, normalized); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return empty, asr.Wrap(asr.ErrTimeout, p.Name(), "normalize", "transcode deadline exceeded", err)
		}
		return empty, asr.Wrap(asr.ErrUnsupportedFormat, p.Name(), "normalize", "media could not be transcoded", err)
	}

	text, err := p.service.TranscribeFile(ctx, normalized, workDir, languageHint)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return empty, asr.Wrap(asr.ErrTimeout, p.Name(), "transcribe", "transcription deadline exceeded", err)
		}
		return empty, asr.Wrap(asr.ErrUnknown, p.Name(), "transcribe", "local transcription failed", err)
	}

	p.logger.Debug("local transcription complete",
		logging.String("model", p.service.Model()),
		logging.Int("chars", len(text)),
	)
	return asr.Transcript{Text: text}, nil
}
