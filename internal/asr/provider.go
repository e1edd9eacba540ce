package asr

import (
	"context"

	"vidscribe/internal/media"
)

// Transcript is the output of a single successful provider call. Cost is in
// currency-agnostic units derived from the backend's documented unit price;
// backends that report no usage metric must still return a zero cost with a
// nil Confidence rather than omitting the record.
type Transcript struct {
	Text       string
	Cost       float64
	Confidence *float64
}

// Provider is the uniform contract every ASR backend implements.
//
// Transcribe must reject inputs above MaxInputBytes before any network call
// so oversized media never burns vendor quota. languageHint is a normalized
// ISO 639-1 code and may be empty.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, asset media.Asset, languageHint string) (Transcript, error)
	EstimateCost(asset media.Asset) float64
	MaxInputBytes() int64
}

// CheckInputSize is the shared pre-flight guard backends call before spending
// network budget on an asset.
func CheckInputSize(provider string, asset media.Asset, limit int64) error {
	if limit > 0 && asset.SizeBytes > limit {
		return Wrap(ErrUnsupportedFormat, provider, "transcribe",
			"media exceeds provider input limit", nil)
	}
	return nil
}

// ConfidenceValue is a convenience for constructing optional confidences.
func ConfidenceValue(v float64) *float64 {
	return &v
}
