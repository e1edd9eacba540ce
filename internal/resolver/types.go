package resolver

import (
	"time"

	"vidscribe/internal/asr"
	"vidscribe/internal/fetcher"
	"vidscribe/internal/media"
)

// Transcript sources, recorded on every outcome so downstream consumers can
// tell native captions from machine transcription.
const (
	SourceNativeSubtitle = "native_subtitle"
	SourceNone           = "none"

	asrSourcePrefix = "asr_"
)

// ASRSource names the transcript source for a given provider.
func ASRSource(providerName string) string {
	return asrSourcePrefix + providerName
}

// Attempt records one failed step of a resolution. Earlier attempts are never
// discarded; the outcome carries the full ordered list.
type Attempt struct {
	Provider string   `json:"provider"`
	Kind     asr.Kind `json:"kind"`
	Message  string   `json:"message"`
}

// Outcome is the terminal result of a single resolution.
type Outcome struct {
	ResolutionID string
	SourceURL    string
	Platform     media.Platform
	Title        string
	Author       string

	Text       string
	Source     string
	Cost       float64
	Confidence *float64

	Attempts []Attempt
	Duration time.Duration
}

// Succeeded reports whether the resolution produced transcript text.
func (o Outcome) Succeeded() bool {
	return o.Source != SourceNone && o.Text != ""
}

// Options bounds a resolver's behavior.
type Options struct {
	// ScratchDir is the base directory working copies of media live under.
	ScratchDir string
	// FetchBudget caps the single media download shared by all providers.
	FetchBudget fetcher.Budget
	// PerProviderTimeout bounds each individual transcription attempt.
	PerProviderTimeout time.Duration
	// ResolutionTimeout bounds the whole resolution including retries.
	ResolutionTimeout time.Duration
	// TimeoutBackoff is the pause before the single retry after a timeout.
	TimeoutBackoff time.Duration
	// Language is the normalized language hint passed to providers. May be
	// empty.
	Language string
}
