package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vidscribe/internal/asr"
	"vidscribe/internal/fetcher"
	"vidscribe/internal/locator"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
)

// Locator resolves a reference to native subtitles, a download URL, or
// not-found.
type Locator interface {
	Locate(ctx context.Context, ref media.Reference) (locator.Result, error)
}

// Fetcher downloads media into scratch storage under a budget.
type Fetcher interface {
	Fetch(ctx context.Context, downloadURL string, budget fetcher.Budget, scratch *media.Scratch) (media.Asset, error)
}

// Resolver drives one reference through the fallback chain: native subtitles
// first, then each configured transcription backend in order until one yields
// text or the chain is exhausted.
type Resolver struct {
	locator   Locator
	fetcher   Fetcher
	providers []asr.Provider
	opts      Options
	logger    *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

// New builds a resolver over the given chain. providers are tried strictly in
// slice order.
func New(loc Locator, fet Fetcher, providers []asr.Provider, opts Options, logger *slog.Logger) *Resolver {
	return &Resolver{
		locator:   loc,
		fetcher:   fet,
		providers: providers,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "resolver"),
		sleep:     sleepContext,
		newID:     uuid.NewString,
	}
}

// WithSleep replaces the retry backoff pause. Tests use this to avoid real
// waiting.
func (r *Resolver) WithSleep(sleep func(ctx context.Context, d time.Duration) error) {
	if sleep != nil {
		r.sleep = sleep
	}
}

// WithIDGenerator replaces resolution ID minting.
func (r *Resolver) WithIDGenerator(newID func() string) {
	if newID != nil {
		r.newID = newID
	}
}

// Resolve runs one reference to its terminal state. The outcome always
// carries the ordered list of failed attempts; scratch storage is reclaimed
// on every exit path.
func (r *Resolver) Resolve(ctx context.Context, ref media.Reference) Outcome {
	start := time.Now()
	outcome := Outcome{
		ResolutionID: r.newID(),
		SourceURL:    ref.SourceURL,
		Platform:     ref.Platform,
		Source:       SourceNone,
	}

	ctx = asr.WithResolutionID(ctx, outcome.ResolutionID)
	if r.opts.ResolutionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.ResolutionTimeout)
		defer cancel()
	}
	log := logging.WithContext(ctx, r.logger)
	log.Info("resolution started",
		logging.String(logging.FieldPlatform, string(ref.Platform)),
		logging.String("source", ref.ShortCode()),
	)

	result, err := r.locator.Locate(ctx, ref)
	if err != nil {
		outcome.Attempts = append(outcome.Attempts, attemptFor("locator", err))
		outcome.Duration = time.Since(start)
		log.Warn("locate failed", logging.Error(err))
		return outcome
	}
	outcome.Title = result.Title
	outcome.Author = result.Author

	switch result.Kind {
	case locator.KindSubtitles:
		if text := locator.JoinCues(result.Cues); text != "" {
			outcome.Text = text
			outcome.Source = SourceNativeSubtitle
			outcome.Duration = time.Since(start)
			log.Info("native subtitles resolved", logging.Int("cues", len(result.Cues)))
			return outcome
		}
		outcome.Attempts = append(outcome.Attempts, Attempt{
			Provider: "locator",
			Kind:     asr.KindUnknown,
			Message:  "native subtitle payload empty",
		})
		outcome.Duration = time.Since(start)
		return outcome
	case locator.KindNotFound:
		outcome.Attempts = append(outcome.Attempts, Attempt{
			Provider: "locator",
			Kind:     asr.KindUnknown,
			Message:  "media not found",
		})
		outcome.Duration = time.Since(start)
		return outcome
	}

	asset, cleanup, err := r.fetchOnce(ctx, result)
	if err != nil {
		outcome.Attempts = append(outcome.Attempts, attemptFor("fetcher", err))
		outcome.Duration = time.Since(start)
		log.Warn("fetch failed", logging.Error(err))
		return outcome
	}
	defer cleanup()
	asset.DurationSeconds = result.DurationSeconds

	r.runChain(ctx, log, asset, &outcome)
	outcome.Duration = time.Since(start)
	return outcome
}

// fetchOnce downloads the media a single time; every provider attempt shares
// the same on-disk asset.
func (r *Resolver) fetchOnce(ctx context.Context, result locator.Result) (media.Asset, func(), error) {
	resolutionID, _ := asr.ResolutionIDFromContext(ctx)
	scratch, err := media.NewScratch(r.opts.ScratchDir, resolutionID)
	if err != nil {
		return media.Asset{}, func() {}, asr.Wrap(asr.ErrUnknown, "fetcher", "scratch", "create scratch directory", err)
	}
	asset, err := r.fetcher.Fetch(ctx, result.DownloadURL, r.opts.FetchBudget, scratch)
	if err != nil {
		scratch.Close()
		return media.Asset{}, func() {}, err
	}
	return asset, func() { scratch.Close() }, nil
}

// runChain walks the providers in order. Auth, quota, and unsupported-format
// failures skip straight to the next backend; a timeout earns exactly one
// retry after a backoff pause.
func (r *Resolver) runChain(ctx context.Context, log *slog.Logger, asset media.Asset, outcome *Outcome) {
	for _, provider := range r.providers {
		transcript, err := r.tryProvider(ctx, asset, provider, outcome)
		if err == nil && transcript.Text != "" {
			outcome.Text = transcript.Text
			outcome.Source = ASRSource(provider.Name())
			outcome.Cost = transcript.Cost
			outcome.Confidence = transcript.Confidence
			log.Info("transcription resolved",
				logging.String(logging.FieldProvider, provider.Name()),
				logging.Float64("cost", transcript.Cost),
			)
			return
		}
		if err == nil {
			outcome.Attempts = append(outcome.Attempts, Attempt{
				Provider: provider.Name(),
				Kind:     asr.KindUnknown,
				Message:  "provider returned empty transcript",
			})
		}
		if ctx.Err() != nil {
			log.Warn("resolution aborted", logging.Error(ctx.Err()))
			return
		}
	}
	log.Warn("all providers exhausted", logging.Int("attempts", len(outcome.Attempts)))
}

// tryProvider runs one backend, retrying once on timeout. Every failure is
// appended to the outcome's attempt list before control moves on.
func (r *Resolver) tryProvider(ctx context.Context, asset media.Asset, provider asr.Provider, outcome *Outcome) (asr.Transcript, error) {
	providerCtx := asr.WithProvider(ctx, provider.Name())
	log := logging.WithContext(providerCtx, r.logger)

	retried := false
	for {
		transcript, err := r.transcribeBounded(providerCtx, provider, asset)
		if err == nil {
			return transcript, nil
		}

		outcome.Attempts = append(outcome.Attempts, attemptFor(provider.Name(), err))
		kind := asr.KindOf(err)
		log.Warn("provider attempt failed",
			logging.String("kind", string(kind)),
			logging.Error(err),
		)

		if !asr.Retriable(err) || retried || ctx.Err() != nil {
			return asr.Transcript{}, err
		}
		if backoffErr := r.sleep(ctx, r.opts.TimeoutBackoff); backoffErr != nil {
			return asr.Transcript{}, err
		}
		retried = true
		log.Info("retrying after timeout",
			logging.Duration("backoff", r.opts.TimeoutBackoff),
		)
	}
}

func (r *Resolver) transcribeBounded(ctx context.Context, provider asr.Provider, asset media.Asset) (asr.Transcript, error) {
	if r.opts.PerProviderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.PerProviderTimeout)
		defer cancel()
	}
	return provider.Transcribe(ctx, asset, r.opts.Language)
}

func attemptFor(provider string, err error) Attempt {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Attempt{Provider: provider, Kind: asr.KindOf(err), Message: msg}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
