package filetrans

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/time/rate"

	"vidscribe/internal/asr"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
)

// Billing floor: the vendor charges a minimum of 15 seconds per task.
const minBilledSeconds = 15

// Config captures runtime settings for the filetrans provider.
type Config struct {
	PollInterval  time.Duration
	MaxWait       time.Duration
	PricePerHour  float64
	MaxInputBytes int64
}

// Provider adapts the filetrans client to the asr.Provider contract.
type Provider struct {
	client *Client
	cfg    Config
	logger *slog.Logger
}

// NewProvider wraps a filetrans client in the provider contract.
func NewProvider(client *Client, cfg Config, logger *slog.Logger) *Provider {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = time.Minute
	}
	return &Provider{
		client: client,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "filetrans"),
	}
}

// Name identifies this backend in provider chains and transcript provenance.
func (p *Provider) Name() string { return "filetrans" }

// MaxInputBytes returns the input capability limit.
func (p *Provider) MaxInputBytes() int64 { return p.cfg.MaxInputBytes }

// EstimateCost predicts the duration-based charge for the asset, honoring the
// vendor's billing floor. Unknown durations estimate as the floor.
func (p *Provider) EstimateCost(asset media.Asset) float64 {
	seconds := asset.DurationSeconds
	if seconds < minBilledSeconds {
		seconds = minBilledSeconds
	}
	return round4(seconds / 3600 * p.cfg.PricePerHour)
}

// Transcribe submits the asset's source URL and polls for the result. This
// backend consumes media by reference: the vendor fetches the bytes itself,
// so the asset must have come from an addressable URL.
func (p *Provider) Transcribe(ctx context.Context, asset media.Asset, languageHint string) (asr.Transcript, error) {
	var empty asr.Transcript
	if err := asr.CheckInputSize(p.Name(), asset, p.cfg.MaxInputBytes); err != nil {
		return empty, err
	}
	if asset.SourceURL == "" {
		return empty, asr.Wrap(asr.ErrUnsupportedFormat, p.Name(), "transcribe",
			"backend requires an addressable media url", nil)
	}

	taskID, err := p.client.Submit(ctx, asset.SourceURL)
	if err != nil {
		return empty, err
	}
	p.logger.Debug("task submitted", logging.String("task_id", taskID))

	state, err := p.waitForResult(ctx, taskID)
	if err != nil {
		return empty, err
	}

	seconds := state.DurationSeconds
	if seconds <= 0 {
		seconds = asset.DurationSeconds
	}
	billed := seconds
	if billed < minBilledSeconds {
		billed = minBilledSeconds
	}
	return asr.Transcript{
		Text: state.Text,
		Cost: round4(billed / 3600 * p.cfg.PricePerHour),
	}, nil
}

// waitForResult polls until the task completes or the wait budget expires.
// The limiter paces polls; the deadline bounds the whole wait so a vendor
// that never finishes cannot hold the chain hostage.
func (p *Provider) waitForResult(ctx context.Context, taskID string) (TaskState, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.MaxWait)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(p.cfg.PollInterval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() == context.Canceled {
				return TaskState{}, asr.Wrap(asr.ErrUnknown, p.Name(), "poll", "wait aborted", err)
			}
			// The limiter fails fast when the next poll slot cannot fit
			// inside the remaining wait budget, before the deadline itself
			// fires. Either way the budget is spent.
			return TaskState{}, asr.Wrap(asr.ErrTimeout, p.Name(), "poll",
				"task did not complete within wait budget", err)
		}
		state, err := p.client.Poll(ctx, taskID)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return TaskState{}, asr.Wrap(asr.ErrTimeout, p.Name(), "poll",
					"task did not complete within wait budget", err)
			}
			return TaskState{}, err
		}
		if state.Done {
			return state, nil
		}
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
