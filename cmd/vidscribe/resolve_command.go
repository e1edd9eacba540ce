package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/language"
	"vidscribe/internal/media"
	"vidscribe/internal/resolver"
	"vidscribe/internal/store"
)

type outcomeView struct {
	ResolutionID string             `json:"resolution_id"`
	URL          string             `json:"url"`
	Platform     string             `json:"platform"`
	Title        string             `json:"title,omitempty"`
	Author       string             `json:"author,omitempty"`
	Text         string             `json:"text"`
	Source       string             `json:"source"`
	Cost         float64            `json:"cost"`
	Confidence   *float64           `json:"confidence,omitempty"`
	Attempts     []resolver.Attempt `json:"attempts"`
	DurationMS   int64              `json:"duration_ms"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOut      bool
		noSave       bool
		languageFlag string
	)

	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Resolve a share link to a transcript",
		Long: `Resolve takes a short-video share link, prefers the platform's native
subtitles, and falls back through the configured transcription backends
until one produces text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			creds, err := media.LoadCredentials(cfg.Locator.CookieFile)
			if err != nil {
				return fmt.Errorf("load credentials: %w", err)
			}
			ref, err := media.ParseReference(args[0], creds)
			if err != nil {
				return err
			}

			hint := cfg.Resolver.Language
			if strings.TrimSpace(languageFlag) != "" {
				hint = languageFlag
			}

			r, err := buildResolver(cfg, logger, language.Normalize(hint))
			if err != nil {
				return err
			}

			outcome := r.Resolve(cmd.Context(), ref)

			if !noSave {
				if err := persistOutcome(cmd, cfg, outcome); err != nil {
					return err
				}
			}

			if jsonOut {
				return writeJSON(cmd, viewFromOutcome(outcome))
			}
			renderOutcome(cmd, outcome)
			if !outcome.Succeeded() {
				return fmt.Errorf("no transcript resolved for %s", ref.ShortCode())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the outcome as JSON")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Skip persisting the outcome")
	cmd.Flags().StringVar(&languageFlag, "language", "", "Language hint override (ISO 639-1)")
	return cmd
}

func persistOutcome(cmd *cobra.Command, cfg *config.Config, outcome resolver.Outcome) error {
	s, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open transcript store: %w", err)
	}
	defer s.Close()

	rec, err := s.Save(cmd.Context(), store.NewRecord(outcome))
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved as record %d\n", rec.ID)
	return nil
}

func viewFromOutcome(outcome resolver.Outcome) outcomeView {
	attempts := outcome.Attempts
	if attempts == nil {
		attempts = []resolver.Attempt{}
	}
	return outcomeView{
		ResolutionID: outcome.ResolutionID,
		URL:          outcome.SourceURL,
		Platform:     string(outcome.Platform),
		Title:        outcome.Title,
		Author:       outcome.Author,
		Text:         outcome.Text,
		Source:       outcome.Source,
		Cost:         outcome.Cost,
		Confidence:   outcome.Confidence,
		Attempts:     attempts,
		DurationMS:   outcome.Duration.Milliseconds(),
	}
}

func renderOutcome(cmd *cobra.Command, outcome resolver.Outcome) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Source: %s\n", outcome.Source)
	if outcome.Title != "" {
		fmt.Fprintf(out, "Title: %s\n", outcome.Title)
	}
	if outcome.Author != "" {
		fmt.Fprintf(out, "Author: %s\n", outcome.Author)
	}
	if outcome.Cost > 0 {
		fmt.Fprintf(out, "Cost: %.4f\n", outcome.Cost)
	}
	fmt.Fprintf(out, "Elapsed: %s\n", outcome.Duration.Round(time.Millisecond))

	if len(outcome.Attempts) > 0 {
		rows := make([][]string, 0, len(outcome.Attempts))
		for _, attempt := range outcome.Attempts {
			rows = append(rows, []string{attempt.Provider, string(attempt.Kind), attempt.Message})
		}
		fmt.Fprintln(out, renderTable([]string{"Provider", "Failure", "Detail"}, rows))
	}

	if outcome.Text != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, outcome.Text)
	}
}
