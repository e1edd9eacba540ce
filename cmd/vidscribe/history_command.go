package main

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"vidscribe/internal/resolver"
	"vidscribe/internal/store"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List resolved transcripts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			s, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOut {
				views := make([]recordView, 0, len(records))
				for _, rec := range records {
					views = append(views, viewFromRecord(rec))
				}
				return writeJSON(cmd, views)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transcripts recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					strconv.FormatInt(rec.ID, 10),
					rec.CreatedAt.Local().Format("2006-01-02 15:04"),
					rec.Platform,
					truncate(firstNonEmpty(rec.Title, rec.VideoURL), 40),
					rec.Source,
					fmt.Sprintf("%.4f", rec.Cost),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Created", "Platform", "Title", "Source", "Cost"},
				rows, 0, 5))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit records as JSON")
	return cmd
}

type recordView struct {
	ID           int64              `json:"id"`
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
	CreatedAt    time.Time          `json:"created_at"`
}

func viewFromRecord(rec store.Record) recordView {
	attempts := rec.Attempts
	if attempts == nil {
		attempts = []resolver.Attempt{}
	}
	return recordView{
		ID:           rec.ID,
		ResolutionID: rec.ResolutionID,
		URL:          rec.VideoURL,
		Platform:     rec.Platform,
		Title:        rec.Title,
		Author:       rec.Author,
		Text:         rec.Text,
		Source:       rec.Source,
		Cost:         rec.Cost,
		Confidence:   rec.Confidence,
		Attempts:     attempts,
		CreatedAt:    rec.CreatedAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
