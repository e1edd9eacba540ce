package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/store"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id|url>",
		Short: "Show a stored transcript by record ID or video URL",
		Args:  cobra.ExactArgs(1),
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

			rec, err := lookupRecord(cmd, s, args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, viewFromRecord(rec))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Record: %d\n", rec.ID)
			fmt.Fprintf(out, "URL: %s\n", rec.VideoURL)
			fmt.Fprintf(out, "Platform: %s\n", rec.Platform)
			if rec.Title != "" {
				fmt.Fprintf(out, "Title: %s\n", rec.Title)
			}
			if rec.Author != "" {
				fmt.Fprintf(out, "Author: %s\n", rec.Author)
			}
			fmt.Fprintf(out, "Source: %s\n", rec.Source)
			if rec.Cost > 0 {
				fmt.Fprintf(out, "Cost: %.4f\n", rec.Cost)
			}
			fmt.Fprintf(out, "Created: %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			if len(rec.Attempts) > 0 {
				rows := make([][]string, 0, len(rec.Attempts))
				for _, attempt := range rec.Attempts {
					rows = append(rows, []string{attempt.Provider, string(attempt.Kind), attempt.Message})
				}
				fmt.Fprintln(out, renderTable([]string{"Provider", "Failure", "Detail"}, rows))
			}
			if rec.Text != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, rec.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the record as JSON")
	return cmd
}

func lookupRecord(cmd *cobra.Command, s *store.Store, key string) (store.Record, error) {
	key = strings.TrimSpace(key)
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		return s.GetByID(cmd.Context(), id)
	}
	return s.GetByURL(cmd.Context(), key)
}
