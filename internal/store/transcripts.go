package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vidscribe/internal/resolver"
)

// ErrNotFound indicates no transcript matches the lookup.
var ErrNotFound = errors.New("transcript not found")

// Record is one persisted resolution, successful or not. Failed resolutions
// keep their attempt history so a later run can explain what was tried.
type Record struct {
	ID           int64
	ResolutionID string
	VideoURL     string
	Platform     string
	Title        string
	Author       string
	Text         string
	Source       string
	Cost         float64
	Confidence   *float64
	Attempts     []resolver.Attempt
	CreatedAt    time.Time
}

// NewRecord converts a resolution outcome into a persistable record.
func NewRecord(outcome resolver.Outcome) Record {
	return Record{
		ResolutionID: outcome.ResolutionID,
		VideoURL:     outcome.SourceURL,
		Platform:     string(outcome.Platform),
		Title:        outcome.Title,
		Author:       outcome.Author,
		Text:         outcome.Text,
		Source:       outcome.Source,
		Cost:         outcome.Cost,
		Confidence:   outcome.Confidence,
		Attempts:     outcome.Attempts,
	}
}

// Save inserts a record and returns it with its assigned ID and timestamp.
func (s *Store) Save(ctx context.Context, rec Record) (Record, error) {
	attempts := rec.Attempts
	if attempts == nil {
		attempts = []resolver.Attempt{}
	}
	attemptsJSON, err := json.Marshal(attempts)
	if err != nil {
		return Record{}, fmt.Errorf("marshal attempts: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO transcripts (
            resolution_id, video_url, platform, title, author,
            transcript_text, source, cost, confidence, attempts_json, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ResolutionID,
		rec.VideoURL,
		rec.Platform,
		rec.Title,
		rec.Author,
		rec.Text,
		rec.Source,
		rec.Cost,
		nullableFloat(rec.Confidence),
		string(attemptsJSON),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert transcript: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("last insert id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = now
	return rec, nil
}

const selectColumns = `id, resolution_id, video_url, platform, title, author,
    transcript_text, source, cost, confidence, attempts_json, created_at`

// GetByID fetches one record by its row ID.
func (s *Store) GetByID(ctx context.Context, id int64) (Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM transcripts WHERE id = ?", id)
	return scanRecord(row)
}

// GetByURL fetches the most recent record for a video URL.
func (s *Store) GetByURL(ctx context.Context, videoURL string) (Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM transcripts WHERE video_url = ? ORDER BY id DESC LIMIT 1", videoURL)
	return scanRecord(row)
}

// List returns records newest first, bounded by limit when positive.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + selectColumns + " FROM transcripts ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec          Record
		confidence   sql.NullFloat64
		attemptsJSON string
		createdAt    string
	)
	err := row.Scan(
		&rec.ID,
		&rec.ResolutionID,
		&rec.VideoURL,
		&rec.Platform,
		&rec.Title,
		&rec.Author,
		&rec.Text,
		&rec.Source,
		&rec.Cost,
		&confidence,
		&attemptsJSON,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("scan transcript: %w", err)
	}

	if confidence.Valid {
		v := confidence.Float64
		rec.Confidence = &v
	}
	if attemptsJSON != "" {
		if err := json.Unmarshal([]byte(attemptsJSON), &rec.Attempts); err != nil {
			return Record{}, fmt.Errorf("decode attempts: %w", err)
		}
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = ts
	}
	return rec, nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
