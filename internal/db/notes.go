package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/duarte/tender-finder/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetNote returns the announcement's note, or nil when none exists.
func (s *Store) GetNote(ctx context.Context, announcementID int64) (*models.Note, error) {
	var n models.Note
	err := s.pool.QueryRow(ctx, `
		SELECT announcement_id, note_text, created_at, updated_at
		FROM notes WHERE announcement_id = $1
	`, announcementID).Scan(&n.AnnouncementID, &n.NoteText, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get note failed: %w", err)
	}
	return &n, nil
}

// UpsertNote creates or replaces the announcement's note. Empty text is a
// valid note.
func (s *Store) UpsertNote(ctx context.Context, announcementID int64, text string) (*models.Note, error) {
	var n models.Note
	err := s.pool.QueryRow(ctx, `
		INSERT INTO notes (announcement_id, note_text) VALUES ($1, $2)
		ON CONFLICT (announcement_id) DO UPDATE
			SET note_text = EXCLUDED.note_text, updated_at = NOW()
		RETURNING announcement_id, note_text, created_at, updated_at
	`, announcementID, text).Scan(&n.AnnouncementID, &n.NoteText, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert note failed: %w", err)
	}
	return &n, nil
}

// DeleteNote removes the note if present. Deleting an absent note is not an
// error.
func (s *Store) DeleteNote(ctx context.Context, announcementID int64) error {
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM notes WHERE announcement_id = $1", announcementID); err != nil {
		return fmt.Errorf("delete note failed: %w", err)
	}
	return nil
}
