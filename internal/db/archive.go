package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetArchiveStatus reports the archive mark. A missing row reads as not
// archived.
func (s *Store) GetArchiveStatus(ctx context.Context, announcementID int64) (isArchived, exists bool, err error) {
	err = s.pool.QueryRow(ctx,
		"SELECT is_archived FROM archive WHERE announcement_id = $1",
		announcementID).Scan(&isArchived)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("archive status failed: %w", err)
	}
	return isArchived, true, nil
}

// SetArchived stores the archive mark. Unarchiving deletes the row entirely so
// absence always means "not archived".
func (s *Store) SetArchived(ctx context.Context, announcementID int64, archived bool) error {
	if !archived {
		if _, err := s.pool.Exec(ctx,
			"DELETE FROM archive WHERE announcement_id = $1", announcementID); err != nil {
			return fmt.Errorf("unarchive failed: %w", err)
		}
		return nil
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO archive (announcement_id, is_archived) VALUES ($1, TRUE)
		ON CONFLICT (announcement_id) DO UPDATE
			SET is_archived = TRUE, updated_at = NOW()
	`, announcementID); err != nil {
		return fmt.Errorf("archive failed: %w", err)
	}
	return nil
}
