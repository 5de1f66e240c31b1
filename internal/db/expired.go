package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// deadlineLayout is the fixed DD-MM-YYYY HH:MM format used by the upstream
// feed for application deadlines.
const deadlineLayout = "02-01-2006 15:04"

var deadlineFallbacks = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseDeadline(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(deadlineLayout, raw, time.Local); err == nil {
		return t, true
	}
	for _, layout := range deadlineFallbacks {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// computeExpired returns nil when no usable deadline exists: expiry is not
// determinable, which is distinct from both active and expired.
func computeExpired(deadline string, now time.Time) *bool {
	t, ok := parseDeadline(deadline)
	if !ok {
		return nil
	}
	expired := t.Before(now)
	return &expired
}

type ExpiredCounts struct {
	Expired int `json:"expired"`
	Active  int `json:"active"`
	NA      int `json:"na"`
	Total   int `json:"total"`
}

const expiredBatchSize = 500

// UpdateExpired recomputes the tri-state expired flag for every announcement
// from its raw application deadline, in id-ordered batches, and reports the
// resulting counts.
func (s *Store) UpdateExpired(ctx context.Context) (*ExpiredCounts, error) {
	now := time.Now()

	type update struct {
		id      int64
		expired *bool
	}

	var lastID int64
	for {
		rows, err := s.pool.Query(ctx, `
			SELECT id, COALESCE(application_deadline, '')
			FROM announcements WHERE id > $1 ORDER BY id LIMIT $2
		`, lastID, expiredBatchSize)
		if err != nil {
			return nil, fmt.Errorf("expired batch query failed: %w", err)
		}

		var batch []update
		for rows.Next() {
			var id int64
			var deadline string
			if err := rows.Scan(&id, &deadline); err != nil {
				rows.Close()
				return nil, fmt.Errorf("expired batch scan failed: %w", err)
			}
			batch = append(batch, update{id: id, expired: computeExpired(deadline, now)})
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("expired batch iteration failed: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for _, u := range batch {
			if _, err := s.pool.Exec(ctx,
				"UPDATE announcements SET expired = $1 WHERE id = $2",
				u.expired, u.id); err != nil {
				return nil, fmt.Errorf("expired update failed for id %d: %w", u.id, err)
			}
		}
		lastID = batch[len(batch)-1].id
	}

	counts := &ExpiredCounts{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE expired = TRUE),
			COUNT(*) FILTER (WHERE expired = FALSE),
			COUNT(*) FILTER (WHERE expired IS NULL),
			COUNT(*)
		FROM announcements
	`).Scan(&counts.Expired, &counts.Active, &counts.NA, &counts.Total)
	if err != nil {
		return nil, fmt.Errorf("expired counts failed: %w", err)
	}
	return counts, nil
}
