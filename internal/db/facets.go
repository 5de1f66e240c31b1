package db

import (
	"context"
	"fmt"
)

// GetDistricts returns the distinct non-empty districts, ascending, optionally
// restricted to announcements matching a CPV code (prefix rule applies).
func (s *Store) GetDistricts(ctx context.Context, cpv string) ([]string, error) {
	return s.distinctColumn(ctx, "entity_distrito", cpv)
}

// GetContractTypes returns the distinct non-empty contract types, ascending,
// with the same optional CPV restriction.
func (s *Store) GetContractTypes(ctx context.Context, cpv string) ([]string, error) {
	return s.distinctColumn(ctx, "object_main_contract_type", cpv)
}

// distinctColumn is only ever called with a fixed column name.
func (s *Store) distinctColumn(ctx context.Context, column, cpv string) ([]string, error) {
	c := &conj{}
	c.add("a." + column + " IS NOT NULL")
	c.add("a." + column + " <> ''")

	if cpv != "" && cpv != "all" {
		ids, err := s.announcementIDsForCPV(ctx, cpv)
		if err != nil {
			return nil, fmt.Errorf("cpv lookup failed: %w", err)
		}
		if len(ids) == 0 {
			return []string{}, nil
		}
		idSetClause(ids)(c)
	}

	query := "SELECT DISTINCT a." + column + " FROM announcements a" +
		c.where() + " ORDER BY a." + column + " ASC"

	rows, err := s.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("distinct %s failed: %w", column, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// GetCPVCodes returns the distinct codes attached to the given announcements,
// ascending.
func (s *Store) GetCPVCodes(ctx context.Context, announcementIDs []int64) ([]string, error) {
	if len(announcementIDs) == 0 {
		return []string{}, nil
	}

	rows, err := s.pool.Query(ctx,
		"SELECT DISTINCT code FROM cpvs WHERE announcement_id = ANY($1) ORDER BY code",
		announcementIDs)
	if err != nil {
		return nil, fmt.Errorf("cpv codes failed: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
