package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/duarte/tender-finder/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a referenced announcement does not exist.
var ErrNotFound = errors.New("not found")

// DefaultPageSize is the listing page size when none is requested.
const DefaultPageSize = 21

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ListResult struct {
	Data       []models.Announcement `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

const selectCols = `a.id, a.dr_internal_id, a.summary, a.object_designation,
	a.object_description, a.object_main_contract_type, a.entity_designacao,
	a.entity_distrito, a.processo_tipo, a.application_platform, a.base_price,
	a.processo_preco_base_valor, a.expired, a.publication_date,
	a.application_deadline, a.created_at`

func scanAnnouncement(scan func(dest ...any) error) (models.Announcement, error) {
	var a models.Announcement
	var summary, designation, description, contractType *string
	var entity, distrito, tipo, platform, deadline *string

	err := scan(
		&a.ID, &a.DRInternalID, &summary, &designation,
		&description, &contractType, &entity,
		&distrito, &tipo, &platform, &a.BasePrice,
		&a.ProcessoPrecoBaseValor, &a.Expired, &a.PublicationDate,
		&deadline, &a.CreatedAt,
	)
	if err != nil {
		return a, err
	}

	if summary != nil {
		a.Summary = *summary
	}
	if designation != nil {
		a.ObjectDesignation = *designation
	}
	if description != nil {
		a.ObjectDescription = *description
	}
	if contractType != nil {
		a.ObjectMainContractType = *contractType
	}
	if entity != nil {
		a.EntityDesignacao = *entity
	}
	if distrito != nil {
		a.EntityDistrito = *distrito
	}
	if tipo != nil {
		a.ProcessoTipo = *tipo
	}
	if platform != nil {
		a.ApplicationPlatform = *platform
	}
	if deadline != nil {
		a.ApplicationDeadline = *deadline
	}

	return a, nil
}

// ListAnnouncements builds the conjunctive predicate from params, counts the
// matching set, fetches one page, and decorates it with CPV codes, the
// resolved effective price and the criteria classification. The criteria
// post-filter runs last and does not affect the totals.
func (s *Store) ListAnnouncements(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = DefaultPageSize
	}

	empty := &ListResult{
		Data:       []models.Announcement{},
		Pagination: Pagination{Page: params.Page, Limit: params.Limit},
	}

	var cpvIDs []int64
	if params.CPV != "" && params.CPV != "all" {
		ids, err := s.announcementIDsForCPV(ctx, params.CPV)
		if err != nil {
			return nil, fmt.Errorf("cpv lookup failed: %w", err)
		}
		if len(ids) == 0 {
			return empty, nil
		}
		cpvIDs = ids
	}

	var archivedIDs []int64
	if params.ShowArchived {
		ids, err := s.archivedAnnouncementIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("archive lookup failed: %w", err)
		}
		if len(ids) == 0 {
			return empty, nil
		}
		archivedIDs = ids
	}

	c := &conj{}
	c.apply(listClauses(params, cpvIDs, archivedIDs)...)
	where := c.where()

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM announcements a"+where, c.args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	query := "SELECT " + selectCols + " FROM announcements a" + where +
		orderClause(params.PriceSort, params.DateSort) +
		" LIMIT " + c.bind(params.Limit) +
		" OFFSET " + c.bind((params.Page-1)*params.Limit)

	rows, err := s.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var anns []models.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		anns = append(anns, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	if anns == nil {
		anns = []models.Announcement{}
	}

	if err := s.decorate(ctx, anns); err != nil {
		return nil, err
	}
	anns = filterByCriteria(anns, params.Criteria)

	return &ListResult{
		Data: anns,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
			Pages: pageCount(total, params.Limit),
		},
	}, nil
}

func pageCount(total, limit int) int {
	if limit < 1 || total < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}

func (s *Store) announcementIDsForCPV(ctx context.Context, code string) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT DISTINCT announcement_id FROM cpvs WHERE code ILIKE $1",
		cpvPattern(code))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (s *Store) archivedAnnouncementIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT announcement_id FROM archive WHERE is_archived = TRUE")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// decorate joins CPV codes, the resolved effective price and the criteria
// classification onto each announcement, batching one query per relation.
func (s *Store) decorate(ctx context.Context, anns []models.Announcement) error {
	if len(anns) == 0 {
		return nil
	}
	ids := make([]int64, len(anns))
	for i, a := range anns {
		ids[i] = a.ID
	}

	cpvsByAnn, err := s.cpvsForAnnouncements(ctx, ids)
	if err != nil {
		return fmt.Errorf("cpv fetch failed: %w", err)
	}
	factorsByAnn, err := s.factorsForAnnouncements(ctx, ids)
	if err != nil {
		return fmt.Errorf("factor fetch failed: %w", err)
	}

	for i := range anns {
		a := &anns[i]
		cpvs := cpvsByAnn[a.ID]
		codes := make([]string, len(cpvs))
		for j, cpv := range cpvs {
			codes[j] = cpv.Code
		}
		a.CPVCodes = codes
		a.BasePrice = ResolveEffectivePrice(a.ProcessoPrecoBaseValor, a.BasePrice, cpvs)
		a.CriteriaType = ClassifyCriteria(factorsByAnn[a.ID])
	}
	return nil
}

func (s *Store) cpvsForAnnouncements(ctx context.Context, ids []int64) (map[int64][]models.CPV, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, announcement_id, code, base_price
		FROM cpvs WHERE announcement_id = ANY($1)
		ORDER BY code
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byAnn := make(map[int64][]models.CPV)
	for rows.Next() {
		var cpv models.CPV
		if err := rows.Scan(&cpv.ID, &cpv.AnnouncementID, &cpv.Code, &cpv.BasePrice); err != nil {
			return nil, err
		}
		byAnn[cpv.AnnouncementID] = append(byAnn[cpv.AnnouncementID], cpv)
	}
	return byAnn, rows.Err()
}

func (s *Store) factorsForAnnouncements(ctx context.Context, ids []int64) (map[int64][]models.AdjudicationFactor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, announcement_id, COALESCE(factor_name, ''),
			COALESCE(other_factor_name, ''), weighting,
			COALESCE(subfactor_name, ''), subfactor_weighting
		FROM adjudication_factors WHERE announcement_id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byAnn := make(map[int64][]models.AdjudicationFactor)
	for rows.Next() {
		var f models.AdjudicationFactor
		if err := rows.Scan(&f.ID, &f.AnnouncementID, &f.FactorName,
			&f.OtherFactorName, &f.Weighting, &f.SubfactorName, &f.SubfactorWeighting); err != nil {
			return nil, err
		}
		byAnn[f.AnnouncementID] = append(byAnn[f.AnnouncementID], f)
	}
	return byAnn, rows.Err()
}

// GetAnnouncement fetches one decorated announcement.
func (s *Store) GetAnnouncement(ctx context.Context, id int64) (*models.Announcement, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+selectCols+" FROM announcements a WHERE a.id = $1", id)

	a, err := scanAnnouncement(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get announcement failed: %w", err)
	}

	anns := []models.Announcement{a}
	if err := s.decorate(ctx, anns); err != nil {
		return nil, err
	}
	return &anns[0], nil
}

func (s *Store) AnnouncementExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM announcements WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("existence check failed: %w", err)
	}
	return exists, nil
}

// GetAdjudicationFactors returns the raw factor rows for one announcement.
func (s *Store) GetAdjudicationFactors(ctx context.Context, id int64) ([]models.AdjudicationFactor, error) {
	byAnn, err := s.factorsForAnnouncements(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("factor fetch failed: %w", err)
	}
	factors := byAnn[id]
	if factors == nil {
		factors = []models.AdjudicationFactor{}
	}
	return factors, nil
}
