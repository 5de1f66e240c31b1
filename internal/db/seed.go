package db

import (
	"context"
	"fmt"
)

type seedCPV struct {
	code  string
	price *float64
}

type seedFactor struct {
	name      string
	otherName string
	weighting float64
}

type seedAnnouncement struct {
	drInternalID     string
	summary          string
	designation      string
	description      string
	contractType     string
	entity           string
	district         string
	processoTipo     string
	platform         string
	basePrice        *float64
	processBasePrice *float64
	publicationDate  string // YYYY-MM-DD
	deadline         string // raw feed format
	cpvs             []seedCPV
	factors          []seedFactor
}

func priceOf(v float64) *float64 { return &v }

var sampleAnnouncements = []seedAnnouncement{
	{
		drInternalID:    "DR-2026-000101",
		summary:         "Fornecimento de material de escritório para os serviços municipais",
		designation:     "Fornecimento de Material de Escritório",
		description:     "Aquisição de material de escritório para os serviços municipais",
		contractType:    "Aquisição de Bens Móveis",
		entity:          "Câmara Municipal de Lisboa",
		district:        "Lisboa",
		processoTipo:    "Concurso Público",
		platform:        "VORTAL",
		basePrice:       priceOf(50000),
		publicationDate: "2026-07-01",
		deadline:        "15-09-2026 18:00",
		cpvs:            []seedCPV{{code: "30192000", price: priceOf(50000)}},
		factors:         []seedFactor{{name: "Preço mais baixo", weighting: 100}},
	},
	{
		drInternalID:     "DR-2026-000102",
		summary:          "Fornecimento de equipamento médico para o bloco operatório",
		designation:      "Aquisição de Equipamento Médico",
		description:      "Fornecimento de equipamento médico para o bloco operatório",
		contractType:     "Aquisição de Bens Móveis",
		entity:           "Hospital de Santa Maria",
		district:         "Lisboa",
		processoTipo:     "Concurso Público",
		platform:         "ACINGOV",
		processBasePrice: priceOf(150000),
		publicationDate:  "2026-07-10",
		deadline:         "30-10-2026 17:00",
		cpvs: []seedCPV{
			{code: "33100000", price: priceOf(150000)},
			{code: "33162000"},
		},
		factors: []seedFactor{
			{name: "Preço", weighting: 60},
			{name: "Qualidade técnica", weighting: 40},
		},
	},
	{
		drInternalID:    "DR-2026-000103",
		summary:         "Prestação de serviços de limpeza nas instalações universitárias",
		designation:     "Serviços de Limpeza",
		description:     "Prestação de serviços de limpeza nas instalações universitárias",
		contractType:    "Aquisição de Serviços",
		entity:          "Universidade de Coimbra",
		district:        "Coimbra",
		processoTipo:    "Concurso Público",
		platform:        "VORTAL",
		publicationDate: "2026-06-20",
		deadline:        "10-08-2026 18:00",
		// No announcement-level price: resolves from the CPV row.
		cpvs:    []seedCPV{{code: "90910000", price: priceOf(80000)}},
		factors: []seedFactor{{otherName: "Preço global", weighting: 100}},
	},
	{
		drInternalID:    "DR-2026-000104",
		summary:         "Empreitada de requalificação da rede viária municipal",
		designation:     "Requalificação da Rede Viária",
		description:     "Empreitada de requalificação e pavimentação de arruamentos municipais",
		contractType:    "Empreitadas de Obras Públicas",
		entity:          "Câmara Municipal do Porto",
		district:        "Porto",
		processoTipo:    "Concurso Público",
		platform:        "ACINGOV",
		basePrice:       priceOf(1250000),
		publicationDate: "2026-05-02",
		cpvs:            []seedCPV{{code: "45233140"}},
	},
	{
		// Superseded first version of DR-2026-000104; excluded from listings
		// by the alterations link seeded below.
		drInternalID:    "DR-2026-000099",
		summary:         "Empreitada de requalificação da rede viária municipal (versão inicial)",
		designation:     "Requalificação da Rede Viária",
		description:     "Versão inicial do anúncio, posteriormente alterada",
		contractType:    "Empreitadas de Obras Públicas",
		entity:          "Câmara Municipal do Porto",
		district:        "Porto",
		processoTipo:    "Concurso Público",
		platform:        "ACINGOV",
		basePrice:       priceOf(1200000),
		publicationDate: "2026-04-15",
		cpvs:            []seedCPV{{code: "45233140"}},
	},
}

// SeedSampleData inserts a small set of sample announcements with CPV codes,
// adjudication factors and one revision link. Re-running updates in place.
func (s *Store) SeedSampleData(ctx context.Context) (int, error) {
	count := 0
	for _, seed := range sampleAnnouncements {
		var id int64
		err := s.pool.QueryRow(ctx, `
			INSERT INTO announcements (
				dr_internal_id, summary, object_designation, object_description,
				object_main_contract_type, entity_designacao, entity_distrito,
				processo_tipo, application_platform, base_price,
				processo_preco_base_valor, publication_date, application_deadline
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::date, NULLIF($13, ''))
			ON CONFLICT (dr_internal_id) WHERE dr_internal_id IS NOT NULL DO UPDATE SET
				summary = EXCLUDED.summary,
				object_designation = EXCLUDED.object_designation,
				object_description = EXCLUDED.object_description,
				base_price = EXCLUDED.base_price,
				processo_preco_base_valor = EXCLUDED.processo_preco_base_valor,
				application_deadline = EXCLUDED.application_deadline
			RETURNING id
		`, seed.drInternalID, seed.summary, seed.designation, seed.description,
			seed.contractType, seed.entity, seed.district, seed.processoTipo,
			seed.platform, seed.basePrice, seed.processBasePrice,
			seed.publicationDate, seed.deadline).Scan(&id)
		if err != nil {
			return count, fmt.Errorf("seed announcement %s failed: %w", seed.drInternalID, err)
		}

		if _, err := s.pool.Exec(ctx,
			"DELETE FROM cpvs WHERE announcement_id = $1", id); err != nil {
			return count, fmt.Errorf("seed cpv reset failed: %w", err)
		}
		for _, cpv := range seed.cpvs {
			if _, err := s.pool.Exec(ctx,
				"INSERT INTO cpvs (announcement_id, code, base_price) VALUES ($1, $2, $3)",
				id, cpv.code, cpv.price); err != nil {
				return count, fmt.Errorf("seed cpv failed: %w", err)
			}
		}

		if _, err := s.pool.Exec(ctx,
			"DELETE FROM adjudication_factors WHERE announcement_id = $1", id); err != nil {
			return count, fmt.Errorf("seed factor reset failed: %w", err)
		}
		for _, f := range seed.factors {
			if _, err := s.pool.Exec(ctx, `
				INSERT INTO adjudication_factors
					(announcement_id, factor_name, other_factor_name, weighting)
				VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4)
			`, id, f.name, f.otherName, f.weighting); err != nil {
				return count, fmt.Errorf("seed factor failed: %w", err)
			}
		}

		count++
	}

	// DR-2026-000104 supersedes DR-2026-000099.
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO alterations (dr_internal_id, previous_dr_internal_id)
		SELECT 'DR-2026-000104', 'DR-2026-000099'
		WHERE NOT EXISTS (
			SELECT 1 FROM alterations WHERE previous_dr_internal_id = 'DR-2026-000099')
	`); err != nil {
		return count, fmt.Errorf("seed alteration failed: %w", err)
	}

	return count, nil
}
