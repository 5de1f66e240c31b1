package models

import "time"

// Announcement is one published procurement notice. BasePrice holds the raw
// stored column when scanned; after decoration it carries the resolved
// effective price (process base price, then base price, then the first CPV
// price in code order).
type Announcement struct {
	ID                     int64      `json:"id"`
	DRInternalID           *string    `json:"dr_internal_id"`
	Summary                string     `json:"summary"`
	ObjectDesignation      string     `json:"object_designation"`
	ObjectDescription      string     `json:"object_description"`
	ObjectMainContractType string     `json:"object_main_contract_type"`
	EntityDesignacao       string     `json:"entity_designacao"`
	EntityDistrito         string     `json:"entity_distrito"`
	ProcessoTipo           string     `json:"processo_tipo"`
	ApplicationPlatform    string     `json:"application_platform"`
	BasePrice              *float64   `json:"base_price"`
	ProcessoPrecoBaseValor *float64   `json:"processo_preco_base_valor"`
	Expired                *bool      `json:"expired"`
	PublicationDate        *time.Time `json:"publication_date"`
	ApplicationDeadline    string     `json:"application_deadline"`
	CreatedAt              time.Time  `json:"created_at"`

	// Filled in by decoration.
	CPVCodes     []string `json:"cpv_codes"`
	CriteriaType string   `json:"criteria_type"`
}

// CPV is a hierarchical classification code attached to an announcement.
// Trailing zeros in the code denote broader categories.
type CPV struct {
	ID             int64    `json:"id"`
	AnnouncementID int64    `json:"announcement_id"`
	Code           string   `json:"code"`
	BasePrice      *float64 `json:"base_price"`
}

// AdjudicationFactor is one scoring criterion of an announcement's award
// procedure. OtherFactorName, when set, takes precedence over FactorName.
type AdjudicationFactor struct {
	ID                 int64    `json:"id"`
	AnnouncementID     int64    `json:"announcement_id"`
	FactorName         string   `json:"factor_name"`
	OtherFactorName    string   `json:"other_factor_name"`
	Weighting          *float64 `json:"weighting"`
	SubfactorName      string   `json:"subfactor_name"`
	SubfactorWeighting *float64 `json:"subfactor_weighting"`
}

// Note is the single free-text note attached to an announcement.
type Note struct {
	AnnouncementID int64     `json:"announcement_id"`
	NoteText       string    `json:"note_text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
