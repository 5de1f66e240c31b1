package db

import (
	"testing"

	"github.com/duarte/tender-finder/internal/models"
)

func TestClassifyCriteria(t *testing.T) {
	tests := []struct {
		name    string
		factors []models.AdjudicationFactor
		want    string
	}{
		{
			"all price factors",
			[]models.AdjudicationFactor{
				{FactorName: "Preço mais baixo"},
				{FactorName: "preço global"},
				{FactorName: "Componente de preco"},
			},
			CriteriaPriceOnly,
		},
		{
			"one non-price factor",
			[]models.AdjudicationFactor{
				{FactorName: "Preço"},
				{FactorName: "Qualidade"},
			},
			CriteriaOther,
		},
		{"zero factors", nil, CriteriaOther},
		{
			"other name takes precedence",
			[]models.AdjudicationFactor{
				{FactorName: "Preço", OtherFactorName: "Prazo de execução"},
			},
			CriteriaOther,
		},
		{
			"ascii spelling counts",
			[]models.AdjudicationFactor{{OtherFactorName: "PRECO unitario"}},
			CriteriaPriceOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyCriteria(tt.factors); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilterByCriteria(t *testing.T) {
	anns := []models.Announcement{
		{ID: 1, CriteriaType: CriteriaPriceOnly},
		{ID: 2, CriteriaType: CriteriaOther},
		{ID: 3, CriteriaType: CriteriaPriceOnly},
	}

	kept := filterByCriteria(anns, CriteriaPriceOnly)
	if len(kept) != 2 || kept[0].ID != 1 || kept[1].ID != 3 {
		t.Fatalf("unexpected filtered set: %v", kept)
	}

	// Any other criteria value leaves the page untouched.
	if got := filterByCriteria(anns, CriteriaOther); len(got) != 3 {
		t.Fatalf("non-precos criteria must not filter: %v", got)
	}
	if got := filterByCriteria(anns, ""); len(got) != 3 {
		t.Fatalf("absent criteria must not filter: %v", got)
	}
}
