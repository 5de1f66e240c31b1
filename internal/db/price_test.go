package db

import (
	"strings"
	"testing"

	"github.com/duarte/tender-finder/internal/models"
)

func fptr(v float64) *float64 { return &v }

func TestResolveEffectivePricePrecedence(t *testing.T) {
	cpvs := []models.CPV{
		{Code: "45000000"},
		{Code: "72000000", BasePrice: fptr(1000)},
		{Code: "90910000", BasePrice: fptr(2500)},
	}

	tests := []struct {
		name     string
		processo *float64
		base     *float64
		cpvs     []models.CPV
		want     *float64
	}{
		{"process base price wins", fptr(10), fptr(20), cpvs, fptr(10)},
		{"base price second", nil, fptr(20), cpvs, fptr(20)},
		{"first cpv price in code order third", nil, nil, cpvs, fptr(1000)},
		{"all null resolves to null", nil, nil, []models.CPV{{Code: "1"}}, nil},
		{"no cpvs resolves to null", nil, nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveEffectivePrice(tt.processo, tt.base, tt.cpvs)
			switch {
			case tt.want == nil && got != nil:
				t.Fatalf("expected null price, got %v", *got)
			case tt.want != nil && got == nil:
				t.Fatalf("expected %v, got null", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Fatalf("expected %v, got %v", *tt.want, *got)
			}
		})
	}
}

func TestOrderClausePriceSort(t *testing.T) {
	clause := orderClause("asc", "desc")

	if !strings.Contains(clause, "COALESCE(a.processo_preco_base_valor, a.base_price") {
		t.Fatalf("price sort must use the shared effective price expression: %s", clause)
	}
	if strings.Count(clause, "NULLS LAST") != 2 {
		t.Fatalf("both sort keys must push nulls last: %s", clause)
	}
	if !strings.Contains(clause, "a.publication_date DESC NULLS LAST") {
		t.Fatalf("price sort must tiebreak on publication date: %s", clause)
	}
}

func TestOrderClauseDateOnly(t *testing.T) {
	if got := orderClause("none", "asc"); got != " ORDER BY a.publication_date ASC NULLS LAST" {
		t.Fatalf("unexpected date order clause: %s", got)
	}
	if got := orderClause("", ""); got != " ORDER BY a.publication_date DESC NULLS LAST" {
		t.Fatalf("default sort must be publication date desc: %s", got)
	}
}
