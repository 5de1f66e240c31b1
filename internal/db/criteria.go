package db

import (
	"strings"

	"github.com/duarte/tender-finder/internal/models"
)

// Criteria type values exposed in responses.
const (
	CriteriaPriceOnly = "precos"
	CriteriaOther     = "outros"
)

// ClassifyCriteria reports "precos" when an announcement has at least one
// adjudication factor and every factor name contains the domain term for
// price, in either spelling. OtherFactorName takes precedence over FactorName.
func ClassifyCriteria(factors []models.AdjudicationFactor) string {
	if len(factors) == 0 {
		return CriteriaOther
	}
	for _, f := range factors {
		name := f.OtherFactorName
		if name == "" {
			name = f.FactorName
		}
		name = strings.ToLower(name)
		if !strings.Contains(name, "preço") && !strings.Contains(name, "preco") {
			return CriteriaOther
		}
	}
	return CriteriaPriceOnly
}

// filterByCriteria applies the post-decoration criteria restriction. Only the
// price-only value restricts; it can shrink a page below the requested limit
// and deliberately leaves the pagination totals untouched.
func filterByCriteria(anns []models.Announcement, criteria string) []models.Announcement {
	if criteria != CriteriaPriceOnly {
		return anns
	}
	kept := make([]models.Announcement, 0, len(anns))
	for _, a := range anns {
		if a.CriteriaType == CriteriaPriceOnly {
			kept = append(kept, a)
		}
	}
	return kept
}
