package db

import (
	"fmt"
	"strings"

	"github.com/duarte/tender-finder/internal/models"
)

// effectivePriceExpr is the single SQL home of the three-tier price
// precedence: the process base price wins, then the announcement's own base
// price, then the first CPV price in ascending code order. Both the range
// filter and the price sort key use this expression; the Go-side resolver
// below must stay in lockstep with it.
const effectivePriceExpr = `COALESCE(a.processo_preco_base_valor, a.base_price, (
	SELECT c.base_price FROM cpvs c
	WHERE c.announcement_id = a.id AND c.base_price IS NOT NULL
	ORDER BY c.code LIMIT 1))`

// ResolveEffectivePrice applies the same precedence over already-loaded rows.
// The cpvs slice is expected in ascending code order.
func ResolveEffectivePrice(processoPrecoBase, basePrice *float64, cpvs []models.CPV) *float64 {
	if processoPrecoBase != nil {
		return processoPrecoBase
	}
	if basePrice != nil {
		return basePrice
	}
	for _, cpv := range cpvs {
		if cpv.BasePrice != nil {
			return cpv.BasePrice
		}
	}
	return nil
}

// orderClause builds the ORDER BY tail. Sorting by price uses the resolved
// effective price with publication date as tiebreak; rows with no resolvable
// price or date always sort last, in either direction.
func orderClause(priceSort, dateSort string) string {
	dateDir := "DESC"
	if dateSort == "asc" {
		dateDir = "ASC"
	}
	switch priceSort {
	case "asc", "desc":
		return fmt.Sprintf(" ORDER BY (%s) %s NULLS LAST, a.publication_date %s NULLS LAST",
			effectivePriceExpr, strings.ToUpper(priceSort), dateDir)
	default:
		return " ORDER BY a.publication_date " + dateDir + " NULLS LAST"
	}
}
