package db

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ListParams mirrors the listing query string. Zero values and the "all"
// sentinel contribute no clause.
type ListParams struct {
	Search       string
	Entity       string
	District     string
	ContractType string
	CPV          string
	Criteria     string

	MinPrice *float64
	MaxPrice *float64
	MinDate  *time.Time
	MaxDate  *time.Time

	IncludeExpired bool
	IncludeNA      bool
	ShowArchived   bool

	DateSort  string // "asc" or "desc"
	PriceSort string // "asc", "desc" or "none"

	Page  int
	Limit int
}

// conj accumulates a conjunction of SQL conditions over numbered arguments.
// The main table is always aliased "a".
type conj struct {
	conds []string
	args  []any
}

// bind registers an argument and returns its placeholder.
func (c *conj) bind(v any) string {
	c.args = append(c.args, v)
	return "$" + strconv.Itoa(len(c.args))
}

func (c *conj) add(cond string) {
	c.conds = append(c.conds, cond)
}

func (c *conj) where() string {
	if len(c.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.conds, " AND ")
}

// clause contributes zero or more conditions to a conjunction. Constructors
// return nil when their parameter is absent, so folding a clause list over an
// empty conjunction yields exactly the requested filters.
type clause func(c *conj)

func (c *conj) apply(clauses ...clause) {
	for _, cl := range clauses {
		if cl != nil {
			cl(c)
		}
	}
}

func listClauses(p ListParams, cpvIDs, archivedIDs []int64) []clause {
	return []clause{
		supersededClause(),
		searchClause(p.Search),
		entityClause(p.Entity),
		districtClause(p.District),
		contractTypeClause(p.ContractType),
		priceRangeClause(p.MinPrice, p.MaxPrice),
		dateRangeClause(p.MinDate, p.MaxDate),
		expiryClause(p.IncludeExpired, p.IncludeNA),
		idSetClause(cpvIDs),
		idSetClause(archivedIDs),
	}
}

func searchClause(term string) clause {
	if term == "" {
		return nil
	}
	return func(c *conj) {
		c.add("a.summary ILIKE '%' || " + c.bind(term) + " || '%'")
	}
}

func entityClause(name string) clause {
	if name == "" {
		return nil
	}
	return func(c *conj) {
		c.add("a.entity_designacao ILIKE '%' || " + c.bind(name) + " || '%'")
	}
}

// districtClause matches the district exactly, ignoring case.
func districtClause(district string) clause {
	if district == "" || district == "all" {
		return nil
	}
	return func(c *conj) {
		c.add("LOWER(a.entity_distrito) = LOWER(" + c.bind(district) + ")")
	}
}

func contractTypeClause(contractType string) clause {
	if contractType == "" || contractType == "all" {
		return nil
	}
	return func(c *conj) {
		c.add("a.object_main_contract_type = " + c.bind(contractType))
	}
}

// priceRangeClause bounds the resolved effective price. Either bound implies
// the price must resolve to a non-null value.
func priceRangeClause(min, max *float64) clause {
	if min == nil && max == nil {
		return nil
	}
	return func(c *conj) {
		c.add("(" + effectivePriceExpr + ") IS NOT NULL")
		if min != nil {
			c.add("(" + effectivePriceExpr + ") >= " + c.bind(*min))
		}
		if max != nil {
			c.add("(" + effectivePriceExpr + ") <= " + c.bind(*max))
		}
	}
}

// dateRangeClause bounds publication_date. The max bound is inclusive through
// the end of that day.
func dateRangeClause(min, max *time.Time) clause {
	if min == nil && max == nil {
		return nil
	}
	return func(c *conj) {
		if min != nil {
			c.add("a.publication_date >= " + c.bind(*min))
		}
		if max != nil {
			endOfDay := time.Date(max.Year(), max.Month(), max.Day(),
				23, 59, 59, 999000000, max.Location())
			c.add("a.publication_date <= " + c.bind(endOfDay))
		}
	}
}

// expiryClause encodes the expiry policy:
//
//	includeExpired                 -> only expired rows
//	!includeExpired && includeNA   -> active rows plus rows with no deadline
//	!includeExpired && !includeNA  -> active rows only
//
// A null expired flag means no deadline was ever set, distinct from both
// active and expired.
func expiryClause(includeExpired, includeNA bool) clause {
	return func(c *conj) {
		switch {
		case includeExpired:
			c.add("a.expired = TRUE")
		case includeNA:
			c.add("(a.expired = FALSE OR a.expired IS NULL)")
		default:
			c.add("a.expired = FALSE")
		}
	}
}

// idSetClause restricts to a previously resolved announcement-ID set (CPV
// match, archive restriction). Callers short-circuit on empty sets before the
// query, so nil means "no restriction".
func idSetClause(ids []int64) clause {
	if ids == nil {
		return nil
	}
	return func(c *conj) {
		c.add("a.id = ANY(" + c.bind(ids) + ")")
	}
}

// supersededClause excludes announcements whose internal identifier appears as
// a previous version in the alterations table. Rows without an internal
// identifier cannot be part of a revision chain and are never excluded.
func supersededClause() clause {
	return func(c *conj) {
		c.add(`(a.dr_internal_id IS NULL OR NOT EXISTS (
			SELECT 1 FROM alterations alt
			WHERE alt.previous_dr_internal_id = a.dr_internal_id))`)
	}
}

var trailingZeros = regexp.MustCompile(`^(\d*?)(00+)$`)

// cpvPattern translates a requested CPV code into an ILIKE pattern. A code
// ending in a run of two or more zeros matches every stored code sharing the
// non-zero prefix; anything else matches exactly.
func cpvPattern(code string) string {
	if m := trailingZeros.FindStringSubmatch(code); m != nil {
		return m[1] + "%"
	}
	return code
}
