package db

import (
	"strings"
	"testing"
	"time"
)

func buildWhere(clauses ...clause) *conj {
	c := &conj{}
	c.apply(clauses...)
	return c
}

func TestCPVPattern(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"72000000", "72%"},
		{"72100000", "721%"},
		{"12345600", "123456%"},
		{"12345678", "12345678"},
		{"12345670", "12345670"}, // single trailing zero is exact
		{"00000000", "%"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cpvPattern(tt.code); got != tt.want {
			t.Errorf("cpvPattern(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestSearchClause(t *testing.T) {
	c := buildWhere(searchClause("limpeza"))

	if len(c.conds) != 1 || c.conds[0] != "a.summary ILIKE '%' || $1 || '%'" {
		t.Fatalf("unexpected conds: %v", c.conds)
	}
	if len(c.args) != 1 || c.args[0] != "limpeza" {
		t.Fatalf("unexpected args: %v", c.args)
	}

	if searchClause("") != nil {
		t.Fatal("empty search must contribute no clause")
	}
}

func TestDistrictClauseSentinel(t *testing.T) {
	if districtClause("all") != nil || districtClause("") != nil {
		t.Fatal("district sentinel must contribute no clause")
	}

	c := buildWhere(districtClause("Lisboa"))
	if c.conds[0] != "LOWER(a.entity_distrito) = LOWER($1)" {
		t.Fatalf("district clause must be an exact case-insensitive match: %s", c.conds[0])
	}
}

func TestContractTypeClauseSentinel(t *testing.T) {
	if contractTypeClause("all") != nil {
		t.Fatal("contract type sentinel must contribute no clause")
	}

	c := buildWhere(contractTypeClause("Aquisição de Serviços"))
	if c.conds[0] != "a.object_main_contract_type = $1" {
		t.Fatalf("contract type clause must be exact: %s", c.conds[0])
	}
}

func TestExpiryClauseTruthTable(t *testing.T) {
	tests := []struct {
		name           string
		includeExpired bool
		includeNA      bool
		want           string
	}{
		{"only expired", true, false, "a.expired = TRUE"},
		{"expired wins over NA", true, true, "a.expired = TRUE"},
		{"active plus NA", false, true, "(a.expired = FALSE OR a.expired IS NULL)"},
		{"active only", false, false, "a.expired = FALSE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := buildWhere(expiryClause(tt.includeExpired, tt.includeNA))
			if len(c.conds) != 1 || c.conds[0] != tt.want {
				t.Fatalf("got %v, want %q", c.conds, tt.want)
			}
		})
	}
}

func TestPriceRangeClause(t *testing.T) {
	if priceRangeClause(nil, nil) != nil {
		t.Fatal("absent bounds must contribute no clause")
	}

	min := 500.0
	c := buildWhere(priceRangeClause(&min, nil))

	if !strings.Contains(c.conds[0], "IS NOT NULL") {
		t.Fatalf("price bound must force a non-null resolved price: %v", c.conds)
	}
	if !strings.Contains(c.conds[1], ">= $1") {
		t.Fatalf("missing lower bound: %v", c.conds)
	}
	for _, cond := range c.conds {
		if strings.Contains(cond, "COALESCE") && !strings.Contains(cond, "processo_preco_base_valor") {
			t.Fatalf("price clause must use the shared effective price expression: %s", cond)
		}
	}

	max := 1500.0
	c = buildWhere(priceRangeClause(&min, &max))
	if len(c.conds) != 3 || len(c.args) != 2 {
		t.Fatalf("expected non-null + both bounds, got %v / %v", c.conds, c.args)
	}
}

func TestDateRangeClauseEndOfDay(t *testing.T) {
	max := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	c := buildWhere(dateRangeClause(nil, &max))

	got, ok := c.args[0].(time.Time)
	if !ok {
		t.Fatalf("expected time arg, got %T", c.args[0])
	}
	want := time.Date(2026, 5, 10, 23, 59, 59, 999000000, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("max date must extend to end of day: got %v", got)
	}
}

func TestSupersededClauseAlwaysApplied(t *testing.T) {
	c := &conj{}
	c.apply(listClauses(ListParams{IncludeNA: true}, nil, nil)...)
	where := c.where()

	if !strings.Contains(where, "previous_dr_internal_id") {
		t.Fatalf("supersession filter missing from default listing: %s", where)
	}
	if !strings.Contains(where, "a.dr_internal_id IS NULL OR NOT EXISTS") {
		t.Fatalf("null internal ids must never be excluded: %s", where)
	}
}

func TestIDSetClause(t *testing.T) {
	if idSetClause(nil) != nil {
		t.Fatal("nil id set must contribute no clause")
	}

	c := buildWhere(idSetClause([]int64{3, 7}))
	if c.conds[0] != "a.id = ANY($1)" {
		t.Fatalf("unexpected id clause: %s", c.conds[0])
	}
}

func TestConjPlaceholderNumbering(t *testing.T) {
	min := 100.0
	c := buildWhere(
		searchClause("obras"),
		districtClause("Porto"),
		priceRangeClause(&min, nil),
	)

	if len(c.args) != 3 {
		t.Fatalf("expected 3 args, got %v", c.args)
	}
	joined := strings.Join(c.conds, " AND ")
	for _, ph := range []string{"$1", "$2", "$3"} {
		if !strings.Contains(joined, ph) {
			t.Fatalf("missing placeholder %s in %s", ph, joined)
		}
	}
	if strings.Contains(joined, "$4") {
		t.Fatalf("placeholder numbering ran ahead of args: %s", joined)
	}
}
