package db

import (
	"testing"
	"time"
)

func TestParseDeadline(t *testing.T) {
	tests := []struct {
		raw  string
		ok   bool
		want time.Time
	}{
		{"15-03-2026 17:00", true, time.Date(2026, 3, 15, 17, 0, 0, 0, time.Local)},
		{"  15-03-2026 17:00  ", true, time.Date(2026, 3, 15, 17, 0, 0, 0, time.Local)},
		{"2026-03-15T17:00:00Z", true, time.Date(2026, 3, 15, 17, 0, 0, 0, time.UTC)},
		{"2026-03-15 17:00:00", true, time.Date(2026, 3, 15, 17, 0, 0, 0, time.UTC)},
		{"2026-03-15", true, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"ver anúncio", false, time.Time{}},
		{"32-13-2026 99:99", false, time.Time{}},
	}

	for _, tt := range tests {
		got, ok := parseDeadline(tt.raw)
		if ok != tt.ok {
			t.Errorf("parseDeadline(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("parseDeadline(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestComputeExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local)

	if got := computeExpired("", now); got != nil {
		t.Fatal("blank deadline must stay undeterminable")
	}
	if got := computeExpired("consultar peças", now); got != nil {
		t.Fatal("unparseable deadline must stay undeterminable")
	}
	if got := computeExpired("31-05-2026 23:59", now); got == nil || !*got {
		t.Fatal("past deadline must be expired")
	}
	if got := computeExpired("02-06-2026 09:00", now); got == nil || *got {
		t.Fatal("future deadline must be active")
	}
}
