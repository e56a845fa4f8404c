package api

import (
	"net/http/httptest"
	"testing"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
		wantErr     bool
	}{
		{"defaults", "", 1, 25, false},
		{"explicit page", "?page=3", 3, 25, false},
		{"explicit per_page", "?per_page=10", 1, 10, false},
		{"per_page clamped to max", "?per_page=500", 1, 100, false},
		{"huge page clamped", "?page=2000000", maxPageNumber, 25, false},
		{"absurd page clamped", "?page=99999999999", maxPageNumber, 25, false},
		{"zero page rejected", "?page=0", 0, 0, true},
		{"negative per_page rejected", "?per_page=-5", 0, 0, true},
		{"garbage rejected", "?page=abc", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/v1/teams"+tt.query, nil)
			pg, err := parsePage(r, 25, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if pg.Number != tt.wantPage || pg.PerPage != tt.wantPerPage {
				t.Fatalf("parsePage() = %d/%d, want %d/%d", pg.Number, pg.PerPage, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

func TestPageOffsets(t *testing.T) {
	p := page{Number: 3, PerPage: 25}
	if p.limit() != 25 {
		t.Errorf("limit() = %d, want 25", p.limit())
	}
	if p.offset() != 50 {
		t.Errorf("offset() = %d, want 50", p.offset())
	}

	worst := page{Number: maxPageNumber, PerPage: 100}
	if worst.offset() < 0 {
		t.Errorf("offset() = %d, overflowed at the page ceiling", worst.offset())
	}
}
