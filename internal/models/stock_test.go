package models

import (
	"strconv"
	"testing"
)

func TestStockMappingIsBijective(t *testing.T) {
	if len(KnownStocks) != 3 {
		t.Fatalf("expected 3 known stocks, got %d", len(KnownStocks))
	}

	for _, s := range KnownStocks {
		bySlug, err := StockBySlug(s.Slug)
		if err != nil {
			t.Fatalf("slug %s: %v", s.Slug, err)
		}
		if bySlug.ID != s.ID {
			t.Fatalf("slug %s resolved to id %d, want %d", s.Slug, bySlug.ID, s.ID)
		}

		byID, err := StockByID(s.ID)
		if err != nil {
			t.Fatalf("id %d: %v", s.ID, err)
		}
		if byID.Slug != s.Slug {
			t.Fatalf("id %d resolved to slug %s, want %s", s.ID, byID.Slug, s.Slug)
		}
	}
}

func TestResolveStockID(t *testing.T) {
	cases := []struct {
		in      string
		want    uint
		wantErr bool
	}{
		{"al-ouloum", 1, false},
		{"renaissance", 2, false},
		{"gros", 3, false},
		{"1", 1, false},
		{"3", 3, false},
		{"", 0, true},
		{"0", 0, true},
		{"4", 0, true},
		{"atlantis", 0, true},
	}

	for _, tc := range cases {
		got, err := ResolveStockID(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ResolveStockID(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveStockID(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ResolveStockID(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestResolveStockID_NumericAndSlugAgree(t *testing.T) {
	for _, s := range KnownStocks {
		fromSlug, err := ResolveStockID(s.Slug)
		if err != nil {
			t.Fatalf("slug %s: %v", s.Slug, err)
		}
		fromID, err := ResolveStockID(strconv.FormatUint(uint64(s.ID), 10))
		if err != nil {
			t.Fatalf("id %d: %v", s.ID, err)
		}
		if fromSlug != fromID {
			t.Fatalf("slug %s and id %d disagree: %d vs %d", s.Slug, s.ID, fromSlug, fromID)
		}
	}
}
