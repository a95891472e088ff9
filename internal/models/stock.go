package models

import (
	"fmt"
	"strconv"
	"time"
)

// Stock is a store/warehouse location, not an inventory count.
type Stock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"size:50;unique;not null" json:"slug"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// The three known locations. This table is the single source of truth for the
// slug/id/name mapping; every handler resolves through it.
var KnownStocks = []Stock{
	{ID: 1, Slug: "al-ouloum", Name: "Librairie Al Ouloum"},
	{ID: 2, Slug: "renaissance", Name: "Librairie La Renaissance"},
	{ID: 3, Slug: "gros", Name: "Gros (Dépôt général)"},
}

func StockBySlug(slug string) (Stock, error) {
	for _, s := range KnownStocks {
		if s.Slug == slug {
			return s, nil
		}
	}
	return Stock{}, fmt.Errorf("unknown stock: %s", slug)
}

func StockByID(id uint) (Stock, error) {
	for _, s := range KnownStocks {
		if s.ID == id {
			return s, nil
		}
	}
	return Stock{}, fmt.Errorf("unknown stock id: %d", id)
}

// ResolveStockID accepts either a numeric id or a slug and returns the
// canonical id. Unknown values are an error, never silently defaulted.
func ResolveStockID(v string) (uint, error) {
	if v == "" {
		return 0, fmt.Errorf("stock is required")
	}
	if n, err := strconv.ParseUint(v, 10, 32); err == nil {
		s, err := StockByID(uint(n))
		if err != nil {
			return 0, err
		}
		return s.ID, nil
	}
	s, err := StockBySlug(v)
	if err != nil {
		return 0, err
	}
	return s.ID, nil
}
