package vending

import (
	"context"
	"testing"

	"github.com/happyloop/vendbot/internal/domain"
	"github.com/shopspring/decimal"
)

func resolverCatalog() *memCatalog {
	price := decimal.RequireFromString("3.50")
	return &memCatalog{products: []domain.Product{
		{ID: "p-coke", Name: "Coca-Cola", Price: price, StockQuantity: 20, IsActive: true},
		{ID: "p-coke-zero", Name: "Coca-Cola Zero", Price: price, StockQuantity: 5, IsActive: true},
		{ID: "p-fanta", Name: "Fanta Orange", Price: price, StockQuantity: 12, IsActive: true},
		{ID: "p-retired", Name: "Retired Soda", Price: price, StockQuantity: 9, IsActive: false},
	}}
}

func TestResolve(t *testing.T) {
	resolver := NewResolver(resolverCatalog(), nil)

	tests := []struct {
		name   string
		query  string
		wantID string
	}{
		{"exact name", "Coca-Cola", "p-coke"},
		{"case insensitive", "coca-cola", "p-coke"},
		{"substring", "cola", "p-coke"},
		{"whitespace trimmed", "  fanta orange  ", "p-fanta"},
		{"alias coke", "coke", "p-coke"},
		{"alias plural", "cokes", "p-coke"},
		{"alias inside phrase", "a cold fanta", "p-fanta"},
		{"multiple matches resolve to first inserted", "coca", "p-coke"},
		{"unknown", "water", ""},
		{"empty", "   ", ""},
		{"inactive excluded", "retired", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.query, err)
			}
			if tt.wantID == "" {
				if got != nil {
					t.Fatalf("Resolve(%q) = %s, want no match", tt.query, got.ID)
				}
				return
			}
			if got == nil {
				t.Fatalf("Resolve(%q) = nil, want %s", tt.query, tt.wantID)
			}
			if got.ID != tt.wantID {
				t.Errorf("Resolve(%q) = %s, want %s", tt.query, got.ID, tt.wantID)
			}
		})
	}
}

func TestResolve_CustomAliases(t *testing.T) {
	aliases := map[string]string{"laranja": "Fanta Orange"}
	resolver := NewResolver(resolverCatalog(), aliases)

	got, err := resolver.Resolve(context.Background(), "uma laranja")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got == nil || got.ID != "p-fanta" {
		t.Errorf("expected custom alias to resolve Fanta Orange, got %+v", got)
	}

	// The default table is replaced, not merged.
	got, err = resolver.Resolve(context.Background(), "coke")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got != nil {
		t.Errorf("expected 'coke' to miss with custom aliases, got %s", got.ID)
	}
}
