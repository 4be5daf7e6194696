package vending

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/happyloop/vendbot/internal/domain"
)

// Catalog is the slice of the inventory store the vending flow reads from.
// Both operations only see active products.
type Catalog interface {
	ListAvailable(ctx context.Context) ([]domain.Product, error)
	SearchByName(ctx context.Context, name string) ([]domain.Product, error)
}

// DefaultAliases maps colloquial product references to canonical catalog
// names. It is a static registry maintained alongside the catalog; add an
// entry here whenever a product gains a nickname.
var DefaultAliases = map[string]string{
	"coke":    "Coca-Cola",
	"cokes":   "Coca-Cola",
	"cola":    "Coca-Cola",
	"fanta":   "Fanta Orange",
	"guarana": "Guarana Antarctica",
	"sprite":  "Sprite",
	"pepsi":   "Pepsi",
}

// Resolver maps free-text product references onto canonical catalog entries.
// Resolution is two-phase: a direct case-insensitive substring match against
// product names, then a retry through the alias table. Only active products
// are eligible.
type Resolver struct {
	products Catalog
	aliases  map[string]string
}

// NewResolver creates a resolver over the given catalog. A nil alias map
// selects DefaultAliases.
func NewResolver(products Catalog, aliases map[string]string) *Resolver {
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Resolver{products: products, aliases: aliases}
}

// Resolve returns the catalog entry for the given free-text name, or nil
// when nothing matches. Multiple matches resolve to the first in insertion
// order.
func (r *Resolver) Resolve(ctx context.Context, name string) (*domain.Product, error) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil, nil
	}

	matches, err := r.products.SearchByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("Resolve: direct search: %w", err)
	}
	if len(matches) > 0 {
		return &matches[0], nil
	}

	// Alias pass: the query may contain a nickname rather than the real
	// name ("2 cokes"). Longer aliases first so "guarana antarctica" is not
	// shadowed by "guarana".
	aliases := make([]string, 0, len(r.aliases))
	for alias := range r.aliases {
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})

	for _, alias := range aliases {
		if !strings.Contains(query, alias) {
			continue
		}
		matches, err := r.products.SearchByName(ctx, r.aliases[alias])
		if err != nil {
			return nil, fmt.Errorf("Resolve: alias search: %w", err)
		}
		if len(matches) > 0 {
			return &matches[0], nil
		}
	}

	return nil, nil
}
