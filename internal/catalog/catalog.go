// Package catalog holds the storefront's starter product list. It is written
// into the products table once, so browsing and checkout share one source.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/flicky/greenmart/internal/model"
	"github.com/flicky/greenmart/internal/repository"
)

//go:embed products.json
var seedJSON []byte

type Category struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

type Product struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// Load parses the embedded catalog and rejects entries that would violate
// the products table constraints.
func Load() ([]Category, error) {
	var categories []Category
	if err := json.Unmarshal(seedJSON, &categories); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]bool)
	for _, c := range categories {
		for _, p := range c.Products {
			key := strings.ToLower(p.Name)
			switch {
			case p.Name == "":
				return nil, fmt.Errorf("catalog: product without name in %q", c.Name)
			case seen[key]:
				return nil, fmt.Errorf("catalog: duplicate product %q", p.Name)
			case p.Price.IsNegative():
				return nil, fmt.Errorf("catalog: negative price for %q", p.Name)
			case p.Stock < 0:
				return nil, fmt.Errorf("catalog: negative stock for %q", p.Name)
			}
			seen[key] = true
		}
	}
	return categories, nil
}

// Seed inserts the catalog when there are no products yet and returns the
// number of products written.
func Seed(ctx context.Context, store repository.Store) (int, error) {
	categories, err := Load()
	if err != nil {
		return 0, err
	}

	var inserted int
	err = store.InTx(ctx, func(tx repository.Store) error {
		n, err := tx.Products().Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, c := range categories {
			category := &model.Category{Name: c.Name}
			if err := tx.Categories().Create(ctx, category); err != nil {
				return err
			}
			for _, p := range c.Products {
				product := &model.Product{
					Name:        p.Name,
					Description: p.Description,
					Image:       p.Image,
					Price:       p.Price,
					Stock:       p.Stock,
					CategoryID:  &category.ID,
				}
				if err := tx.Products().Create(ctx, product); err != nil {
					return err
				}
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	return inserted, nil
}
