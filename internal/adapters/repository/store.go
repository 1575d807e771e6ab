// Package repository loads the portfolio record set from its data file.
package repository

import (
	"context"

	"github.com/okian/vitrine/internal/domain/model"
)

// Store provides read-only access to the portfolio.
type Store interface {
	// Load parses the data source on first use and returns the cached
	// portfolio (or the cached error) afterwards.
	Load(ctx context.Context) (*model.Portfolio, error)

	// Items returns the ordered records of a category, or nil for unknown names.
	Items(ctx context.Context, c model.Category) ([]model.Record, error)
}
