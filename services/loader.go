package services

import (
	"context"
	"fmt"
	"io"

	"stock-report/models"
	"stock-report/storage"
	"stock-report/utils"
)

var (
	relationFields = []string{"product", "location"}
	locationFields = []string{"id", "number", "street", "city", "state"}
)

// Loader reads the relation and location CSV files into the store.
type Loader struct {
	store  storage.Store
	logger *utils.Logger
}

// NewLoader creates a Loader writing to store.
func NewLoader(store storage.Store, logger *utils.Logger) *Loader {
	return &Loader{store: store, logger: logger}
}

// LoadRelations stores one Relation per data row of r, in file order,
// and returns how many were inserted.
func (l *Loader) LoadRelations(ctx context.Context, r io.Reader) (int, error) {
	var relations []models.Relation
	if _, err := readCSV(r, relationFields, func(v []string) error {
		relations = append(relations, models.Relation{Product: v[0], Location: v[1]})
		return nil
	}); err != nil {
		return 0, fmt.Errorf("relations: %w", err)
	}

	if err := l.store.InsertRelations(ctx, relations); err != nil {
		return 0, fmt.Errorf("relations: %w", err)
	}
	l.logger.Info("[loader] Inserted %d relations", len(relations))
	return len(relations), nil
}

// LoadLocations stores one Location per data row of r, verbatim and in
// file order, and returns how many were inserted.
func (l *Loader) LoadLocations(ctx context.Context, r io.Reader) (int, error) {
	var locations []models.Location
	if _, err := readCSV(r, locationFields, func(v []string) error {
		locations = append(locations, models.Location{
			ID:     v[0],
			Number: v[1],
			Street: v[2],
			City:   v[3],
			State:  v[4],
		})
		return nil
	}); err != nil {
		return 0, fmt.Errorf("locations: %w", err)
	}

	if err := l.store.InsertLocations(ctx, locations); err != nil {
		return 0, fmt.Errorf("locations: %w", err)
	}
	l.logger.Info("[loader] Inserted %d locations", len(locations))
	return len(locations), nil
}
