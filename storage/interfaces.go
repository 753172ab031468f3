package storage

import (
	"context"

	"stock-report/models"
)

// Store is the relational store every loader writes to and the report reads from.
type Store interface {
	InsertRelations(ctx context.Context, relations []models.Relation) error
	InsertLocations(ctx context.Context, locations []models.Location) error
	InsertProducts(ctx context.Context, products []models.Product) error
	StockEntries(ctx context.Context) ([]models.StockEntry, error)
	Close() error
}

// ReportWriter is the interface for persisting the joined stock report.
type ReportWriter interface {
	WriteReport(rows []models.ReportRow) error
	Close() error
}
