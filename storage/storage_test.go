package storage

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-report/models"
)

func openTestStore(t *testing.T, mode CommitMode) *SQLStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "stock.db"), mode)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestParseCommitMode(t *testing.T) {
	tests := []struct {
		in   string
		want CommitMode
	}{
		{"", CommitPerRow},
		{"row", CommitPerRow},
		{"BATCH", CommitPerBatch},
		{" batch ", CommitPerBatch},
	}
	for _, tt := range tests {
		got, err := ParseCommitMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseCommitMode("sometimes")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := `INSERT INTO relations (product, location) VALUES (?, ?)`
	assert.Equal(t, q, sqliteDialect.rebind(q))
	assert.Equal(t, `INSERT INTO relations (product, location) VALUES ($1, $2)`, postgresDialect.rebind(q))
}

func TestInsertAndJoin(t *testing.T) {
	for _, mode := range []CommitMode{CommitPerRow, CommitPerBatch} {
		t.Run(mode.String(), func(t *testing.T) {
			ctx := context.Background()
			s := openTestStore(t, mode)

			require.NoError(t, s.InsertProducts(ctx, []models.Product{
				{ID: "P1", Description: "Widget", Stock: 5, Price: "9.99", Currency: "$"},
				{ID: "P2", Description: "Gadget", Stock: 1, Price: "20.00", Currency: "$"},
			}))
			require.NoError(t, s.InsertLocations(ctx, []models.Location{
				{ID: "L1", Number: "10", Street: "Main St", City: "Springfield", State: "NY"},
			}))
			require.NoError(t, s.InsertRelations(ctx, []models.Relation{
				{Product: "P1", Location: "L1"},
				{Product: "P2", Location: "L9"},
				{Product: "P9", Location: "L1"},
			}))

			entries, err := s.StockEntries(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "Widget", entries[0].Product.Description)
			assert.Equal(t, "9.99", entries[0].Product.Price)
			assert.Equal(t, 5, entries[0].Product.Stock)
			assert.Equal(t, "Springfield", entries[0].Location.City)

			n, err := s.Count(ctx, "relations")
			require.NoError(t, err)
			assert.Equal(t, 3, n)
		})
	}
}

func TestInsertTwiceDuplicatesRows(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, CommitPerRow)
	rel := []models.Relation{{Product: "P1", Location: "L1"}}

	require.NoError(t, s.InsertRelations(ctx, rel))
	require.NoError(t, s.InsertRelations(ctx, rel))

	n, err := s.Count(ctx, "relations")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestProductsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, CommitPerBatch)
	in := []models.Product{
		{ID: "b", Description: "B", Stock: 2, Price: "2", Currency: "$"},
		{ID: "a", Description: "A", Stock: 1, Price: "1", Currency: "$"},
		{ID: "c", Description: "C", Stock: 3, Price: "3", Currency: "€"},
	}
	require.NoError(t, s.InsertProducts(ctx, in))

	out, err := s.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestInsertOnClosedStoreIsStoreError(t *testing.T) {
	s := openTestStore(t, CommitPerRow)
	require.NoError(t, s.Close())

	err := s.InsertLocations(context.Background(), []models.Location{{ID: "L1"}})
	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr), "got %v", err)
	assert.Equal(t, "locations", storeErr.Table)
	assert.Equal(t, "insert", storeErr.Op)
}

func TestCountRejectsUnknownTable(t *testing.T) {
	s := openTestStore(t, CommitPerRow)
	_, err := s.Count(context.Background(), "users; DROP TABLE products")
	assert.Error(t, err)
}

func TestCSVWriterQuotesLocation(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVStreamWriter(&buf)
	require.NoError(t, w.WriteReport([]models.ReportRow{
		{Description: "Widget", Price: "9.99", Currency: "$", Stock: 5, Location: "10, Main St, Springfield, NY"},
	}))
	require.NoError(t, w.Close())

	want := "description,price,currency,stock,location\n" +
		"Widget,9.99,$,5,\"10, Main St, Springfield, NY\"\n"
	assert.Equal(t, want, buf.String())
}

func TestCSVWriterCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteReport(nil))
	require.NoError(t, w.Close())
	assert.FileExists(t, path)
}
