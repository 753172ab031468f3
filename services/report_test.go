package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-report/models"
	"stock-report/storage"
)

func seedStore(t *testing.T, store storage.Store, products []models.Product, locations []models.Location, relations []models.Relation) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.InsertProducts(ctx, products))
	require.NoError(t, store.InsertLocations(ctx, locations))
	require.NoError(t, store.InsertRelations(ctx, relations))
}

func TestGenerateOrdersByNumericPrice(t *testing.T) {
	store := newTestStore(t, storage.CommitPerBatch)
	seedStore(t, store,
		[]models.Product{
			{ID: "A", Description: "Ten", Stock: 1, Price: "10.00", Currency: "$"},
			{ID: "B", Description: "Nine", Stock: 2, Price: "9.5", Currency: "$"},
			{ID: "C", Description: "Hundred", Stock: 3, Price: "100", Currency: "$"},
			{ID: "D", Description: "Cheap", Stock: 4, Price: "0.99", Currency: "$"},
		},
		[]models.Location{{ID: "L1", Number: "1", Street: "A St", City: "X", State: "NY"}},
		[]models.Relation{
			{Product: "A", Location: "L1"},
			{Product: "B", Location: "L1"},
			{Product: "C", Location: "L1"},
			{Product: "D", Location: "L1"},
		},
	)

	svc := NewReportService(newTestLogger())
	entries, err := svc.Generate(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	var got []string
	for _, e := range entries {
		got = append(got, e.Product.Price)
	}
	assert.Equal(t, []string{"0.99", "9.5", "10.00", "100"}, got, "lexicographic order would put 10.00 first")

	for i := 1; i < len(entries); i++ {
		a := decimal.RequireFromString(entries[i-1].Product.Price)
		b := decimal.RequireFromString(entries[i].Product.Price)
		assert.True(t, a.LessThanOrEqual(b))
	}
}

func TestGenerateInnerJoin(t *testing.T) {
	store := newTestStore(t, storage.CommitPerRow)
	seedStore(t, store,
		[]models.Product{
			{ID: "P1", Description: "Widget", Stock: 5, Price: "9.99", Currency: "$"},
			{ID: "P2", Description: "Gadget", Stock: 1, Price: "1.00", Currency: "$"},
		},
		[]models.Location{
			{ID: "L1", Number: "10", Street: "Main St", City: "Springfield", State: "NY"},
			{ID: "L2", Number: "22", Street: "Oak Ave", City: "Portland", State: "OR"},
		},
		[]models.Relation{
			{Product: "P1", Location: "L1"},
			{Product: "P1", Location: "L2"},
			{Product: "P2", Location: "L404"},
			{Product: "P404", Location: "L1"},
		},
	)

	svc := NewReportService(newTestLogger())
	entries, err := svc.Generate(context.Background(), store)
	require.NoError(t, err)

	rows := svc.Rows(entries)
	assert.Equal(t, []models.ReportRow{
		{Description: "Widget", Price: "9.99", Currency: "$", Stock: 5, Location: "10, Main St, Springfield, NY"},
		{Description: "Widget", Price: "9.99", Currency: "$", Stock: 5, Location: "22, Oak Ave, Portland, OR"},
	}, rows, "ties keep relation order and dangling relations are dropped")
}

func TestWriteReportExample(t *testing.T) {
	store := newTestStore(t, storage.CommitPerRow)
	seedStore(t, store,
		[]models.Product{{ID: "P1", Description: "Widget", Stock: 5, Price: "9.99", Currency: "$"}},
		[]models.Location{{ID: "L1", Number: "10", Street: "Main St", City: "Springfield", State: "NY"}},
		[]models.Relation{{Product: "P1", Location: "L1"}},
	)

	svc := NewReportService(newTestLogger())
	entries, err := svc.Generate(context.Background(), store)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := storage.NewCSVStreamWriter(&buf)
	require.NoError(t, svc.Write(entries, w))
	require.NoError(t, w.Close())

	assert.Equal(t,
		"description,price,currency,stock,location\n"+
			"Widget,9.99,$,5,\"10, Main St, Springfield, NY\"\n",
		buf.String())
}

func TestGenerateEmptyStore(t *testing.T) {
	store := newTestStore(t, storage.CommitPerRow)
	svc := NewReportService(newTestLogger())

	entries, err := svc.Generate(context.Background(), store)
	require.NoError(t, err)
	assert.Empty(t, entries)

	sum := svc.Summarize(entries)
	assert.Zero(t, sum.TotalRows)

	var out bytes.Buffer
	svc.out = &out
	svc.Print(sum)
	assert.Contains(t, out.String(), "No joined rows")
}

func TestSummarize(t *testing.T) {
	entries := []models.StockEntry{
		{Product: models.Product{ID: "P2", Description: "Gadget", Stock: 1, Price: "1.00", Currency: "$"},
			Location: models.Location{ID: "L2", State: "OR"}},
		{Product: models.Product{ID: "P1", Description: "Widget", Stock: 5, Price: "9.99", Currency: "$"},
			Location: models.Location{ID: "L1", State: "NY"}},
		{Product: models.Product{ID: "P1", Description: "Widget", Stock: 5, Price: "9.99", Currency: "$"},
			Location: models.Location{ID: "L2", State: "OR"}},
	}

	svc := NewReportService(newTestLogger())
	sum := svc.Summarize(entries)
	assert.Equal(t, 3, sum.TotalRows)
	assert.Equal(t, 2, sum.DistinctItems)
	assert.Equal(t, 11, sum.TotalStock)
	assert.Equal(t, "1.00", sum.MinPrice)
	assert.Equal(t, "9.99", sum.MaxPrice)
	assert.Equal(t, "6.99", sum.AveragePrice)
	assert.Equal(t, "Gadget", sum.Cheapest.Description)
	assert.Equal(t, map[string]int{"OR": 2, "NY": 1}, sum.RowsByState)

	var out bytes.Buffer
	svc.out = &out
	svc.Print(sum)
	assert.Contains(t, out.String(), "STOCK REPORT")
	assert.Contains(t, out.String(), "Average   : 6.99")
}
