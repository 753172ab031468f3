package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"stock-report/models"
	"stock-report/storage"
	"stock-report/utils"
)

// ReportService joins the stored tables into the stock report.
type ReportService struct {
	logger *utils.Logger
	out    io.Writer
}

// NewReportService creates a ReportService that prints summaries to stdout.
func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger, out: os.Stdout}
}

type pricedEntry struct {
	entry models.StockEntry
	price decimal.Decimal
}

// Generate returns every relation that resolves to both a product and a
// location, ordered by numeric price ascending. Equal prices keep store order.
func (s *ReportService) Generate(ctx context.Context, store storage.Store) ([]models.StockEntry, error) {
	entries, err := store.StockEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}

	priced := make([]pricedEntry, len(entries))
	for i, e := range entries {
		d, err := decimal.NewFromString(e.Product.Price)
		if err != nil {
			return nil, fmt.Errorf("report: price %q of product %q: %w", e.Product.Price, e.Product.ID, err)
		}
		priced[i] = pricedEntry{entry: e, price: d}
	}
	slices.SortStableFunc(priced, func(a, b pricedEntry) int {
		return a.price.Cmp(b.price)
	})

	for i := range priced {
		entries[i] = priced[i].entry
	}
	s.logger.Info("[report] Joined %d rows", len(entries))
	return entries, nil
}

// Rows converts joined entries into report lines.
func (s *ReportService) Rows(entries []models.StockEntry) []models.ReportRow {
	rows := make([]models.ReportRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, models.ReportRow{
			Description: e.Product.Description,
			Price:       e.Product.Price,
			Currency:    e.Product.Currency,
			Stock:       e.Product.Stock,
			Location:    e.Location.Address(),
		})
	}
	return rows
}

// Write emits the report for entries through w.
func (s *ReportService) Write(entries []models.StockEntry, w storage.ReportWriter) error {
	if err := w.WriteReport(s.Rows(entries)); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// Summarize computes aggregate figures over entries returned by Generate.
func (s *ReportService) Summarize(entries []models.StockEntry) *models.ReportSummary {
	sum := &models.ReportSummary{
		RowsByState:    make(map[string]int),
		RowsByCurrency: make(map[string]int),
	}
	if len(entries) == 0 {
		return sum
	}

	rows := s.Rows(entries)
	sum.TotalRows = len(rows)
	sum.Cheapest = &rows[0]
	sum.MostExpensive = &rows[len(rows)-1]
	sum.MinPrice = rows[0].Price
	sum.MaxPrice = rows[len(rows)-1].Price

	items := utils.NewIDSet()
	total := decimal.Zero
	for _, e := range entries {
		items.Add(e.Product.ID)
		sum.TotalStock += e.Product.Stock
		sum.RowsByState[e.Location.State]++
		sum.RowsByCurrency[e.Product.Currency]++
		total = total.Add(decimal.RequireFromString(e.Product.Price))
	}
	sum.DistinctItems = items.Size()
	sum.AveragePrice = total.Div(decimal.NewFromInt(int64(len(entries)))).StringFixed(2)
	return sum
}

// Print writes a short console summary of the report.
func (s *ReportService) Print(r *models.ReportSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(s.out, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(s.out, "\033[1;35m  STOCK REPORT\033[0m\n")
	fmt.Fprintf(s.out, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(s.out, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(s.out, "  %s\n", thin)
	fmt.Fprintf(s.out, "  Report rows      : \033[1m%d\033[0m\n", r.TotalRows)
	fmt.Fprintf(s.out, "  Distinct items   : \033[1m%d\033[0m\n", r.DistinctItems)
	fmt.Fprintf(s.out, "  Units in stock   : \033[1m%d\033[0m\n", r.TotalStock)
	fmt.Fprintln(s.out)

	if r.TotalRows == 0 {
		fmt.Fprintf(s.out, "  No joined rows, report only has its header\n")
		fmt.Fprintf(s.out, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	fmt.Fprintf(s.out, "\033[1;33m  Prices\033[0m\n")
	fmt.Fprintf(s.out, "  %s\n", thin)
	fmt.Fprintf(s.out, "  Cheapest  : %s%s  %s\n", r.Cheapest.Currency, r.MinPrice, truncate(r.Cheapest.Description, 36))
	fmt.Fprintf(s.out, "  Priciest  : %s%s  %s\n", r.MostExpensive.Currency, r.MaxPrice, truncate(r.MostExpensive.Description, 36))
	fmt.Fprintf(s.out, "  Average   : %s\n", r.AveragePrice)
	if len(r.RowsByCurrency) > 1 {
		fmt.Fprintf(s.out, "  (mixed currencies: %s)\n", strings.Join(sortedKeys(r.RowsByCurrency), " "))
	}
	fmt.Fprintln(s.out)

	fmt.Fprintf(s.out, "\033[1;33m  Rows by State\033[0m\n")
	fmt.Fprintf(s.out, "  %s\n", thin)
	type stateCount struct {
		state string
		count int
	}
	var states []stateCount
	for st, cnt := range r.RowsByState {
		states = append(states, stateCount{st, cnt})
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].count != states[j].count {
			return states[i].count > states[j].count
		}
		return states[i].state < states[j].state
	})
	for _, sc := range states {
		bar := strings.Repeat("█", min(sc.count, 40))
		fmt.Fprintf(s.out, "  %-20s %s (%d)\n", truncate(sc.state, 18), bar, sc.count)
	}

	fmt.Fprintf(s.out, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
