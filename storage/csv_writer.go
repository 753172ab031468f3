package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"stock-report/models"
)

// ReportHeader is the first row of every stock report.
var ReportHeader = []string{"description", "price", "currency", "stock", "location"}

// CSVWriter writes the joined stock report as CSV.
type CSVWriter struct {
	closer io.Closer
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}
	return &CSVWriter{closer: f, writer: csv.NewWriter(f)}, nil
}

// NewCSVStreamWriter writes to w. Closing it flushes but leaves w open.
func NewCSVStreamWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{writer: csv.NewWriter(w)}
}

// WriteReport writes the header followed by one line per row.
func (c *CSVWriter) WriteReport(rows []models.ReportRow) error {
	if err := c.writer.Write(ReportHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.Description,
			r.Price,
			r.Currency,
			strconv.Itoa(r.Stock),
			r.Location,
		}
		if err := c.writer.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file, if any.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if c.closer == nil {
		return c.writer.Error()
	}
	return c.closer.Close()
}
