package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// readCSV walks a header-led CSV stream and hands fn the requested columns,
// in the order of fields, for every data row. Column order in the file does
// not matter. It returns the number of rows passed to fn.
func readCSV(r io.Reader, fields []string, fn func(values []string) error) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("csv: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	cols := make([]int, len(fields))
	for i, f := range fields {
		pos, ok := index[f]
		if !ok {
			return 0, &MissingFieldError{Field: f, Line: 1}
		}
		cols[i] = pos
	}

	n := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("csv: read row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		values := make([]string, len(cols))
		for i, pos := range cols {
			if pos >= len(record) {
				return n, &MissingFieldError{Field: fields[i], Line: line}
			}
			values[i] = record[pos]
		}
		if err := fn(values); err != nil {
			return n, err
		}
		n++
	}
}
