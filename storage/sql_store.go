package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"stock-report/models"
)

// CommitMode controls how loader inserts are grouped into transactions.
type CommitMode int

const (
	// CommitPerRow wraps every insert in its own transaction.
	CommitPerRow CommitMode = iota
	// CommitPerBatch wraps a whole loader call in one transaction.
	CommitPerBatch
)

// ParseCommitMode maps the COMMIT_MODE setting onto a CommitMode.
func ParseCommitMode(s string) (CommitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "row":
		return CommitPerRow, nil
	case "batch":
		return CommitPerBatch, nil
	}
	return CommitPerRow, fmt.Errorf("storage: unknown commit mode %q", s)
}

func (m CommitMode) String() string {
	if m == CommitPerBatch {
		return "batch"
	}
	return "row"
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          TEXT    NOT NULL,
		description TEXT    NOT NULL,
		stock       INTEGER NOT NULL,
		price       TEXT    NOT NULL,
		currency    TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		id     TEXT NOT NULL,
		number TEXT NOT NULL,
		street TEXT NOT NULL,
		city   TEXT NOT NULL,
		state  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS relations (
		product  TEXT NOT NULL,
		location TEXT NOT NULL
	)`,
}

// dialect captures the few places where SQLite and PostgreSQL differ.
type dialect struct {
	name string
	// dollarParams rewrites ? placeholders to $1, $2, ...
	dollarParams bool
	// rowOrder is the physical-order expression for one table alias.
	rowOrder func(alias string) string
}

var (
	sqliteDialect = dialect{
		name:     "sqlite",
		rowOrder: func(a string) string { return a + ".rowid" },
	}
	postgresDialect = dialect{
		name:         "postgres",
		dollarParams: true,
		rowOrder:     func(a string) string { return a + ".ctid" },
	}
)

func (d dialect) rebind(query string) string {
	if !d.dollarParams {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore implements Store on top of database/sql. The SQLite and
// PostgreSQL constructors only differ in driver and dialect.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	mode    CommitMode
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect, mode CommitMode) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d, mode: mode}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("%s: migrate: %w", d.name, err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// Mode reports the commit granularity the store was opened with.
func (s *SQLStore) Mode() CommitMode { return s.mode }

// InsertRelations appends one row per relation, in slice order.
func (s *SQLStore) InsertRelations(ctx context.Context, relations []models.Relation) error {
	args := make([][]any, 0, len(relations))
	for _, r := range relations {
		args = append(args, []any{r.Product, r.Location})
	}
	return s.insert(ctx, "relations", `INSERT INTO relations (product, location) VALUES (?, ?)`, args)
}

// InsertLocations appends one row per location, in slice order.
func (s *SQLStore) InsertLocations(ctx context.Context, locations []models.Location) error {
	args := make([][]any, 0, len(locations))
	for _, l := range locations {
		args = append(args, []any{l.ID, l.Number, l.Street, l.City, l.State})
	}
	return s.insert(ctx, "locations",
		`INSERT INTO locations (id, number, street, city, state) VALUES (?, ?, ?, ?, ?)`, args)
}

// InsertProducts appends one row per product, in slice order.
func (s *SQLStore) InsertProducts(ctx context.Context, products []models.Product) error {
	args := make([][]any, 0, len(products))
	for _, p := range products {
		args = append(args, []any{p.ID, p.Description, p.Stock, p.Price, p.Currency})
	}
	return s.insert(ctx, "products",
		`INSERT INTO products (id, description, stock, price, currency) VALUES (?, ?, ?, ?, ?)`, args)
}

func (s *SQLStore) insert(ctx context.Context, table, query string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	query = s.dialect.rebind(query)

	if s.mode == CommitPerBatch {
		if err := s.inTx(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, query)
			if err != nil {
				return err
			}
			defer func() { _ = stmt.Close() }()
			for _, args := range rows {
				if _, err := stmt.ExecContext(ctx, args...); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return &StoreError{Op: "insert", Table: table, Err: err}
		}
		return nil
	}

	for i, args := range rows {
		if err := s.inTx(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, query, args...)
			return err
		}); err != nil {
			return &StoreError{Op: "insert", Table: table, Err: fmt.Errorf("row %d: %w", i+1, err)}
		}
	}
	return nil
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// StockEntries returns every relation whose product and location both exist,
// in the physical order the rows were stored.
func (s *SQLStore) StockEntries(ctx context.Context) ([]models.StockEntry, error) {
	o := s.dialect.rowOrder
	query := `
		SELECT p.id, p.description, p.stock, p.price, p.currency,
		       l.id, l.number, l.street, l.city, l.state
		FROM relations r
		JOIN products  p ON p.id = r.product
		JOIN locations l ON l.id = r.location
		ORDER BY ` + o("r") + `, ` + o("p") + `, ` + o("l")

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &StoreError{Op: "query", Table: "relations", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var entries []models.StockEntry
	for rows.Next() {
		var e models.StockEntry
		if err := rows.Scan(
			&e.Product.ID, &e.Product.Description, &e.Product.Stock, &e.Product.Price, &e.Product.Currency,
			&e.Location.ID, &e.Location.Number, &e.Location.Street, &e.Location.City, &e.Location.State,
		); err != nil {
			return nil, &StoreError{Op: "scan", Table: "relations", Err: err}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "query", Table: "relations", Err: err}
	}
	return entries, nil
}

// Count returns the number of rows in one of the three tables.
func (s *SQLStore) Count(ctx context.Context, table string) (int, error) {
	switch table {
	case "products", "locations", "relations":
	default:
		return 0, fmt.Errorf("storage: unknown table %q", table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, &StoreError{Op: "count", Table: table, Err: err}
	}
	return n, nil
}

// Products returns the stored products in insertion order.
func (s *SQLStore) Products(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, stock, price, currency FROM products p ORDER BY `+s.dialect.rowOrder("p"))
	if err != nil {
		return nil, &StoreError{Op: "query", Table: "products", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Description, &p.Stock, &p.Price, &p.Currency); err != nil {
			return nil, &StoreError{Op: "scan", Table: "products", Err: err}
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
