package models

// Product is one listing block extracted from the stock HTML page.
// Price keeps the decimal text exactly as it appeared after the currency symbol.
type Product struct {
	ID          string
	Description string
	Stock       int
	Price       string
	Currency    string
}

// Location is a store address loaded verbatim from the locations CSV.
type Location struct {
	ID     string
	Number string
	Street string
	City   string
	State  string
}

// Relation links a product id to a location id. Neither side is checked at load time.
type Relation struct {
	Product  string
	Location string
}

// StockEntry is a relation resolved against both of its ends.
type StockEntry struct {
	Product  Product
	Location Location
}

// ReportRow is one joined record of the stock report.
type ReportRow struct {
	Description string
	Price       string
	Currency    string
	Stock       int
	Location    string
}

// Address formats a location the way the report prints it.
func (l Location) Address() string {
	return l.Number + ", " + l.Street + ", " + l.City + ", " + l.State
}

// ReportSummary holds aggregate figures over the written report.
type ReportSummary struct {
	TotalRows      int
	DistinctItems  int
	MinPrice       string
	MaxPrice       string
	AveragePrice   string
	Cheapest       *ReportRow
	MostExpensive  *ReportRow
	TotalStock     int
	RowsByState    map[string]int
	RowsByCurrency map[string]int
}
