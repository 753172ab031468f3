package services

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	errEmpty   = errors.New("empty text")
	errNoPrice = errors.New("no price after currency symbol")
)

// parseStock reads the leading whitespace-delimited token as a count.
// Examples:
//
//	"5 in stock"  → 5
//	"  12 left"   → 12
//	"none"        → error
func parseStock(raw string) (int, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, errEmpty
	}
	return strconv.Atoi(fields[0])
}

// splitCost separates the leading currency symbol from the decimal price.
// The price text is returned as written so the report reproduces it exactly.
// Examples:
//
//	"$9.99"  → "$", "9.99"
//	"€12"    → "€", "12"
func splitCost(raw string) (currency, price string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", errEmpty
	}
	r, size := utf8.DecodeRuneInString(raw)
	currency, price = string(r), raw[size:]
	if price == "" {
		return "", "", errNoPrice
	}
	if _, err := decimal.NewFromString(price); err != nil {
		return "", "", err
	}
	return currency, price, nil
}

// lastPathSegment returns what follows the final "/" of href.
func lastPathSegment(href string) string {
	return href[strings.LastIndex(href, "/")+1:]
}
