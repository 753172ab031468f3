package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"stock-report/models"
	"stock-report/storage"
	"stock-report/utils"
)

const (
	containerSelector = "div.product"
	linkSelector      = "a"
	inventorySelector = "div.inventory"
	costSelector      = "div.cost"
)

// InvalidProductPolicy decides what happens to a container that fails to parse.
type InvalidProductPolicy int

const (
	// AbortOnInvalid fails the whole extraction on the first bad container.
	AbortOnInvalid InvalidProductPolicy = iota
	// SkipInvalid logs bad containers, leaves them out and keeps going.
	SkipInvalid
)

// ParseInvalidProductPolicy maps the INVALID_PRODUCT_POLICY setting onto a policy.
func ParseInvalidProductPolicy(s string) (InvalidProductPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return AbortOnInvalid, nil
	case "skip":
		return SkipInvalid, nil
	}
	return AbortOnInvalid, fmt.Errorf("unknown invalid product policy %q", s)
}

// Extraction is the outcome of one pass over a stock page.
type Extraction struct {
	Containers int
	Products   []models.Product
	// Skipped holds one *StructureError per container left out under SkipInvalid.
	Skipped []error
}

// StockExtractor turns product listing blocks of an HTML page into Products.
type StockExtractor struct {
	policy InvalidProductPolicy
	logger *utils.Logger
}

// NewStockExtractor creates a StockExtractor with the given policy and logger.
func NewStockExtractor(policy InvalidProductPolicy, logger *utils.Logger) *StockExtractor {
	return &StockExtractor{policy: policy, logger: logger}
}

// Extract parses r and returns one Product per container, in document order.
// Under AbortOnInvalid the first *StructureError is returned and no products are.
func (e *StockExtractor) Extract(r io.Reader) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("stock: parse html: %w", err)
	}

	containers := doc.Find(containerSelector)
	result := &Extraction{
		Containers: containers.Length(),
		Products:   make([]models.Product, 0, containers.Length()),
	}
	seen := utils.NewIDSet()

	for i := range containers.Nodes {
		p, err := extractProduct(i, containers.Eq(i))
		if err != nil {
			if e.policy == AbortOnInvalid {
				return nil, fmt.Errorf("stock: %w", err)
			}
			e.logger.Warn("[stock] Skipping %v", err)
			result.Skipped = append(result.Skipped, err)
			continue
		}
		if !seen.Add(p.ID) {
			e.logger.Warn("[stock] Product id %q appears %d times", p.ID, seen.Count(p.ID))
		}
		result.Products = append(result.Products, p)
	}

	e.logger.Debug("[stock] %d containers → %d products (skipped %d)",
		result.Containers, len(result.Products), len(result.Skipped))
	return result, nil
}

// Load extracts products from r and inserts them into store in document order.
// It returns the number of products inserted.
func (e *StockExtractor) Load(ctx context.Context, store storage.Store, r io.Reader) (int, error) {
	ex, err := e.Extract(r)
	if err != nil {
		return 0, err
	}
	if err := store.InsertProducts(ctx, ex.Products); err != nil {
		return 0, fmt.Errorf("stock: %w", err)
	}
	if len(ex.Skipped) > 0 {
		e.logger.Warn("[stock] Inserted %d products, skipped %d malformed containers",
			len(ex.Products), len(ex.Skipped))
	} else {
		e.logger.Info("[stock] Inserted %d products", len(ex.Products))
	}
	return len(ex.Products), nil
}

func extractProduct(i int, c *goquery.Selection) (models.Product, error) {
	var p models.Product

	link := c.Find(linkSelector).First()
	if link.Length() == 0 {
		return p, &StructureError{Index: i, Field: "id", Reason: "no link element"}
	}
	href, ok := link.Attr("href")
	if !ok {
		return p, &StructureError{Index: i, Field: "id", Reason: "link has no href"}
	}
	p.ID = lastPathSegment(href)

	desc, err := firstText(i, "description", link)
	if err != nil {
		return p, err
	}
	p.Description = strings.TrimSpace(desc)

	inv, err := firstText(i, "stock", c.Find(inventorySelector).First())
	if err != nil {
		return p, err
	}
	if p.Stock, err = parseStock(inv); err != nil {
		return p, &StructureError{Index: i, Field: "stock", Reason: fmt.Sprintf("bad count %q", inv), Err: err}
	}

	cost, err := firstText(i, "price", c.Find(costSelector).First())
	if err != nil {
		return p, err
	}
	if p.Currency, p.Price, err = splitCost(cost); err != nil {
		return p, &StructureError{Index: i, Field: "price", Reason: fmt.Sprintf("bad cost %q", cost), Err: err}
	}

	return p, nil
}

// firstText returns the first child of the first node in sel, which must be text.
func firstText(i int, field string, sel *goquery.Selection) (string, error) {
	if sel.Length() == 0 {
		return "", &StructureError{Index: i, Field: field, Reason: "element not found"}
	}
	child := sel.Nodes[0].FirstChild
	if child == nil {
		return "", &StructureError{Index: i, Field: field, Reason: "element is empty"}
	}
	if child.Type != html.TextNode {
		return "", &StructureError{Index: i, Field: field, Reason: "first child is not text"}
	}
	return child.Data, nil
}
