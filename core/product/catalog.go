package product

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrNotFound reports a product id with no catalog entry.
var ErrNotFound = errors.New("product not found")

// DefaultPerPage matches the storefront's browse grid.
const DefaultPerPage = 48

// Catalog holds the transformed products in memory. The dump file only
// changes when the scraper reruns, so it is read once at startup and again
// on explicit Reload.
type Catalog struct {
	log  logrus.FieldLogger
	path string

	mu       sync.RWMutex
	products []Product
}

func Open(log logrus.FieldLogger, path string) (*Catalog, error) {
	c := &Catalog{log: log, path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads and re-transforms the dump file, replacing the in-memory
// catalog wholesale.
func (c *Catalog) Reload() error {
	b, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("reading catalog file %q: %w", c.path, err)
	}

	var raws []Raw
	if err := json.Unmarshal(b, &raws); err != nil {
		return fmt.Errorf("decoding catalog file %q: %w", c.path, err)
	}

	products := make([]Product, 0, len(raws))
	for i, r := range raws {
		products = append(products, Transform(r, i))
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()

	c.log.WithField("products", len(products)).Info("catalog loaded")
	return nil
}

// Filter narrows and pages a listing. Zero values mean "no constraint";
// category "all" is equivalent to no category.
type Filter struct {
	Category string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	PerPage  int
}

// Page describes the slice of the filtered listing that was returned.
type Page struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// List applies the filter and returns one page of products plus the paging
// summary over the whole filtered set.
func (c *Catalog) List(f Filter) ([]Product, Page) {
	c.mu.RLock()
	src := c.products
	c.mu.RUnlock()

	matched := make([]Product, 0, len(src))
	for _, p := range src {
		if !matches(p, f) {
			continue
		}
		matched = append(matched, p)
	}

	perPage := f.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	total := len(matched)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return matched[start:end], Page{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

func matches(p Product, f Filter) bool {
	if f.Category != "" && f.Category != "all" {
		if !strings.Contains(strings.ToLower(p.Category), strings.ToLower(f.Category)) {
			return false
		}
	}

	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) &&
			!strings.Contains(strings.ToLower(p.Brand), term) {
			return false
		}
	}

	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

// Fetch returns the product with the given id.
func (c *Catalog) Fetch(id int) (Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ProductCount int    `json:"productCount"`
}

// Categories derives the category list from the loaded products, with the
// synthetic "All Products" entry first and the rest sorted by name.
func (c *Catalog) Categories() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range c.products {
		name := p.Category
		if name == "" {
			name = "Uncategorized"
		}
		counts[name]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make([]Category, 0, len(counts)+1)
	categories = append(categories, Category{
		ID:           "all",
		Name:         "All Products",
		Slug:         "all",
		ProductCount: len(c.products),
	})
	for _, name := range names {
		slug := strings.ReplaceAll(strings.ToLower(name), " ", "-")
		categories = append(categories, Category{
			ID:           slug,
			Name:         name,
			Slug:         slug,
			ProductCount: counts[name],
		})
	}
	return categories
}

// Len reports the number of loaded products.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}
