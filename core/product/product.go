// Package product serves the catalog built from the scraped marketplace
// dump. Raw records are transformed on load: prices are parsed out of
// display strings, the resale markup is applied, and categories are derived
// from the scrape keyword.
package product

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

// Raw is one scraped record as it appears in the dump file. Source is
// optional; older dumps don't carry it.
type Raw struct {
	Keyword string `json:"keyword"`
	Title   string `json:"title"`
	Price   string `json:"price"`
	Image   string `json:"image"`
	Link    string `json:"link"`
	Source  string `json:"source,omitempty"`
}

type Supplier struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Rating   float64 `json:"rating"`
}

type ShippingInfo struct {
	Time    string  `json:"time"`
	Cost    float64 `json:"cost"`
	Express bool    `json:"express"`
}

type Product struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Price         float64      `json:"price"`
	OriginalPrice float64      `json:"originalPrice"`
	Image         string       `json:"image"`
	Images        []string     `json:"images"`
	Category      string       `json:"category"`
	Brand         string       `json:"brand"`
	Supplier      Supplier     `json:"supplier"`
	Shipping      ShippingInfo `json:"shipping"`
	InStock       bool         `json:"inStock"`
	Quantity      int          `json:"quantity"`
	MaxQuantity   int          `json:"maxQuantity,omitempty"`
	Rating        float64      `json:"rating"`
	ReviewCount   int          `json:"reviewCount"`
}

var priceRe = regexp.MustCompile(`(\d+\.?\d*)`)

// ParsePrice extracts the numeric value from a scraped display price like
// "KSh 1,500". Anything without a digit parses as zero.
func ParsePrice(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	m := priceRe.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// Markup applies the tiered resale margin to a base price.
func Markup(base float64) float64 {
	switch {
	case base <= 1000:
		return base + 250
	case base <= 3000:
		return base + 550
	default:
		return base + 700
	}
}

// Transform turns a raw scraped record into a catalog product. The id is
// positional: record i becomes product i+1, stable for the lifetime of the
// dump file.
func Transform(r Raw, index int) Product {
	base := ParsePrice(r.Price)

	category := strings.TrimSpace(r.Keyword)
	if category == "" {
		if fields := strings.Fields(r.Title); len(fields) > 0 {
			category = fields[0]
		} else {
			category = "Uncategorized"
		}
	}
	category = capitalize(category)

	brand := r.Source
	if brand == "" {
		brand = "Unknown"
	}
	supplier := r.Source
	if supplier == "" {
		supplier = "Third-party Seller"
	}

	desc := r.Title
	if desc == "" {
		desc = "No description available."
	}

	return Product{
		ID:            index + 1,
		Name:          r.Title,
		Description:   desc,
		Price:         Markup(base),
		OriginalPrice: base,
		Image:         r.Image,
		Images:        []string{r.Image},
		Category:      category,
		Brand:         brand,
		Supplier: Supplier{
			Name:     supplier,
			Location: "Kenya",
			Rating:   4.5,
		},
		Shipping: ShippingInfo{
			Time:    "3-7 days",
			Cost:    5.99,
			Express: true,
		},
		InStock:     true,
		Quantity:    50,
		Rating:      4.5,
		ReviewCount: rand.Intn(200) + 10,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
