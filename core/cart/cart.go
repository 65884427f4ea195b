// Package cart owns the shopping cart: line items, coupon, shipping and the
// derived checkout totals. State transitions go through a pure reducer
// (Apply); the Engine wraps it with snapshot persistence.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SchemaVersion tags persisted snapshots. Snapshots carrying an unknown
// version are discarded on restore, the same way corrupt ones are.
const SchemaVersion = 1

// MaxAge is how long a persisted cart stays restorable, measured from its
// lastUpdated stamp.
const MaxAge = 30 * 24 * time.Hour

// DefaultMaxQuantity caps a line item's quantity when the product doesn't
// declare its own limit.
const DefaultMaxQuantity = 10

// DefaultShippingCost applies when no shipping method has been picked and
// the order doesn't qualify for free shipping.
const DefaultShippingCost = 5.99

type CouponType string

const (
	Percentage CouponType = "percentage"
	Fixed      CouponType = "fixed"
)

// Product is the slice of a catalog record the cart consumes. The price is
// snapshotted into the line item at add time and never re-fetched.
type Product struct {
	ID          string
	Name        string
	Image       string
	Price       float64
	MaxQuantity int // 0 means DefaultMaxQuantity
}

// LineItem is one (product, variant) entry. At most one line item exists per
// distinct pair; adding the same pair again bumps the quantity instead.
type LineItem struct {
	ProductID       string     `json:"productId"`
	SelectedVariant *string    `json:"selectedVariant"`
	CartItemID      string     `json:"cartItemId"`
	Name            string     `json:"name"`
	Image           string     `json:"image"`
	UnitPrice       float64    `json:"unitPrice"`
	Quantity        int        `json:"quantity"`
	MaxQuantity     int        `json:"maxQuantity"`
	AddedAt         time.Time  `json:"addedAt"`
	LastUpdated     time.Time  `json:"lastUpdated"`
	SavedAt         *time.Time `json:"savedAt,omitempty"`
}

type Coupon struct {
	Code      string     `json:"code"`
	Discount  float64    `json:"discount"`
	Type      CouponType `json:"type"`
	AppliedAt time.Time  `json:"appliedAt"`
}

type Address struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Shipping struct {
	Method            string     `json:"method"`
	Cost              float64    `json:"cost"`
	Address           *Address   `json:"address"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Meta is per-cart pricing configuration.
type Meta struct {
	Currency              string  `json:"currency"`
	TaxRate               float64 `json:"taxRate"`
	FreeShippingThreshold float64 `json:"freeShippingThreshold"`
}

func DefaultMeta() Meta {
	return Meta{
		Currency:              "USD",
		TaxRate:               0.1,
		FreeShippingThreshold: 50,
	}
}

// State is the aggregate the reducer transitions. Items and SavedItems are
// mutually exclusive per (productId, selectedVariant) key and both preserve
// insertion order.
type State struct {
	SchemaVersion int        `json:"schemaVersion"`
	CartID        string     `json:"cartId"`
	Items         []LineItem `json:"items"`
	SavedItems    []LineItem `json:"savedItems"`
	Coupon        *Coupon    `json:"coupon"`
	Shipping      Shipping   `json:"shipping"`
	Meta          Meta       `json:"meta"`
	LastUpdated   time.Time  `json:"lastUpdated"`
}

// NewState builds a fresh empty cart with its own id.
func NewState(id string, meta Meta, now time.Time) State {
	if meta == (Meta{}) {
		meta = DefaultMeta()
	}
	return State{
		SchemaVersion: SchemaVersion,
		CartID:        id,
		Items:         []LineItem{},
		SavedItems:    []LineItem{},
		Shipping:      Shipping{Method: "standard"},
		Meta:          meta,
		LastUpdated:   now,
	}
}

// Restore decodes a persisted snapshot. It fails on malformed JSON, an
// unexpected schema version, or a snapshot older than MaxAge; callers fall
// back to a fresh state in all three cases.
func Restore(raw []byte, now time.Time) (State, error) {
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, fmt.Errorf("decoding snapshot: %w", err)
	}

	if s.SchemaVersion != SchemaVersion {
		return State{}, fmt.Errorf("snapshot schema version %d not supported", s.SchemaVersion)
	}

	if s.CartID == "" {
		return State{}, errors.New("snapshot has no cart id")
	}

	if now.Sub(s.LastUpdated) >= MaxAge {
		return State{}, fmt.Errorf("snapshot expired: last updated %s", s.LastUpdated.Format(time.RFC3339))
	}

	if s.Items == nil {
		s.Items = []LineItem{}
	}
	if s.SavedItems == nil {
		s.SavedItems = []LineItem{}
	}

	return s, nil
}

// Snapshot encodes the state for the persistence store.
func Snapshot(s State) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return b, nil
}

// sameKey reports whether the line item is the (productID, variant) entry.
// A nil variant only matches a nil variant: "no variant" is a distinct key,
// not a wildcard.
func sameKey(it LineItem, productID string, variant *string) bool {
	if it.ProductID != productID {
		return false
	}
	if it.SelectedVariant == nil || variant == nil {
		return it.SelectedVariant == nil && variant == nil
	}
	return *it.SelectedVariant == *variant
}

func findItem(items []LineItem, productID string, variant *string) int {
	for i, it := range items {
		if sameKey(it, productID, variant) {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	cp := make([]LineItem, len(items))
	copy(cp, items)
	return cp
}

func itemCap(max int) int {
	if max <= 0 {
		return DefaultMaxQuantity
	}
	return max
}

func clampQty(q, max int) int {
	if c := itemCap(max); q > c {
		return c
	}
	return q
}
