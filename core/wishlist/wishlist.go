// Package wishlist keeps the visitor's saved products. Unlike the cart it
// has no pricing: it is a deduplicated list of product snapshots, newest
// first, persisted the same write-through way.
package wishlist

import (
	"encoding/json"
	"fmt"

	"github.com/runwayshop/runway/core/product"
)

type List struct {
	Items []product.Product `json:"items"`
}

func New() List {
	return List{Items: []product.Product{}}
}

// Restore decodes a persisted wishlist. A corrupt snapshot resets to empty
// at the caller; wishlists don't expire.
func Restore(raw []byte) (List, error) {
	var l List
	if err := json.Unmarshal(raw, &l); err != nil {
		return List{}, fmt.Errorf("decoding wishlist snapshot: %w", err)
	}
	if l.Items == nil {
		l.Items = []product.Product{}
	}
	return l, nil
}

func Snapshot(l List) ([]byte, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encoding wishlist snapshot: %w", err)
	}
	return b, nil
}

func (l List) Contains(id int) bool {
	for _, p := range l.Items {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (l List) Count() int {
	return len(l.Items)
}

// Add prepends the product unless it is already listed. The boolean reports
// whether the list changed.
func (l List) Add(p product.Product) (List, bool) {
	if l.Contains(p.ID) {
		return l, false
	}

	items := make([]product.Product, 0, len(l.Items)+1)
	items = append(items, p)
	items = append(items, l.Items...)
	return List{Items: items}, true
}

// Remove drops the product by id; removing an absent id is a no-op.
func (l List) Remove(id int) (List, bool) {
	items := make([]product.Product, 0, len(l.Items))
	removed := false
	for _, p := range l.Items {
		if p.ID == id {
			removed = true
			continue
		}
		items = append(items, p)
	}
	if !removed {
		return l, false
	}
	return List{Items: items}, true
}

// Toggle flips membership and reports the resulting state: true when the
// product ended up on the list.
func (l List) Toggle(p product.Product) (List, bool) {
	if l.Contains(p.ID) {
		out, _ := l.Remove(p.ID)
		return out, false
	}
	out, _ := l.Add(p)
	return out, true
}
