package cart

// Derived pricing. Everything here is a pure function of State, recomputed
// per call; nothing is cached on the state itself.

// Subtotal sums unitPrice*quantity over the active items. Saved items never
// count toward totals.
func (s State) Subtotal() float64 {
	var sum float64
	for _, it := range s.Items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return sum
}

// DiscountAmount is what the coupon takes off the subtotal. A fixed coupon
// is capped at the subtotal so the discount can never push the total
// negative.
func (s State) DiscountAmount() float64 {
	if s.Coupon == nil {
		return 0
	}

	subtotal := s.Subtotal()
	switch s.Coupon.Type {
	case Percentage:
		return subtotal * s.Coupon.Discount / 100
	default:
		if s.Coupon.Discount < subtotal {
			return s.Coupon.Discount
		}
		return subtotal
	}
}

// ShippingCost is zero at or above the free-shipping threshold (the boundary
// is inclusive). Below it, the chosen method's cost applies, falling back to
// DefaultShippingCost when no method has been priced.
func (s State) ShippingCost() float64 {
	if s.HasFreeShipping() {
		return 0
	}
	if s.Shipping.Cost != 0 {
		return s.Shipping.Cost
	}
	return DefaultShippingCost
}

// TaxAmount taxes the discounted subtotal plus shipping. The base is
// deliberately post-discount and shipping-inclusive; reordering this
// computation changes checkout totals.
func (s State) TaxAmount() float64 {
	return (s.Subtotal() - s.DiscountAmount() + s.ShippingCost()) * s.Meta.TaxRate
}

func (s State) Total() float64 {
	return s.Subtotal() - s.DiscountAmount() + s.ShippingCost() + s.TaxAmount()
}

// TotalItemCount sums quantities over active items only.
func (s State) TotalItemCount() int {
	var n int
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

func (s State) HasFreeShipping() bool {
	return s.Subtotal() >= s.Meta.FreeShippingThreshold
}

func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// Contains reports whether the (productID, variant) key is in the active
// cart.
func (s State) Contains(productID string, variant *string) bool {
	return findItem(s.Items, productID, variant) >= 0
}

// Quantity returns the active quantity for the key, zero when absent.
func (s State) Quantity(productID string, variant *string) int {
	if i := findItem(s.Items, productID, variant); i >= 0 {
		return s.Items[i].Quantity
	}
	return 0
}

// Summary is the checkout-ready breakdown the UI renders.
type Summary struct {
	Items         int     `json:"items"`
	TotalQuantity int     `json:"totalQuantity"`
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	Shipping      float64 `json:"shipping"`
	Tax           float64 `json:"tax"`
	Total         float64 `json:"total"`
	FreeShipping  bool    `json:"freeShipping"`
	Currency      string  `json:"currency"`
}

func (s State) Summarize() Summary {
	return Summary{
		Items:         len(s.Items),
		TotalQuantity: s.TotalItemCount(),
		Subtotal:      s.Subtotal(),
		Discount:      s.DiscountAmount(),
		Shipping:      s.ShippingCost(),
		Tax:           s.TaxAmount(),
		Total:         s.Total(),
		FreeShipping:  s.HasFreeShipping(),
		Currency:      s.Meta.Currency,
	}
}

// Analytics mirrors the merchandising signals the storefront tracks about a
// cart's value and delivery expectations.
type Analytics struct {
	Subtotal              float64 `json:"subtotal"`
	ItemCount             int     `json:"itemCount"`
	UniqueProducts        int     `json:"uniqueProducts"`
	AverageItemPrice      float64 `json:"averageItemPrice"`
	CartValueScore        string  `json:"cartValueScore"`
	EstimatedShippingDays int     `json:"estimatedShippingDays"`
}

func (s State) Analyze() Analytics {
	subtotal := s.Subtotal()
	count := s.TotalItemCount()

	a := Analytics{
		Subtotal:              subtotal,
		ItemCount:             count,
		UniqueProducts:        len(s.Items),
		CartValueScore:        "low",
		EstimatedShippingDays: 5,
	}
	if count > 0 {
		a.AverageItemPrice = subtotal / float64(count)
	}
	if subtotal > 100 {
		a.CartValueScore = "high"
	} else if subtotal > 50 {
		a.CartValueScore = "medium"
	}
	if s.Shipping.Method == "express" {
		a.EstimatedShippingDays = 2
	}
	return a
}
