package cart

import (
	"math"
	"testing"
	"time"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func pricedState(items ...LineItem) State {
	s := NewState("cart-1", DefaultMeta(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	s.Items = items
	return s
}

func line(productID string, price float64, qty int) LineItem {
	return LineItem{ProductID: productID, UnitPrice: price, Quantity: qty, MaxQuantity: DefaultMaxQuantity}
}

func TestSubtotalSumsActiveItemsOnly(t *testing.T) {
	s := pricedState(line("a", 10, 2), line("b", 5, 3))
	s.SavedItems = []LineItem{line("c", 100, 1)}

	approx(t, "subtotal", s.Subtotal(), 35)
	if got := s.TotalItemCount(); got != 5 {
		t.Fatalf("totalItemCount = %d, want 5 (saved items excluded)", got)
	}
}

func TestDiscountPercentage(t *testing.T) {
	s := pricedState(line("a", 50, 2)) // subtotal 100
	s.Coupon = &Coupon{Code: "TEN", Discount: 10, Type: Percentage}

	approx(t, "discount", s.DiscountAmount(), 10)
}

func TestDiscountFixedNeverExceedsSubtotal(t *testing.T) {
	s := pricedState(line("a", 10, 2)) // subtotal 20
	s.Coupon = &Coupon{Code: "BIG", Discount: 50, Type: Fixed}

	approx(t, "discount", s.DiscountAmount(), 20)
	if s.Total() < 0 {
		t.Fatalf("total went negative: %v", s.Total())
	}
}

func TestNoCouponNoDiscount(t *testing.T) {
	s := pricedState(line("a", 10, 1))
	approx(t, "discount", s.DiscountAmount(), 0)
}

// The taxable base is subtotal minus discount plus shipping. Taxing the
// undiscounted subtotal, or leaving shipping out, are the classic ways to
// get this wrong.
func TestTaxOrderingAndTotal(t *testing.T) {
	s := pricedState(line("a", 50, 2)) // subtotal 100
	s.Coupon = &Coupon{Code: "20OFF", Discount: 20, Type: Fixed}
	s.Shipping.Cost = 10
	s.Meta.TaxRate = 0.1
	s.Meta.FreeShippingThreshold = 1000 // keep shipping in play

	approx(t, "subtotal", s.Subtotal(), 100)
	approx(t, "discount", s.DiscountAmount(), 20)
	approx(t, "shipping", s.ShippingCost(), 10)
	approx(t, "tax", s.TaxAmount(), 9) // (100-20+10)*0.1, not 10
	approx(t, "total", s.Total(), 99)
}

func TestFreeShippingBoundaryIsInclusive(t *testing.T) {
	s := pricedState(line("a", 25, 2)) // subtotal 50 == threshold
	if !s.HasFreeShipping() {
		t.Fatal("subtotal equal to threshold should qualify for free shipping")
	}
	approx(t, "shipping", s.ShippingCost(), 0)

	s = pricedState(line("a", 24.99, 2)) // 49.98, just below
	if s.HasFreeShipping() {
		t.Fatal("subtotal below threshold should not qualify")
	}
	approx(t, "shipping", s.ShippingCost(), DefaultShippingCost)
}

func TestShippingCostPrefersConfiguredCost(t *testing.T) {
	s := pricedState(line("a", 10, 1))
	s.Shipping.Cost = 12.5

	approx(t, "shipping", s.ShippingCost(), 12.5)
}

func TestSummarizeMatchesDerivedGetters(t *testing.T) {
	s := pricedState(line("a", 30, 2), line("b", 15, 1))
	s.Coupon = &Coupon{Code: "TEN", Discount: 10, Type: Percentage}

	sum := s.Summarize()
	approx(t, "summary.subtotal", sum.Subtotal, s.Subtotal())
	approx(t, "summary.discount", sum.Discount, s.DiscountAmount())
	approx(t, "summary.shipping", sum.Shipping, s.ShippingCost())
	approx(t, "summary.tax", sum.Tax, s.TaxAmount())
	approx(t, "summary.total", sum.Total, s.Total())
	if sum.Items != 2 || sum.TotalQuantity != 3 {
		t.Fatalf("summary counts = (%d, %d), want (2, 3)", sum.Items, sum.TotalQuantity)
	}
	if sum.FreeShipping != s.HasFreeShipping() {
		t.Fatal("summary free-shipping flag out of sync")
	}
	if sum.Currency != "USD" {
		t.Fatalf("summary currency = %q, want USD", sum.Currency)
	}
}

func TestAnalytics(t *testing.T) {
	s := pricedState(line("a", 30, 2), line("b", 60, 1)) // subtotal 120, count 3

	a := s.Analyze()
	if a.CartValueScore != "high" {
		t.Fatalf("cartValueScore = %q, want high", a.CartValueScore)
	}
	approx(t, "averageItemPrice", a.AverageItemPrice, 40)
	if a.UniqueProducts != 2 || a.ItemCount != 3 {
		t.Fatalf("analytics counts = (%d, %d), want (2, 3)", a.UniqueProducts, a.ItemCount)
	}
	if a.EstimatedShippingDays != 5 {
		t.Fatalf("standard shipping days = %d, want 5", a.EstimatedShippingDays)
	}

	s.Shipping.Method = "express"
	if got := s.Analyze().EstimatedShippingDays; got != 2 {
		t.Fatalf("express shipping days = %d, want 2", got)
	}

	s = pricedState(line("a", 30, 2)) // subtotal 60
	if got := s.Analyze().CartValueScore; got != "medium" {
		t.Fatalf("cartValueScore = %q, want medium", got)
	}

	s = pricedState()
	a = s.Analyze()
	if a.CartValueScore != "low" || a.AverageItemPrice != 0 {
		t.Fatalf("empty cart analytics = %+v", a)
	}
}
