package test

import (
	"net/http"
	"testing"
)

type productList struct {
	Products []struct {
		ID       int     `json:"id"`
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Category string  `json:"category"`
	} `json:"products"`
	Pagination struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		Total      int `json:"total"`
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
	TotalCount int `json:"total_count"`
}

func TestProducts(t *testing.T) {
	env := NewTestEnv(t)
	client := env.Client()

	w, err := client.Get(env.URL + "/products")
	if err != nil {
		t.Fatal(err)
	}
	if w.StatusCode != http.StatusOK {
		t.Fatalf("listing products: status %s", w.Status)
	}

	var list productList
	decode(t, w, &list)
	if list.TotalCount != 4 || len(list.Products) != 4 {
		t.Fatalf("expected 4 products, got %d/%d", len(list.Products), list.TotalCount)
	}
	if list.Products[0].Price != 350 {
		t.Fatalf("expected marked-up price 350, got %v", list.Products[0].Price)
	}

	w, err = client.Get(env.URL + "/products?category=shoes")
	if err != nil {
		t.Fatal(err)
	}
	decode(t, w, &list)
	if len(list.Products) != 2 {
		t.Fatalf("category filter: expected 2 products, got %d", len(list.Products))
	}

	w, err = client.Get(env.URL + "/products?search=thinkpad")
	if err != nil {
		t.Fatal(err)
	}
	decode(t, w, &list)
	if len(list.Products) != 1 || list.Products[0].Name != "Thinkpad X1" {
		t.Fatalf("search filter: got %+v", list.Products)
	}

	w, err = client.Get(env.URL + "/products?page=2&per_page=3")
	if err != nil {
		t.Fatal(err)
	}
	decode(t, w, &list)
	if len(list.Products) != 1 || list.Pagination.TotalPages != 2 {
		t.Fatalf("pagination: got %d products, %d pages", len(list.Products), list.Pagination.TotalPages)
	}

	w, err = client.Get(env.URL + "/products?min_price=notanumber")
	if err != nil {
		t.Fatal(err)
	}
	w.Body.Close()
	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad min_price: status %s, want 400", w.Status)
	}
}

func TestProductShow(t *testing.T) {
	env := NewTestEnv(t)
	client := env.Client()

	w, err := client.Get(env.URL + "/products/3")
	if err != nil {
		t.Fatal(err)
	}
	if w.StatusCode != http.StatusOK {
		t.Fatalf("fetching product: status %s", w.Status)
	}

	var p struct {
		ID            int     `json:"id"`
		Name          string  `json:"name"`
		Price         float64 `json:"price"`
		OriginalPrice float64 `json:"originalPrice"`
	}
	decode(t, w, &p)
	if p.Name != "Galaxy A14" || p.Price != 3050 || p.OriginalPrice != 2500 {
		t.Fatalf("product 3 = %+v", p)
	}

	w, err = client.Get(env.URL + "/products/99")
	if err != nil {
		t.Fatal(err)
	}
	w.Body.Close()
	if w.StatusCode != http.StatusNotFound {
		t.Fatalf("missing product: status %s, want 404", w.Status)
	}
}

func TestCategories(t *testing.T) {
	env := NewTestEnv(t)

	w, err := env.Client().Get(env.URL + "/categories")
	if err != nil {
		t.Fatal(err)
	}
	if w.StatusCode != http.StatusOK {
		t.Fatalf("listing categories: status %s", w.Status)
	}

	var categories []struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		ProductCount int    `json:"productCount"`
	}
	decode(t, w, &categories)

	if len(categories) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(categories))
	}
	if categories[0].ID != "all" || categories[0].ProductCount != 4 {
		t.Fatalf("first category = %+v, want the All Products entry", categories[0])
	}
}

func TestHealth(t *testing.T) {
	env := NewTestEnv(t)

	w, err := env.Client().Get(env.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if w.StatusCode != http.StatusOK {
		t.Fatalf("health check: status %s", w.Status)
	}

	var h struct {
		Status   string `json:"status"`
		Products int    `json:"products"`
	}
	decode(t, w, &h)
	if h.Status != "OK" || h.Products != 4 {
		t.Fatalf("health = %+v", h)
	}
}
