package product

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/runwayshop/runway/api/web"
	"github.com/runwayshop/runway/api/weberr"
)

type listResponse struct {
	Products   []Product `json:"products"`
	Pagination Page      `json:"pagination"`
	TotalCount int       `json:"total_count"`
}

// HandleList serves the browse/search listing with category, search and
// price filters plus pagination.
func HandleList(cat *Catalog) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		q := r.URL.Query()

		f := Filter{
			Category: q.Get("category"),
			Search:   q.Get("search"),
		}

		if v := q.Get("min_price"); v != "" {
			min, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return weberr.BadRequest(fmt.Errorf("parsing min_price %q: %w", v, err))
			}
			f.MinPrice = &min
		}

		if v := q.Get("max_price"); v != "" {
			max, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return weberr.BadRequest(fmt.Errorf("parsing max_price %q: %w", v, err))
			}
			f.MaxPrice = &max
		}

		if v := q.Get("page"); v != "" {
			page, err := strconv.Atoi(v)
			if err != nil {
				return weberr.BadRequest(fmt.Errorf("parsing page %q: %w", v, err))
			}
			f.Page = page
		}

		if v := q.Get("per_page"); v != "" {
			perPage, err := strconv.Atoi(v)
			if err != nil {
				return weberr.BadRequest(fmt.Errorf("parsing per_page %q: %w", v, err))
			}
			f.PerPage = perPage
		}

		products, page := cat.List(f)

		resp := listResponse{
			Products:   products,
			Pagination: page,
			TotalCount: page.Total,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

// HandleShow serves a single product by id.
func HandleShow(cat *Catalog) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		raw := web.Param(r, "id")
		id, err := strconv.Atoi(raw)
		if err != nil {
			return weberr.NotFound(fmt.Errorf("parsing product id %q: %w", raw, err))
		}

		p, err := cat.Fetch(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(fmt.Errorf("product[%d]: %w", id, err))
			}
			return fmt.Errorf("fetching product[%d]: %w", id, err)
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

// HandleCategories serves the derived category list.
func HandleCategories(cat *Catalog) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, cat.Categories(), http.StatusOK)
	}
}
