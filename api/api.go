package api

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/runwayshop/runway/api/background"
	"github.com/runwayshop/runway/api/middleware"
	"github.com/runwayshop/runway/api/web"
	"github.com/runwayshop/runway/core/cart"
	"github.com/runwayshop/runway/core/product"
	"github.com/runwayshop/runway/core/session"
	"github.com/runwayshop/runway/core/wishlist"
	"github.com/runwayshop/runway/rate"
	"github.com/runwayshop/runway/store"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	Catalog    *product.Catalog
	Store      store.Store
	Session    *scs.SessionManager
	Background *background.Background
	CartMeta   cart.Meta
	Limiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, session.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())
	a.mw = append(a.mw, middleware.RateLimit(cfg.Limiter))

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.Catalog))
	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.Catalog))
	a.Handle(http.MethodGet, "/categories", product.HandleCategories(cfg.Catalog))
	a.Handle(http.MethodGet, "/health", handleHealth(cfg.Catalog))

	ch := cart.Handlers{
		Log:        cfg.Log,
		Store:      cfg.Store,
		Session:    cfg.Session,
		Catalog:    cfg.Catalog,
		Background: cfg.Background,
		Meta:       cfg.CartMeta,
	}

	a.Handle(http.MethodGet, "/cart", ch.Show())
	a.Handle(http.MethodDelete, "/cart", ch.Clear())
	a.Handle(http.MethodPut, "/cart/items", ch.CreateItem())
	a.Handle(http.MethodPut, "/cart/items/{product_id}", ch.UpdateItem())
	a.Handle(http.MethodDelete, "/cart/items/{product_id}", ch.DeleteItem())
	a.Handle(http.MethodPost, "/cart/items/{product_id}/save", ch.SaveItem())
	a.Handle(http.MethodPost, "/cart/saved/{product_id}/move", ch.MoveItem())
	a.Handle(http.MethodDelete, "/cart/saved/{product_id}", ch.DeleteSaved())
	a.Handle(http.MethodPut, "/cart/coupon", ch.ApplyCoupon())
	a.Handle(http.MethodDelete, "/cart/coupon", ch.DeleteCoupon())
	a.Handle(http.MethodPut, "/cart/shipping", ch.UpdateShipping())

	wh := wishlist.Handlers{
		Log:        cfg.Log,
		Store:      cfg.Store,
		Session:    cfg.Session,
		Catalog:    cfg.Catalog,
		Background: cfg.Background,
	}

	a.Handle(http.MethodGet, "/wishlist", wh.Show())
	a.Handle(http.MethodPut, "/wishlist/items", wh.CreateItem())
	a.Handle(http.MethodDelete, "/wishlist/items/{product_id}", wh.DeleteItem())
	a.Handle(http.MethodDelete, "/wishlist", wh.Clear())

	return a.Router
}

func handleHealth(cat *product.Catalog) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		resp := struct {
			Status     string    `json:"status"`
			Service    string    `json:"service"`
			Timestamp  time.Time `json:"timestamp"`
			DataSource string    `json:"dataSource"`
			Products   int       `json:"products"`
		}{
			Status:     "OK",
			Service:    "Runway Storefront API",
			Timestamp:  time.Now().UTC(),
			DataSource: "Scraped catalog file",
			Products:   cat.Len(),
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
