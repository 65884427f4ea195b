package wishlist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/runwayshop/runway/api/background"
	"github.com/runwayshop/runway/api/web"
	"github.com/runwayshop/runway/api/weberr"
	"github.com/runwayshop/runway/core/product"
	"github.com/runwayshop/runway/core/session"
	"github.com/runwayshop/runway/store"
	"github.com/runwayshop/runway/validate"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Log        logrus.FieldLogger
	Store      store.Store
	Session    *scs.SessionManager
	Catalog    *product.Catalog
	Background *background.Background
}

type view struct {
	Items []product.Product `json:"items"`
	Count int               `json:"count"`
}

func (h Handlers) load(ctx context.Context) List {
	key := session.WishlistKey(ctx, h.Session)

	raw, ok, err := h.Store.Load(ctx, key)
	if err != nil {
		h.Log.WithField("message", err).Warn("wishlist store unreachable, serving empty wishlist")
		return New()
	}
	if !ok {
		return New()
	}

	l, err := Restore(raw)
	if err != nil {
		h.Log.WithFields(logrus.Fields{
			"key":     key,
			"message": err,
		}).Info("discarding wishlist snapshot")
		return New()
	}
	return l
}

func (h Handlers) save(ctx context.Context, l List) {
	key := session.WishlistKey(ctx, h.Session)

	raw, err := Snapshot(l)
	if err != nil {
		h.Log.WithField("message", err).Warn("wishlist snapshot not persisted")
		return
	}

	task := func(ctx context.Context) {
		if err := h.Store.Save(ctx, key, raw); err != nil {
			h.Log.WithFields(logrus.Fields{
				"key":     key,
				"message": err,
			}).Warn("wishlist snapshot not persisted")
		}
	}

	if h.Background == nil {
		task(ctx)
		return
	}
	h.Background.Add(task)
}

func (h Handlers) Show() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		l := h.load(ctx)
		return web.Respond(ctx, w, view{Items: l.Items, Count: l.Count()}, http.StatusOK)
	}
}

type itemNew struct {
	ProductID int  `json:"productId" validate:"required,gt=0"`
	Toggle    bool `json:"toggle"`
}

// CreateItem adds a product to the wishlist; with toggle set it flips
// membership instead and reports the outcome.
func (h Handlers) CreateItem() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in itemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding wishlist item: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		p, err := h.Catalog.Fetch(in.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return weberr.NotFound(fmt.Errorf("product[%d]: %w", in.ProductID, err))
			}
			return fmt.Errorf("fetching product[%d]: %w", in.ProductID, err)
		}

		l := h.load(ctx)

		var changed bool
		var listed bool
		if in.Toggle {
			l, listed = l.Toggle(p)
			changed = true
		} else {
			l, changed = l.Add(p)
			listed = true
		}

		if changed {
			h.save(ctx, l)
		}

		resp := struct {
			view
			Listed bool `json:"listed"`
		}{
			view:   view{Items: l.Items, Count: l.Count()},
			Listed: listed,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func (h Handlers) DeleteItem() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		raw := web.Param(r, "product_id")
		id, err := strconv.Atoi(raw)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("parsing product id %q: %w", raw, err))
		}

		l := h.load(ctx)
		l, changed := l.Remove(id)
		if changed {
			h.save(ctx, l)
		}

		return web.Respond(ctx, w, view{Items: l.Items, Count: l.Count()}, http.StatusOK)
	}
}

func (h Handlers) Clear() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		l := New()
		h.save(ctx, l)
		return web.Respond(ctx, w, view{Items: l.Items, Count: l.Count()}, http.StatusOK)
	}
}
