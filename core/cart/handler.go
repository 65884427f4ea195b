package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

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

// Handlers bundles what every cart endpoint needs: the snapshot store, the
// session that names the visitor's cart, the catalog for price snapshots,
// and the background runner for fire-and-forget writes.
type Handlers struct {
	Log        logrus.FieldLogger
	Store      store.Store
	Session    *scs.SessionManager
	Catalog    *product.Catalog
	Background *background.Background
	Meta       Meta
}

// view is what every cart endpoint responds with: the raw state plus the
// derived breakdowns, recomputed per request.
type view struct {
	Cart      State     `json:"cart"`
	Summary   Summary   `json:"summary"`
	Analytics Analytics `json:"analytics"`
}

func makeView(s State) view {
	return view{Cart: s, Summary: s.Summarize(), Analytics: s.Analyze()}
}

// engine restores the visitor's cart for this request. Storage trouble
// degrades to an empty in-memory cart rather than failing the request.
func (h Handlers) engine(ctx context.Context) *Engine {
	cfg := EngineConfig{
		Log:   h.Log,
		Store: h.Store,
		Key:   session.CartKey(ctx, h.Session),
		Meta:  h.Meta,
	}
	// A nil *Background must stay a nil Runner, so the engine writes
	// synchronously when no runner is configured.
	if h.Background != nil {
		cfg.Runner = h.Background
	}
	eng := NewEngine(cfg)

	if err := eng.Init(ctx); err != nil {
		h.Log.WithField("message", err).Warn("cart store unreachable, serving in-memory cart")
	}
	return eng
}

func (h Handlers) Show() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		eng := h.engine(ctx)
		return web.Respond(ctx, w, makeView(eng.State()), http.StatusOK)
	}
}

func (h Handlers) Clear() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		eng := h.engine(ctx)
		s := eng.Dispatch(ctx, ClearItems{})
		return web.Respond(ctx, w, makeView(s), http.StatusOK)
	}
}

type itemNew struct {
	ProductID int     `json:"productId" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"omitempty,gte=1"`
	Variant   *string `json:"variant"`
}

func (h Handlers) CreateItem() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in itemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding item: %w", err))
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

		if !p.InStock {
			err := errors.New("product is out of stock")
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		qty := in.Quantity
		if qty == 0 {
			qty = 1
		}

		eng := h.engine(ctx)
		s := eng.Dispatch(ctx, AddItem{
			Product: Product{
				ID:          strconv.Itoa(p.ID),
				Name:        p.Name,
				Image:       p.Image,
				Price:       p.Price,
				MaxQuantity: p.MaxQuantity,
			},
			Quantity: qty,
			Variant:  in.Variant,
		})

		return web.Respond(ctx, w, makeView(s), http.StatusOK)
	}
}

type quantityUp struct {
	// Zero and negative quantities are valid: they remove the line item.
	Quantity int     `json:"quantity"`
	Variant  *string `json:"variant"`
}

func (h Handlers) UpdateItem() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in quantityUp
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding quantity update: %w", err))
		}

		eng := h.engine(ctx)
		s := eng.Dispatch(ctx, UpdateQuantity{
			ProductID: web.Param(r, "product_id"),
			Quantity:  in.Quantity,
			Variant:   in.Variant,
		})

		return web.Respond(ctx, w, makeView(s), http.StatusOK)
	}
}

func (h Handlers) DeleteItem() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		eng := h.engine(ctx)
		s := eng.Dispatch(ctx, RemoveItem{
			ProductID: web.Param(r, "product_id"),
			Variant:   variantParam(r),
		})

		return web.Respond(ctx, w, makeView(s), http.StatusOK)
	}
}

type couponNew struct {
	Code     string  `json:"code" validate:"required"`
	Discount float64 `json:"discount" validate:"gte=0"`
	Type     string  `json:"type" validate:"required,oneof=percentage fixed"`
}

func (h Handlers) ApplyCoupon() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in couponNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding coupon: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		eng := h.engine(ctx)
		s := eng.Dispatch(ctx, ApplyCoupon{
			Code:     in.Code,
			Discount: in.Discount,
			Type:     CouponType(in.Type),
		})

		return web.Respond(ctx, w, makeView(s), http.StatusOK)
	}
}

func (h Handlers) DeleteCoupon() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		eng := h.engine(ctx)
		s := eng.Dispatch(ctx, RemoveCoupon{})
		return web.Respond(ctx, w, makeView(s), http.StatusOK)
	}
}

type shippingUp struct {
	Method            *string    `json:"method" validate:"omitempty,oneof=standard express"`
	Cost              *float64   `json:"cost" validate:"omitempty,gte=0"`
	Address           *Address   `json:"address"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
}

func (h Handlers) UpdateShipping() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in shippingUp
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding shipping update: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		eng := h.engine(ctx)
		s := eng.Dispatch(ctx, UpdateShipping{Patch: ShippingPatch{
			Method:            in.Method,
			Cost:              in.Cost,
			Address:           in.Address,
			EstimatedDelivery: in.EstimatedDelivery,
		}})

		return web.Respond(ctx, w, makeView(s), http.StatusOK)
	}
}

func (h Handlers) SaveItem() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		eng := h.engine(ctx)
		s := eng.Dispatch(ctx, SaveForLater{
			ProductID: web.Param(r, "product_id"),
			Variant:   variantParam(r),
		})

		return web.Respond(ctx, w, makeView(s), http.StatusOK)
	}
}

func (h Handlers) MoveItem() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		eng := h.engine(ctx)
		s := eng.Dispatch(ctx, MoveToCart{
			ProductID: web.Param(r, "product_id"),
			Variant:   variantParam(r),
		})

		return web.Respond(ctx, w, makeView(s), http.StatusOK)
	}
}

func (h Handlers) DeleteSaved() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		eng := h.engine(ctx)
		s := eng.Dispatch(ctx, RemoveSavedItem{
			ProductID: web.Param(r, "product_id"),
			Variant:   variantParam(r),
		})

		return web.Respond(ctx, w, makeView(s), http.StatusOK)
	}
}

// variantParam reads the optional variant query parameter. Absence means
// the no-variant key, which is distinct from an empty string.
func variantParam(r *http.Request) *string {
	if !r.URL.Query().Has("variant") {
		return nil
	}
	v := r.URL.Query().Get("variant")
	return &v
}
