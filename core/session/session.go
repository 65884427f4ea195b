// Package session ties a browser session to the visitor's persisted state.
// The storefront has no accounts: a cookie-backed scs session carries an
// anonymous visitor id, and that id namespaces the cart and wishlist keys
// in the snapshot store.
package session

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/runwayshop/runway/api/web"
	"github.com/runwayshop/runway/validate"
)

const visitorKey = "visitor_id"

// LoadAndSave adapts the scs middleware to the handler chain. It must be the
// outermost middleware so the session cookie is committed before any bytes
// are written.
func LoadAndSave(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error

			hf := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			})

			sm.LoadAndSave(hf).ServeHTTP(w, r.WithContext(ctx))
			return err
		}
		return h
	}
	return m
}

// VisitorID returns the session's visitor id, minting one on first use.
func VisitorID(ctx context.Context, sm *scs.SessionManager) string {
	id := sm.GetString(ctx, visitorKey)
	if id == "" {
		id = validate.GenerateID()
		sm.Put(ctx, visitorKey, id)
	}
	return id
}

// CartKey is the snapshot-store key holding the visitor's cart.
func CartKey(ctx context.Context, sm *scs.SessionManager) string {
	return "cart:" + VisitorID(ctx, sm)
}

// WishlistKey is the snapshot-store key holding the visitor's wishlist.
func WishlistKey(ctx context.Context, sm *scs.SessionManager) string {
	return "wishlist:" + VisitorID(ctx, sm)
}
