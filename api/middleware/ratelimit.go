package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/runwayshop/runway/api/web"
	"github.com/runwayshop/runway/api/weberr"
	"github.com/runwayshop/runway/rate"
)

// RateLimit rejects clients that exceed their per-address budget. A nil
// limiter disables limiting, which the tests use.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			if lim == nil {
				return handler(ctx, w, r)
			}

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !lim.Allow(host) {
				err := errors.New("rate limit exceeded")
				return weberr.NewError(err, "too many requests", http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
