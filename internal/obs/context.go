package obs

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Storefront surfaces used as a low-cardinality label on HTTP telemetry.
const (
	SurfaceCatalog  = "catalog"
	SurfaceStore    = "store"
	SurfaceSession  = "session"
	SurfaceCart     = "cart"
	SurfaceCheckout = "checkout"
	SurfaceHealth   = "health"
	SurfaceOps      = "ops"
	SurfaceOther    = "other"
)

const unmatchedRoute = "unmatched"

// Route is the matched router pattern and the storefront surface it belongs to.
type Route struct {
	Pattern string
	Surface string
}

type routeKey struct{}

// WithRoute stores the matched pattern on the context.
func WithRoute(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routeKey{}, Route{Pattern: pattern, Surface: SurfaceFor(pattern)})
}

// RouteFromContext returns the route stored by WithRoute.
func RouteFromContext(ctx context.Context) (Route, bool) {
	if ctx == nil {
		return Route{}, false
	}
	route, ok := ctx.Value(routeKey{}).(Route)
	return route, ok && route.Pattern != ""
}

// SurfaceFor classifies a chi route pattern.
func SurfaceFor(pattern string) string {
	switch {
	case pattern == "" || pattern == unmatchedRoute:
		return SurfaceOther
	case strings.HasPrefix(pattern, "/health"):
		return SurfaceHealth
	case pattern == "/metrics" || strings.HasPrefix(pattern, "/debug"):
		return SurfaceOps
	case strings.Contains(pattern, "/checkout"):
		return SurfaceCheckout
	case strings.Contains(pattern, "/cart"), strings.HasSuffix(pattern, "/delivery"):
		return SurfaceCart
	case strings.HasSuffix(pattern, "/sessions"):
		return SurfaceSession
	case strings.HasSuffix(pattern, "/catalog"):
		return SurfaceCatalog
	case strings.HasSuffix(pattern, "/store"):
		return SurfaceStore
	}
	return SurfaceOther
}

// routeFor resolves the request's route once handlers ran. Session ids never reach
// labels because only the templated pattern is used.
func routeFor(r *http.Request) Route {
	if route, ok := RouteFromContext(r.Context()); ok {
		return route
	}
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return Route{Pattern: pattern, Surface: SurfaceFor(pattern)}
		}
	}
	return Route{Pattern: unmatchedRoute, Surface: SurfaceOther}
}

// sessionParam returns the {session} URL parameter, if the route has one.
func sessionParam(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.URLParam("session")
	}
	return ""
}
