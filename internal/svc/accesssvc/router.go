package accesssvc

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
	"github.com/mkrupp/homecase-console/internal/svc/authsvc"
)

// ErrInvalidRouteTable is returned when a router lacks its login or fallback route.
var ErrInvalidRouteTable = errors.New("invalid route table")

// Route paths.
const (
	RouteLogin    = "/login"
	RouteProducts = "/products"
	RouteOrders   = "/orders"
)

// Route is a navigable destination. A public route skips the access gate.
type Route struct {
	Path    string
	Public  bool
	Allowed domain.RoleSet
}

// DefaultRoutes returns the console routes: a public login route and the
// product and order routes open to ADMIN and USER.
func DefaultRoutes() []Route {
	staff := domain.NewRoleSet(domain.RoleAdmin, domain.RoleUser)

	return []Route{
		{Path: RouteLogin, Public: true},
		{Path: RouteProducts, Allowed: staff},
		{Path: RouteOrders, Allowed: staff},
	}
}

// Navigation is the result of resolving and authorizing a requested path.
type Navigation struct {
	// Requested is the normalized path that was asked for.
	Requested string
	// Route is where the user ends up: the requested route on Allow, the
	// login route on RedirectToLogin.
	Route    Route
	Decision Decision
	Session  domain.Session
}

// Router resolves paths to routes and runs the access gate on every call.
// Nothing is cached between navigations.
type Router struct {
	routes   map[string]Route
	order    []string
	fallback string
	sessions authsvc.SessionReader
	log      logging.Logger
}

// NewRouter creates a Router over routes. Unknown paths resolve to fallback,
// which must be one of the routes.
func NewRouter(sessions authsvc.SessionReader, fallback string, routes ...Route) (*Router, error) {
	r := &Router{
		routes:   make(map[string]Route, len(routes)),
		fallback: fallback,
		sessions: sessions,
		log:      logging.GetLogger("svc.accesssvc.router"),
	}

	for _, route := range routes {
		p := normalizePath(route.Path)
		route.Path = p
		r.routes[p] = route
		r.order = append(r.order, p)
	}

	if _, ok := r.routes[RouteLogin]; !ok {
		return nil, fmt.Errorf("%w: no %s route", ErrInvalidRouteTable, RouteLogin)
	}

	if _, ok := r.routes[normalizePath(fallback)]; !ok {
		return nil, fmt.Errorf("%w: fallback %q not registered", ErrInvalidRouteTable, fallback)
	}

	r.fallback = normalizePath(fallback)

	return r, nil
}

// NewDefaultRouter creates a Router over DefaultRoutes with /products as the catch-all.
func NewDefaultRouter(sessions authsvc.SessionReader) *Router {
	r, err := NewRouter(sessions, RouteProducts, DefaultRoutes()...)
	if err != nil {
		panic(err)
	}

	return r
}

// Resolve maps a path to its route; unknown paths map to the fallback route.
func (r *Router) Resolve(p string) Route {
	if route, ok := r.routes[normalizePath(p)]; ok {
		return route
	}

	return r.routes[r.fallback]
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []Route {
	routes := make([]Route, 0, len(r.order))
	for _, p := range r.order {
		routes = append(routes, r.routes[p])
	}

	return routes
}

// Navigate resolves p and authorizes it against the session as stored right now.
func (r *Router) Navigate(ctx context.Context, p string) (Navigation, error) {
	requested := normalizePath(p)
	route := r.Resolve(requested)

	sess, err := r.sessions.Session(ctx)
	if err != nil {
		return Navigation{}, fmt.Errorf("read session: %w", err)
	}

	nav := Navigation{Requested: requested, Route: route, Decision: Allow, Session: sess}

	if !route.Public {
		nav.Decision = Authorize(sess, route.Allowed)
	}

	if nav.Decision == RedirectToLogin {
		nav.Route = r.routes[RouteLogin]
	}

	r.log.DebugContext(ctx, "navigate",
		"requested", requested,
		"route", nav.Route.Path,
		"decision", nav.Decision.String(),
	)

	return nav, nil
}

// Available returns the protected routes the session may currently reach.
func (r *Router) Available(sess domain.Session) []Route {
	var routes []Route

	for _, route := range r.Routes() {
		if !route.Public && Authorize(sess, route.Allowed) == Allow {
			routes = append(routes, route)
		}
	}

	return routes
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return strings.ToLower(path.Clean(p))
}
