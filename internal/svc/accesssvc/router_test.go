package accesssvc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/repo/session"
	"github.com/mkrupp/homecase-console/internal/svc/accesssvc"
	"github.com/mkrupp/homecase-console/internal/svc/authsvc"
)

func TestRouter_Navigate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := authsvc.NewSessionStore(session.NewMemorySessionRepository())
	router := accesssvc.NewDefaultRouter(store)

	tests := []struct {
		name         string
		session      domain.Session
		path         string
		wantRoute    string
		wantDecision accesssvc.Decision
	}{
		{name: "login is public", path: "/login", wantRoute: accesssvc.RouteLogin, wantDecision: accesssvc.Allow},
		{name: "logged out products", path: "/products", wantRoute: accesssvc.RouteLogin, wantDecision: accesssvc.RedirectToLogin},
		{name: "admin products", session: domain.NewSession("t", domain.RoleAdmin), path: "/products", wantRoute: accesssvc.RouteProducts, wantDecision: accesssvc.Allow},
		{name: "user orders", session: domain.NewSession("t", domain.RoleUser), path: "/orders/", wantRoute: accesssvc.RouteOrders, wantDecision: accesssvc.Allow},
		{name: "unknown path falls back", session: domain.NewSession("t", domain.RoleUser), path: "/nowhere", wantRoute: accesssvc.RouteProducts, wantDecision: accesssvc.Allow},
		{name: "root falls back", session: domain.NewSession("t", domain.RoleAdmin), path: "", wantRoute: accesssvc.RouteProducts, wantDecision: accesssvc.Allow},
		{name: "role-less token", session: domain.NewSession("t", domain.RoleNone), path: "/orders", wantRoute: accesssvc.RouteLogin, wantDecision: accesssvc.RedirectToLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, _ := tt.session.Token()
			role, _ := tt.session.Role()
			require.NoError(t, store.Set(ctx, tok, role))

			nav, err := router.Navigate(ctx, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoute, nav.Route.Path)
			assert.Equal(t, tt.wantDecision, nav.Decision)
		})
	}
}

func TestRouter_EvaluatesEveryNavigation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := authsvc.NewSessionStore(session.NewMemorySessionRepository())
	router := accesssvc.NewDefaultRouter(store)

	require.NoError(t, store.Set(ctx, "t", domain.RoleAdmin))

	nav, err := router.Navigate(ctx, accesssvc.RouteProducts)
	require.NoError(t, err)
	assert.Equal(t, accesssvc.Allow, nav.Decision)

	require.NoError(t, store.Clear(ctx))

	nav, err = router.Navigate(ctx, accesssvc.RouteProducts)
	require.NoError(t, err)
	assert.Equal(t, accesssvc.RedirectToLogin, nav.Decision)
}

func TestRouter_AdminOnlyRoute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := authsvc.NewSessionStore(session.NewMemorySessionRepository())

	router, err := accesssvc.NewRouter(store, accesssvc.RouteProducts,
		append(accesssvc.DefaultRoutes(), accesssvc.Route{Path: "/admin", Allowed: domain.NewRoleSet(domain.RoleAdmin)})...,
	)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "t", domain.RoleUser))

	nav, err := router.Navigate(ctx, "/admin")
	require.NoError(t, err)
	assert.Equal(t, accesssvc.RedirectToLogin, nav.Decision)
	assert.Equal(t, "/admin", nav.Requested)

	paths := make([]string, 0)
	for _, r := range router.Available(domain.NewSession("t", domain.RoleUser)) {
		paths = append(paths, r.Path)
	}

	assert.Equal(t, []string{accesssvc.RouteProducts, accesssvc.RouteOrders}, paths)
}

func TestRouter_RoutesKeepRegistrationOrder(t *testing.T) {
	t.Parallel()

	router := accesssvc.NewDefaultRouter(authsvc.NewSessionStore(session.NewMemorySessionRepository()))

	paths := make([]string, 0)
	for _, r := range router.Routes() {
		paths = append(paths, r.Path)
	}

	assert.Equal(t, []string{accesssvc.RouteLogin, accesssvc.RouteProducts, accesssvc.RouteOrders}, paths)

	routes := router.Routes()
	routes[0].Path = "/changed"
	assert.Equal(t, accesssvc.RouteLogin, router.Routes()[0].Path)
}

func TestNewRouter_InvalidTable(t *testing.T) {
	t.Parallel()

	store := authsvc.NewSessionStore(session.NewMemorySessionRepository())

	_, err := accesssvc.NewRouter(store, "/products", accesssvc.Route{Path: "/products"})
	require.ErrorIs(t, err, accesssvc.ErrInvalidRouteTable)

	_, err = accesssvc.NewRouter(store, "/missing", accesssvc.DefaultRoutes()...)
	require.ErrorIs(t, err, accesssvc.ErrInvalidRouteTable)
}
