// Package catalogtest provides an in-memory catalog backend for tests: the form
// login endpoint and a GraphQL endpoint serving the catalog operations.
package catalogtest

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
)

// Endpoint paths.
const (
	TokenPath   = "/users/token"
	GraphQLPath = "/graphql"
)

var (
	errUnknownOperation = errors.New("unknown operation")
	errNoOperation      = errors.New("no operation in document")
)

//nolint:gochecknoglobals
var operationPattern = regexp.MustCompile(`(?s)^\s*(?:query|mutation)?[^{]*\{\s*(\w+)`)

// User is an account the fake backend accepts. An empty Role issues a token
// without a role claim.
type User struct {
	Username string
	Password string
	Role     domain.Role
}

// Fault replaces the next response of an operation.
type Fault struct {
	// Status is the HTTP status to answer with; 0 means 200
	Status int
	// Body is written verbatim instead of the computed response
	Body string
}

// Server is a running fake backend.
type Server struct {
	*httptest.Server

	log   logging.Logger
	m     sync.Mutex
	users map[string]User
	key   []byte
	ttl   time.Duration

	products     map[string]domain.Product
	productOrder []string
	orders       map[string]domain.Order
	orderOrder   []string
	orderSeq     int

	faults map[string]Fault
	calls  map[string]int
}

// NewServer starts a fake backend that is closed when the test ends.
func NewServer(t testing.TB, users ...User) *Server {
	t.Helper()

	s := &Server{
		log:      logging.GetLogger("svc.catalogsvc.catalogtest"),
		users:    make(map[string]User, len(users)),
		key:      newKey(),
		ttl:      time.Hour,
		products: make(map[string]domain.Product),
		orders:   make(map[string]domain.Order),
		faults:   make(map[string]Fault),
		calls:    make(map[string]int),
	}

	for _, u := range users {
		s.users[u.Username] = u
	}

	s.Server = httptest.NewServer(s.Handler())
	t.Cleanup(s.Close)

	return s
}

func newKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}

	return key
}

// TokenURL returns the login endpoint URL.
func (s *Server) TokenURL() string {
	return s.URL + TokenPath
}

// GraphQLURL returns the GraphQL endpoint URL.
func (s *Server) GraphQLURL() string {
	return s.URL + GraphQLPath
}

// Handler returns the routes of the fake backend:
// - POST /users/token: form login returning {"accessToken": ...}
// - POST /graphql: catalog operations, bearer token required.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(TokenPath, s.HandleToken).Methods(http.MethodPost)
	r.HandleFunc(GraphQLPath, s.HandleGraphQL).Methods(http.MethodPost)

	return r
}

// IssueToken signs a token for username carrying role.
func (s *Server) IssueToken(username string, role domain.Role) string {
	s.m.Lock()
	key, ttl := s.key, s.ttl
	s.m.Unlock()

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	if role != domain.RoleNone {
		claims["role"] = role.String()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		panic(err)
	}

	return token
}

// RevokeTokens rotates the signing key so every issued token is rejected with 401.
func (s *Server) RevokeTokens() {
	s.m.Lock()
	defer s.m.Unlock()

	s.key = newKey()
}

// InjectFault makes the next call of op answer with f.
func (s *Server) InjectFault(op string, f Fault) {
	s.m.Lock()
	defer s.m.Unlock()

	s.faults[op] = f
}

// Calls returns how many times op was requested with a valid token.
func (s *Server) Calls(op string) int {
	s.m.Lock()
	defer s.m.Unlock()

	return s.calls[op]
}

// SeedProduct stores p as if it had been created.
func (s *Server) SeedProduct(p domain.Product) {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		s.productOrder = append(s.productOrder, p.ID)
	}

	s.products[p.ID] = p
}

// SeedOrder stores o as if it had been created.
func (s *Server) SeedOrder(o domain.Order) {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		s.orderOrder = append(s.orderOrder, o.ID)
	}

	s.orders[o.ID] = o
}

// Product returns the stored product with id.
func (s *Server) Product(id string) (domain.Product, bool) {
	s.m.Lock()
	defer s.m.Unlock()

	p, ok := s.products[id]

	return p, ok
}

// Order returns the stored order with id.
func (s *Server) Order(id string) (domain.Order, bool) {
	s.m.Lock()
	defer s.m.Unlock()

	o, ok := s.orders[id]

	return o, ok
}

// HandleToken processes form login requests.
// Expects form parameters: username, password.
func (s *Server) HandleToken(w http.ResponseWriter, r *http.Request) {
	_ = s.handleToken(w, r)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) (err error) {
	log := s.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "login refused", "error", err)
		} else {
			log.DebugContext(ctx, "token issued")
		}
	}(r.Context())

	username := r.FormValue("username")
	password := r.FormValue("password")

	if username == "" || password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return domain.ErrInvalidCredentials
	}

	s.m.Lock()
	user, ok := s.users[username]
	s.m.Unlock()

	if !ok || user.Password != password {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

		return domain.ErrInvalidCredentials
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(domain.AuthTokenResponse{AccessToken: s.IssueToken(username, user.Role)}); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

type graphQLRequest struct {
	Query     string                     `json:"query"`
	Variables map[string]json.RawMessage `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// HandleGraphQL processes GraphQL requests.
// Expects the token in the Authorization header with Bearer scheme.
func (s *Server) HandleGraphQL(w http.ResponseWriter, r *http.Request) {
	_ = s.handleGraphQL(w, r)
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) (err error) {
	log := s.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "graphql request refused", "error", err)
		}
	}(r.Context())

	role, err := s.authenticate(r)
	if err != nil {
		writeErrors(w, http.StatusUnauthorized, "Unauthorized")

		return err
	}

	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrors(w, http.StatusBadRequest, "invalid request body")

		return fmt.Errorf("decode request: %w", err)
	}

	m := operationPattern.FindStringSubmatch(req.Query)
	if m == nil {
		writeErrors(w, http.StatusBadRequest, "no operation")

		return errNoOperation
	}

	op := m[1]
	log = log.With("op", op)

	s.m.Lock()
	s.calls[op]++
	fault, faulted := s.faults[op]
	delete(s.faults, op)
	s.m.Unlock()

	if faulted {
		status := fault.Status
		if status == 0 {
			status = http.StatusOK
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(fault.Body))

		return nil
	}

	value, err := s.resolve(op, role, req.Variables)
	if err != nil {
		writeErrors(w, http.StatusOK, err.Error())

		return err
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{op: value}}); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

func (s *Server) authenticate(r *http.Request) (domain.Role, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return domain.RoleNone, domain.ErrNoAuthToken
	}

	tokenString, _ := strings.CutPrefix(header, "Bearer")
	tokenString = strings.TrimSpace(tokenString)

	s.m.Lock()
	key := s.key
	s.m.Unlock()

	claims := jwt.MapClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.RoleNone, errors.Join(domain.ErrInvalidAuthToken, err)
	}

	raw, _ := claims["role"].(string)
	role, _ := domain.ParseRole(raw)

	return role, nil
}

func writeErrors(w http.ResponseWriter, status int, messages ...string) {
	errs := make([]graphQLError, 0, len(messages))
	for _, m := range messages {
		errs = append(errs, graphQLError{Message: m})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"errors": errs})
}
