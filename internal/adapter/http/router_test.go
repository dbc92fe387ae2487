package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/kakeibo/internal/adapter/http/handler"
	apimiddleware "github.com/iho/kakeibo/internal/adapter/http/middleware"
	"github.com/iho/kakeibo/internal/adapter/web"
	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/infrastructure/auth"
	"github.com/iho/kakeibo/internal/infrastructure/metrics"
	"github.com/iho/kakeibo/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_APIRequiresSession(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON error body, got %q", ct)
	}
}

func TestNewRouter_APIAcceptsBearerToken(t *testing.T) {
	tokens := auth.NewJWTManager("router-test-secret", time.Hour)
	accounts := &stubAccountService{}
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.Authenticator = apimiddleware.NewAuthenticator(tokens)
		cfg.AccountHandler = handler.NewAccountHandler(accounts)
	}))

	token, err := tokens.Generate(&domain.User{ID: "owner-1", Name: "hanako"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d: %s", rec.Code, rec.Body.String())
	}
	if accounts.owner != "owner-1" {
		t.Fatalf("expected owner-1 in context, got %q", accounts.owner)
	}
}

func TestNewRouter_PagesRedirectToLogin(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/month/2024/3", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fmonth%2F2024%2F3" {
		t.Fatalf("unexpected redirect %q", loc)
	}
}

func TestNewRouter_LoginRateLimited(t *testing.T) {
	limiter := apimiddleware.NewRateLimiter(0.001, 1, "login", nil)
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.LoginLimiter = limiter
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"name":"a","password":"b"}`))
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code == http.StatusTooManyRequests {
		t.Fatalf("expected first request to pass the limiter")
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.Authenticator = apimiddleware.NewSingleUserAuthenticator("owner-1")
		cfg.IdempotencyStore = store
	}))

	body := `{"name":"財布","kind":"cash"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if store.checkedKey != "owner-1:key-123" {
		t.Fatalf("expected owner scoped key, got %q", store.checkedKey)
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.Metrics = metrics.New(reg)
		cfg.Registry = reg
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `kakeibo_http_requests_total{method="GET",path="/health",status="200"} 1`) {
		t.Fatalf("expected request counter for /health in:\n%s", rec.Body.String())
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/auth/login",
		"GET /api/v1/auth/me",
		"GET /api/v1/transactions/",
		"POST /api/v1/transactions/",
		"PATCH /api/v1/transactions/{id}",
		"DELETE /api/v1/transactions/{id}",
		"POST /api/v1/accounts/import-json",
		"PATCH /api/v1/categories/{id}",
		"DELETE /api/v1/liabilities/{id}",
		"PUT /api/v1/balances/{year}/{month}/",
		"PUT /api/v1/month-lock/{year}/{month}",
		"GET /api/v1/summary/year/{year}",
		"GET /api/v1/summary/month/{year}/{month}",
		"GET /api/v1/csv/export",
		"POST /api/v1/csv/import",
		"GET /login",
		"POST /login",
		"GET /",
		"GET /month/{year}/{month}/",
		"POST /month/{year}/{month}/lock",
		"POST /opening-balances/{year}/{month}",
		"POST /settings/accounts/delete",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(t *testing.T, opts ...func(*RouterConfig)) RouterConfig {
	t.Helper()

	tokens := auth.NewJWTManager("router-test-secret", time.Hour)
	pages, err := web.New(web.Config{Tokens: tokens, AuthEnabled: true, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("web.New: %v", err)
	}

	cfg := RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(nil),
		AccountHandler:     handler.NewAccountHandler(&stubAccountService{}),
		CategoryHandler:    handler.NewCategoryHandler(nil),
		LiabilityHandler:   handler.NewLiabilityHandler(nil),
		BalanceHandler:     handler.NewBalanceHandler(nil),
		LockHandler:        handler.NewLockHandler(nil),
		SummaryHandler:     handler.NewSummaryHandler(nil),
		CSVHandler:         handler.NewCSVHandler(nil),
		AuthHandler:        handler.NewAuthHandler(stubUserService{}, tokens, nil, false),
		HealthHandler:      handler.NewHealthHandler(handler.PingFunc(func(context.Context) error { return nil }), nil),
		Pages:              pages,
		Authenticator:      apimiddleware.NewAuthenticator(tokens),
		Logger:             zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubAccountService struct {
	owner string
}

func (s *stubAccountService) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return &domain.Account{ID: "acc", Name: input.Name, Kind: input.Kind, IsActive: true}, nil
}

func (s *stubAccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return &domain.Account{ID: id}, nil
}

func (s *stubAccountService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	s.owner, _ = domain.OwnerFromContext(ctx)
	return []*domain.Account{}, nil
}

func (s *stubAccountService) UpdateAccount(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	return &domain.Account{ID: id}, nil
}

func (s *stubAccountService) DeleteAccount(ctx context.Context, id string) error {
	return nil
}

func (s *stubAccountService) ImportAccountsJSON(ctx context.Context, items []usecase.CreateAccountInput) (int, error) {
	return len(items), nil
}

type stubUserService struct{}

func (stubUserService) Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error) {
	return nil, domain.ErrInvalidCredentials
}

func (stubUserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

type stubIdempotencyStore struct {
	checkedKey string
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkedKey = key
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
