package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dooonda/ledger/internal/adapter/http/dto"
	"github.com/dooonda/ledger/internal/adapter/http/handler"
	apimiddleware "github.com/dooonda/ledger/internal/adapter/http/middleware"
	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/infrastructure/auth"
	"github.com/dooonda/ledger/internal/usecase"
	"github.com/dooonda/ledger/internal/usecase/mocks"
)

type passthroughRetrier struct{}

func (passthroughRetrier) Retry(ctx context.Context, op func() error) error { return op() }

type testServer struct {
	router http.Handler
	store  *mocks.MemoryStore
	jwt    *auth.JWTManager
}

func newTestServer(t *testing.T, opts ...func(*RouterConfig)) *testServer {
	t.Helper()

	store := mocks.NewMemoryStore()
	ids := &mocks.SequentialIDGenerator{}
	txManager := &mocks.MemoryTxManager{Store: store}
	accounts := &mocks.MemoryAccountRepository{Store: store}
	wallets := &mocks.MemoryWalletRepository{Store: store}
	txs := &mocks.MemoryTransactionRepository{Store: store}
	outbox := &mocks.MemoryOutboxRepository{Store: store}

	ledgerUC := usecase.NewLedgerUseCase(txManager, accounts, wallets, txs, outbox, passthroughRetrier{}, ids, nil)
	accountUC := usecase.NewAccountUseCase(txManager, accounts, wallets, outbox, ids, nil).WithPasswordCost(bcrypt.MinCost)
	reconciliationUC := usecase.NewReconciliationUseCase(accounts, wallets, txs, &mocks.MemoryLedgerRepository{Store: store}, nil)

	jwtManager := auth.NewJWTManager("router-test-secret", time.Hour)

	cfg := RouterConfig{
		Logger:        zerolog.Nop(),
		WalletHandler: handler.NewWalletHandler(ledgerUC),
		AuthHandler:   handler.NewAuthHandler(accountUC, jwtManager),
		LedgerHandler: handler.NewLedgerHandler(reconciliationUC),
		HealthHandler: handler.NewHealthHandler(),
		TokenVerifier: jwtManager,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &testServer{router: NewRouter(cfg), store: store, jwt: jwtManager}
}

func (s *testServer) do(t *testing.T, method, target, token, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signupAndLogin(t *testing.T, email string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/v1/auth/signup", "",
		`{"name":"Corner Shop","email":"`+email+`","password":"Secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"`+strings.ToUpper(email)+`","password":"Secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login dto.LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))
	require.NotEmpty(t, login.Token)

	return login.Token
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_WalletFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.signupAndLogin(t, "owner@shop.test")

	rec := s.do(t, http.MethodGet, "/api/v1/wallet", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"balance":0,"transactions":[]}`, rec.Body.String())

	for _, body := range []string{
		`{"type":"CREDIT","amount":250,"description":"sales"}`,
		`{"type":"DEBIT","amount":100.25,"description":"restock"}`,
	} {
		rec = s.do(t, http.MethodPost, "/api/v1/wallet", token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/v1/wallet?limit=5", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var wallet dto.WalletResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&wallet))
	assert.True(t, wallet.Balance.Decimal().Equal(decimal.RequireFromString("149.75")))
	require.Len(t, wallet.Transactions, 2)
	assert.Equal(t, "DEBIT", wallet.Transactions[0].Type)

	rec = s.do(t, http.MethodGet, "/api/v1/wallet/transactions?kind=debit", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list dto.TransactionListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Transactions, 1)
	assert.Equal(t, "restock", list.Transactions[0].Description)

	rec = s.do(t, http.MethodGet, "/api/v1/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"owner@shop.test"`)
}

func TestNewRouter_WalletsAreIsolated(t *testing.T) {
	s := newTestServer(t)
	alice := s.signupAndLogin(t, "alice@shop.test")
	bob := s.signupAndLogin(t, "bob@shop.test")

	rec := s.do(t, http.MethodPost, "/api/v1/wallet", alice, `{"type":"CREDIT","amount":40}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/wallet", bob, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"balance":0,"transactions":[]}`, rec.Body.String())
}

func TestNewRouter_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/api/v1/wallet", "/api/v1/wallet/transactions", "/api/v1/me", "/api/v1/ledger/consistency"} {
		rec := s.do(t, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestNewRouter_AdminRoutes(t *testing.T) {
	s := newTestServer(t)
	userToken := s.signupAndLogin(t, "owner@shop.test")

	rec := s.do(t, http.MethodGet, "/api/v1/ledger/consistency", userToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.store.AddAccount(&domain.Account{ID: "ops", Name: "Ops", Email: "ops@dooonda.test", Role: domain.RoleAdmin})
	adminToken, _, err := s.jwt.Generate(&domain.Account{ID: "ops", Email: "ops@dooonda.test", Role: domain.RoleAdmin})
	require.NoError(t, err)

	rec = s.do(t, http.MethodPost, "/api/v1/wallet", userToken, `{"type":"CREDIT","amount":10}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/ledger/consistency", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"consistent":true}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/ledger/reconciliation", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report dto.ReconciliationReportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.True(t, report.LedgerConsistent)
	assert.Empty(t, report.Discrepancies)

	rec = s.do(t, http.MethodGet, "/api/v1/accounts/ghost/reconciliation", adminToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	s := newTestServer(t, func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(0.001, 1, nil)
	})

	login := `{"email":"nobody@shop.test","password":"Secret123"}`

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", login)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", login)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health checks are not rate limited")
}

func TestNewRouter_IdempotentRecord(t *testing.T) {
	store := &memoryIdempotencyStore{values: map[string][]byte{}}
	s := newTestServer(t, func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	})
	token := s.signupAndLogin(t, "owner@shop.test")

	body := `{"type":"CREDIT","amount":75}`
	first := s.do(t, http.MethodPost, "/api/v1/wallet", token, body, apimiddleware.IdempotencyKeyHeader, "sale-1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := s.do(t, http.MethodPost, "/api/v1/wallet", token, body, apimiddleware.IdempotencyKeyHeader, "sale-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(apimiddleware.IdempotencyReplayHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())

	var accountID string
	for key := range store.values {
		accountID, _, _ = strings.Cut(key, ":")
	}
	assert.Len(t, s.store.Transactions(accountID), 1)
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t, func(cfg *RouterConfig) {
		cfg.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		})
	})

	rec := s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	s := newTestServer(t)

	chiRoutes, ok := s.router.(chi.Router)
	require.True(t, ok, "router does not implement chi.Routes")

	seen := map[string]bool{}
	err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/auth/signup",
		"POST /api/v1/auth/login",
		"GET /api/v1/me",
		"GET /api/v1/wallet/",
		"POST /api/v1/wallet/",
		"GET /api/v1/wallet/transactions",
		"GET /api/v1/ledger/consistency",
		"GET /api/v1/ledger/reconciliation",
		"GET /api/v1/accounts/{id}/reconciliation",
	}

	for _, route := range expected {
		assert.True(t, seen[route], "expected route %s to be registered", route)
	}
}

type memoryIdempotencyStore struct {
	values map[string][]byte
}

func (s *memoryIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if v, ok := s.values[key]; ok {
		return true, v, nil
	}

	s.values[key] = []byte(usecase.IdempotencyPending)
	return false, nil, nil
}

func (s *memoryIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.values[key] = response
	return nil
}

func (s *memoryIdempotencyStore) Delete(ctx context.Context, key string) error {
	delete(s.values, key)
	return nil
}
