package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dooonda/ledger/internal/adapter/http/dto"
	"github.com/dooonda/ledger/internal/domain"
)

// withPrincipal returns r authenticated as accountID.
func withPrincipal(r *http.Request, accountID string, role domain.Role) *http.Request {
	ctx := domain.WithPrincipal(r.Context(), &domain.Principal{
		AccountID: accountID,
		Email:     accountID + "@shop.test",
		Role:      role,
	})
	return r.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/wallet?limit=50", nil)
	got, err := parseIntQuery(req, "limit", 10)
	require.NoError(t, err)
	assert.Equal(t, 50, got)

	req = httptest.NewRequest(http.MethodGet, "/wallet?limit=invalid", nil)
	_, err = parseIntQuery(req, "limit", 10)
	assert.ErrorIs(t, err, domain.ErrValidation)

	req = httptest.NewRequest(http.MethodGet, "/wallet", nil)
	got, err = parseIntQuery(req, "limit", 25)
	require.NoError(t, err)
	assert.Equal(t, 25, got)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("record: %w", domain.ErrInvalidKind), http.StatusBadRequest},
		{"email taken", domain.ErrEmailTaken, http.StatusConflict},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"inconsistent", domain.ErrInconsistentLedger, http.StatusConflict},
		{"timeout", domain.Persistence("commit", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"persistence", domain.Persistence("commit", errors.New("conn reset")), http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapDomainError(tt.err))
		})
	}
}

func TestRespondError(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	h := hlog.NewHandler(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, "record transaction", domain.Persistence("insert transaction", errors.New("pq: secret detail")))
	}))

	rec := httptest.NewRecorder()
	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/wallet", nil), "acc-1", domain.RoleUser)
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Internal Server Error", resp.Error)
	assert.Empty(t, resp.Message)

	assert.Contains(t, logs.String(), `"account_id":"acc-1"`)
	assert.Contains(t, logs.String(), `"op":"record transaction"`)
	assert.Contains(t, logs.String(), `"category":"persistence"`)
	assert.Contains(t, logs.String(), "secret detail")
}

func TestRespondError_ClientErrorsKeepMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet", nil)

	respondError(rec, req, "record transaction", domain.ErrInvalidAmount)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, domain.ErrInvalidAmount.Error(), decodeError(t, rec).Message)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"kiosk"}`))
	require.NoError(t, decodeJSON(rec, req, &dst))
	assert.Equal(t, "kiosk", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	assert.ErrorIs(t, decodeJSON(rec, req, &dst), domain.ErrValidation)

	big := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	assert.ErrorIs(t, decodeJSON(rec, req, &dst), domain.ErrValidation)
}

func TestPrincipalMissing(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)

	p, ok := principal(rec, req)
	assert.False(t, ok)
	assert.Nil(t, p)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
