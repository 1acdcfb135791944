package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/dooonda/ledger/internal/adapter/http/dto"
	"github.com/dooonda/ledger/internal/domain"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInconsistentLedger):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err with the operation and caller, then writes the
// mapped status. Server-side failures do not echo driver details.
func respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := mapDomainError(err)

	event := hlog.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
	}

	if p, ok := domain.PrincipalFromContext(r.Context()); ok {
		event = event.Str("account_id", p.AccountID)
	}

	event.Err(err).
		Str("op", op).
		Str("category", domain.Category(err)).
		Int("status", status).
		Msg("request failed")

	message := http.StatusText(status)
	details := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusGatewayTimeout {
		details = ""
	}

	writeError(w, status, message, details)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}

	return nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue, nil
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, key)
	}

	return i, nil
}

// principal returns the authenticated caller. The auth middleware guarantees
// one on protected routes; a missing principal is answered with 401.
func principal(w http.ResponseWriter, r *http.Request) (*domain.Principal, bool) {
	p, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		zerolog.Ctx(r.Context()).Warn().Msg("request reached handler without principal")
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized), "authentication required")
		return nil, false
	}

	return p, true
}
