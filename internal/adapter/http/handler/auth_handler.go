package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dooonda/ledger/internal/adapter/http/dto"
	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/usecase"
)

// AccountService defines the behavior needed by AuthHandler.
type AccountService interface {
	Signup(ctx context.Context, input usecase.SignupInput) (*domain.Account, error)
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Generate(account *domain.Account) (string, time.Time, error)
}

// AuthHandler handles signup, login and the current-account endpoint.
type AuthHandler struct {
	accounts AccountService
	tokens   TokenIssuer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts AccountService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokens:   tokens,
	}
}

// Signup registers an account together with its empty wallet.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, "signup", err)
		return
	}

	account, err := h.accounts.Signup(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, "signup", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SignupResponse{
		Message: "account created",
		User:    dto.AccountFromDomain(account),
	})
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, "login", err)
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, "login", err)
		return
	}

	token, expiresAt, err := h.tokens.Generate(account)
	if err != nil {
		respondError(w, r, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.AccountFromDomain(account),
	})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), p.AccountID)
	if err != nil {
		respondError(w, r, "get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
