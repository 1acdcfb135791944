package dto

import (
	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/usecase"
)

// RecordTransactionRequest is the body of POST /api/v1/wallet.
type RecordTransactionRequest struct {
	Type        string `json:"type"`
	Amount      Amount `json:"amount"`
	Description string `json:"description"`
}

// ToUseCaseInput converts to use case input for the authenticated account.
// An unknown type is rejected here so the caller gets a validation error.
func (r *RecordTransactionRequest) ToUseCaseInput(accountID string) (usecase.RecordTransactionInput, error) {
	kind, err := domain.ParseTransactionKind(r.Type)
	if err != nil {
		return usecase.RecordTransactionInput{}, err
	}

	return usecase.RecordTransactionInput{
		AccountID:   accountID,
		Kind:        kind,
		Amount:      r.Amount.Decimal(),
		Description: r.Description,
	}, nil
}

// SignupRequest is the body of POST /api/v1/auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *SignupRequest) ToUseCaseInput() usecase.SignupInput {
	return usecase.SignupInput{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Password: r.Password,
	}
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *LoginRequest) ToUseCaseInput() usecase.AuthenticateInput {
	return usecase.AuthenticateInput{
		Email:    r.Email,
		Password: r.Password,
	}
}
