package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the ledger matches exactly one of
// these with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrPersistence  = errors.New("persistence failure")
	ErrUnauthorized = errors.New("unauthorized")
)

// categorized is a specific error that belongs to a category.
type categorized struct {
	category error
	msg      string
}

func (e *categorized) Error() string { return e.msg }

func (e *categorized) Unwrap() error { return e.category }

func newError(category error, msg string) error {
	return &categorized{category: category, msg: msg}
}

var (
	// Validation errors
	ErrInvalidAmount       = newError(ErrValidation, "amount must be positive")
	ErrAmountPrecision     = newError(ErrValidation, "amount has more decimal places than the currency allows")
	ErrAmountTooLarge      = newError(ErrValidation, "amount exceeds maximum allowed")
	ErrInvalidKind         = newError(ErrValidation, "unknown transaction type")
	ErrInvalidStatus       = newError(ErrValidation, "unknown transaction status")
	ErrDescriptionTooLong  = newError(ErrValidation, "description is too long")
	ErrInvalidHistoryLimit = newError(ErrValidation, "history limit must be a non-negative integer")
	ErrInvalidAccountName  = newError(ErrValidation, "invalid account name")
	ErrInvalidEmail        = newError(ErrValidation, "invalid email format")
	ErrPasswordTooWeak     = newError(ErrValidation, "password does not meet requirements")
	ErrInvalidPhone        = newError(ErrValidation, "invalid phone number")
	ErrInvalidFilter       = newError(ErrValidation, "invalid transaction filter")

	// Not found errors
	ErrAccountNotFound = newError(ErrNotFound, "account not found")
	ErrWalletNotFound  = newError(ErrNotFound, "wallet not found")

	// Conflict errors
	ErrEmailTaken = newError(ErrConflict, "user with this email already exists")

	// Authentication errors
	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid email or password")
	ErrInvalidToken       = newError(ErrUnauthorized, "invalid token")
	ErrExpiredToken       = newError(ErrUnauthorized, "token has expired")
	ErrForbidden          = errors.New("insufficient role for this operation")

	// Ledger integrity
	ErrInconsistentLedger = errors.New("ledger is inconsistent")
)

// PersistenceError reports a storage-layer failure during a ledger operation.
// It matches ErrPersistence and the underlying driver error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// Persistence wraps err as a PersistenceError unless it already carries a
// domain category, in which case it is returned unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}

	if IsCategorized(err) {
		return err
	}

	return &PersistenceError{Op: op, Err: err}
}

// IsCategorized reports whether err belongs to one of the domain categories.
func IsCategorized(err error) bool {
	for _, c := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrPersistence, ErrUnauthorized} {
		if errors.Is(err, c) {
			return true
		}
	}

	return false
}

// Category returns a short label for metrics and logs.
func Category(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}
