package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MaxDescriptionLength = 500
	MinPasswordLength    = 8
	MaxPasswordLength    = 128
	MaxHistoryLimit      = 100
	DefaultHistoryLimit  = 10

	// MinorUnitPlaces is the number of decimal places the wallet currency allows.
	MinorUnitPlaces int32 = 2

	MaxTransactionAmount = "1000000000000" // 1 trillion

	// Checked on the raw representation before any rescaling.
	maxAmountExponent    int32 = 12
	minAmountExponent    int32 = -(MinorUnitPlaces + 18)
	maxAmountCoefficient       = 128 // bits
)

var (
	maxAmount  = decimal.RequireFromString(MaxTransactionAmount)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
)

// ValidateAmount checks that amount is positive, within range and has at most
// MinorUnitPlaces decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if amount.Exponent() < minAmountExponent {
		return fmt.Errorf("%w: at most %d decimal places", ErrAmountPrecision, MinorUnitPlaces)
	}

	if amount.Exponent() > maxAmountExponent || amount.Coefficient().BitLen() > maxAmountCoefficient {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxTransactionAmount)
	}

	if !amount.Equal(amount.Truncate(MinorUnitPlaces)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrAmountPrecision, MinorUnitPlaces)
	}

	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxTransactionAmount)
	}

	return nil
}

// ValidateDescription limits description length.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrDescriptionTooLong, MaxDescriptionLength)
	}

	return nil
}

// ValidateHistoryLimit checks a snapshot history limit and caps it.
func ValidateHistoryLimit(limit int) (int, error) {
	if limit < 0 {
		return 0, ErrInvalidHistoryLimit
	}

	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	return limit, nil
}

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if utf8.RuneCountInString(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// ValidatePhone validates an optional phone number.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}

	if !phoneRegex.MatchString(phone) {
		return ErrInvalidPhone
	}

	return nil
}

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}

	if !hasUpper || !hasLower || !hasNumber {
		return fmt.Errorf("%w: must contain uppercase, lowercase, and numbers", ErrPasswordTooWeak)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 100
	const DefaultPageSize = 20

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
