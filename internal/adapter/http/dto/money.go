package dto

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/dooonda/ledger/internal/domain"
)

// Amount is a decimal that travels as a JSON number. Decoding also accepts a
// quoted string so clients can avoid float rounding on their side.
type Amount decimal.Decimal

// Decimal returns the underlying value.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.Decimal(a)
}

// MarshalJSON renders the amount with exactly two fractional digits.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).StringFixed(domain.MinorUnitPlaces)), nil
}

// UnmarshalJSON parses the exact decimal text of a number or string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount(decimal.Zero)
		return nil
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		text = unquoted
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	*a = Amount(d)
	return nil
}
