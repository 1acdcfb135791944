package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransactionCondition is one filter dimension of a TransactionQuery.
// The set of variants is closed: KindIn, StatusIs, CreatedFrom, CreatedBefore
// and DescriptionContains.
type TransactionCondition interface {
	Validate() error
	isTransactionCondition()
}

// KindIn matches transactions whose kind is one of Kinds.
type KindIn struct {
	Kinds []TransactionKind
}

func (c KindIn) Validate() error {
	if len(c.Kinds) == 0 {
		return fmt.Errorf("%w: kind filter is empty", ErrInvalidFilter)
	}

	for _, k := range c.Kinds {
		if !k.IsValid() {
			return ErrInvalidKind
		}
	}

	return nil
}

// StatusIs matches transactions in the given status.
type StatusIs struct {
	Status TransactionStatus
}

func (c StatusIs) Validate() error {
	if _, err := ParseTransactionStatus(string(c.Status)); err != nil {
		return err
	}

	return nil
}

// CreatedFrom matches transactions created at or after At.
type CreatedFrom struct {
	At time.Time
}

func (c CreatedFrom) Validate() error {
	if c.At.IsZero() {
		return fmt.Errorf("%w: from time is zero", ErrInvalidFilter)
	}

	return nil
}

// CreatedBefore matches transactions created strictly before At.
type CreatedBefore struct {
	At time.Time
}

func (c CreatedBefore) Validate() error {
	if c.At.IsZero() {
		return fmt.Errorf("%w: before time is zero", ErrInvalidFilter)
	}

	return nil
}

// DescriptionContains matches a case-insensitive substring of the description.
type DescriptionContains struct {
	Text string
}

func (c DescriptionContains) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("%w: search text is empty", ErrInvalidFilter)
	}

	return ValidateDescription(c.Text)
}

func (KindIn) isTransactionCondition()              {}
func (StatusIs) isTransactionCondition()            {}
func (CreatedFrom) isTransactionCondition()         {}
func (CreatedBefore) isTransactionCondition()       {}
func (DescriptionContains) isTransactionCondition() {}

// TransactionQuery selects transactions of one account, newest first.
type TransactionQuery struct {
	AccountID  string
	Conditions []TransactionCondition
	Limit      int
	Offset     int
}

// NewTransactionQuery starts a query for accountID with default paging.
func NewTransactionQuery(accountID string) *TransactionQuery {
	limit, offset := ValidatePagination(0, 0)
	return &TransactionQuery{AccountID: accountID, Limit: limit, Offset: offset}
}

// Where appends conditions. All conditions must hold.
func (q *TransactionQuery) Where(conds ...TransactionCondition) *TransactionQuery {
	q.Conditions = append(q.Conditions, conds...)
	return q
}

// Page sets limit and offset, clamped to the allowed range.
func (q *TransactionQuery) Page(limit, offset int) *TransactionQuery {
	q.Limit, q.Offset = ValidatePagination(limit, offset)
	return q
}

// Validate checks every condition and the time window.
func (q *TransactionQuery) Validate() error {
	var from, before *time.Time

	for _, c := range q.Conditions {
		if c == nil {
			return fmt.Errorf("%w: nil condition", ErrInvalidFilter)
		}

		if err := c.Validate(); err != nil {
			return err
		}

		switch v := c.(type) {
		case CreatedFrom:
			from = &v.At
		case CreatedBefore:
			before = &v.At
		}
	}

	if from != nil && before != nil && !from.Before(*before) {
		return fmt.Errorf("%w: from must be before to", ErrInvalidFilter)
	}

	return nil
}
