package domain

import (
	"errors"
	"testing"
	"time"
)

func TestTransactionQuery_Validate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		conds   []TransactionCondition
		wantErr error
	}{
		{name: "no conditions"},
		{
			name: "all variants",
			conds: []TransactionCondition{
				KindIn{Kinds: []TransactionKind{KindCredit, KindRefund}},
				StatusIs{Status: StatusCompleted},
				CreatedFrom{At: now.Add(-time.Hour)},
				CreatedBefore{At: now},
				DescriptionContains{Text: "supplier"},
			},
		},
		{
			name:    "empty kind set",
			conds:   []TransactionCondition{KindIn{}},
			wantErr: ErrInvalidFilter,
		},
		{
			name:    "unknown kind",
			conds:   []TransactionCondition{KindIn{Kinds: []TransactionKind{"GIFT"}}},
			wantErr: ErrInvalidKind,
		},
		{
			name:    "unknown status",
			conds:   []TransactionCondition{StatusIs{Status: "DONE"}},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "inverted window",
			conds:   []TransactionCondition{CreatedFrom{At: now}, CreatedBefore{At: now}},
			wantErr: ErrInvalidFilter,
		},
		{
			name:    "blank search",
			conds:   []TransactionCondition{DescriptionContains{Text: "  "}},
			wantErr: ErrInvalidFilter,
		},
		{
			name:    "nil condition",
			conds:   []TransactionCondition{nil},
			wantErr: ErrInvalidFilter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewTransactionQuery("acc-1").Where(tt.conds...)
			err := q.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTransactionQuery_Page(t *testing.T) {
	q := NewTransactionQuery("acc-1")
	if q.Limit != 20 || q.Offset != 0 {
		t.Fatalf("defaults: got %d/%d", q.Limit, q.Offset)
	}

	q.Page(1000, -1)
	if q.Limit != 100 || q.Offset != 0 {
		t.Fatalf("clamped: got %d/%d", q.Limit, q.Offset)
	}
}
