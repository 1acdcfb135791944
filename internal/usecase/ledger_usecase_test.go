package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/infrastructure/metrics"
	"github.com/dooonda/ledger/internal/usecase"
	"github.com/dooonda/ledger/internal/usecase/mocks"
)

var errSerialization = errors.New("could not serialize access due to concurrent update")

// retryOn re-runs the operation while it fails with target.
type retryOn struct {
	target error
	max    int
}

func (r retryOn) Retry(ctx context.Context, op func() error) error {
	for i := 0; ; i++ {
		err := op()
		if err == nil || !errors.Is(err, r.target) || i >= r.max {
			return err
		}
	}
}

type ledgerFixture struct {
	store *mocks.MemoryStore
	uc    *usecase.LedgerUseCase
}

func newLedgerFixture(t *testing.T, accountIDs ...string) *ledgerFixture {
	t.Helper()

	store := mocks.NewMemoryStore()
	for _, id := range accountIDs {
		store.AddAccount(&domain.Account{ID: id, Name: "Shop " + id, Email: id + "@shop.test", Role: domain.RoleUser})
	}

	uc := usecase.NewLedgerUseCase(
		&mocks.MemoryTxManager{Store: store},
		&mocks.MemoryAccountRepository{Store: store},
		&mocks.MemoryWalletRepository{Store: store},
		&mocks.MemoryTransactionRepository{Store: store},
		&mocks.MemoryOutboxRepository{Store: store},
		retryOn{target: errSerialization, max: 3},
		&mocks.SequentialIDGenerator{},
		metrics.New(prometheus.NewRegistry()),
	)

	return &ledgerFixture{store: store, uc: uc}
}

func (f *ledgerFixture) record(t *testing.T, accountID string, kind domain.TransactionKind, amount, description string) *domain.Transaction {
	t.Helper()

	tx, err := f.uc.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		AccountID:   accountID,
		Kind:        kind,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
	})
	if err != nil {
		t.Fatalf("RecordTransaction(%s %s) failed: %v", kind, amount, err)
	}

	return tx
}

func TestLedgerUseCase_RecordTransaction_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.RecordTransactionInput
		wantErr error
	}{
		{
			name:    "zero amount",
			input:   usecase.RecordTransactionInput{AccountID: "acc-1", Kind: domain.KindCredit, Amount: decimal.Zero},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			input:   usecase.RecordTransactionInput{AccountID: "acc-1", Kind: domain.KindDebit, Amount: decimal.NewFromInt(-10)},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "sub-cent amount",
			input:   usecase.RecordTransactionInput{AccountID: "acc-1", Kind: domain.KindCredit, Amount: decimal.RequireFromString("10.005")},
			wantErr: domain.ErrAmountPrecision,
		},
		{
			name:    "unknown kind",
			input:   usecase.RecordTransactionInput{AccountID: "acc-1", Kind: "TRANSFER", Amount: decimal.NewFromInt(10)},
			wantErr: domain.ErrInvalidKind,
		},
		{
			name: "description too long",
			input: usecase.RecordTransactionInput{
				AccountID:   "acc-1",
				Kind:        domain.KindCredit,
				Amount:      decimal.NewFromInt(10),
				Description: strings.Repeat("d", domain.MaxDescriptionLength+1),
			},
			wantErr: domain.ErrDescriptionTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t, "acc-1")

			tx, err := f.uc.RecordTransaction(context.Background(), tt.input)
			if tx != nil {
				t.Fatalf("expected no transaction, got %+v", tx)
			}

			if !errors.Is(err, tt.wantErr) || !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected %v (validation), got %v", tt.wantErr, err)
			}

			if f.store.Begun() != 0 {
				t.Fatalf("validation must fail before any database transaction, began %d", f.store.Begun())
			}

			if _, ok := f.store.Wallet("acc-1"); ok {
				t.Fatal("wallet must not be created by a rejected request")
			}
		})
	}
}

func TestLedgerUseCase_RecordTransaction_UnknownAccount(t *testing.T) {
	f := newLedgerFixture(t, "acc-1")

	_, err := f.uc.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		AccountID: "ghost",
		Kind:      domain.KindCredit,
		Amount:    decimal.NewFromInt(5),
	})

	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if f.store.Begun() != 0 {
		t.Fatal("no database transaction expected for unknown account")
	}
}

func TestLedgerUseCase_CreditThenWithdrawal(t *testing.T) {
	f := newLedgerFixture(t, "acc-1")

	credit := f.record(t, "acc-1", domain.KindCredit, "1250.00", "market day")
	withdrawal := f.record(t, "acc-1", domain.KindWithdrawal, "5000.00", "rent")

	if credit.Status != domain.StatusCompleted || withdrawal.Status != domain.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s and %s", credit.Status, withdrawal.Status)
	}

	if !withdrawal.BalanceBefore.Equal(decimal.RequireFromString("1250")) ||
		!withdrawal.BalanceAfter.Equal(decimal.RequireFromString("-3750")) {
		t.Fatalf("unexpected balances on withdrawal: before=%s after=%s", withdrawal.BalanceBefore, withdrawal.BalanceAfter)
	}

	snap, err := f.uc.GetWalletSnapshot(context.Background(), "acc-1", 10)
	if err != nil {
		t.Fatalf("GetWalletSnapshot failed: %v", err)
	}

	if !snap.Balance.Equal(decimal.RequireFromString("-3750")) {
		t.Fatalf("balance = %s, want -3750", snap.Balance)
	}

	if len(snap.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(snap.Transactions))
	}

	if snap.Transactions[0].ID != withdrawal.ID || snap.Transactions[1].ID != credit.ID {
		t.Fatalf("expected newest first, got %s then %s", snap.Transactions[0].ID, snap.Transactions[1].ID)
	}

	events := f.store.OutboxEvents()
	if len(events) != 2 || events[0].EventType != domain.EventTypeTransactionRecorded {
		t.Fatalf("expected 2 transaction.recorded events, got %+v", events)
	}
}

func TestLedgerUseCase_RefundAndDebit(t *testing.T) {
	f := newLedgerFixture(t, "acc-1")

	f.record(t, "acc-1", domain.KindDebit, "19.99", "supplies")
	f.record(t, "acc-1", domain.KindRefund, "4.50", "returned item")

	w, ok := f.store.Wallet("acc-1")
	if !ok {
		t.Fatal("wallet should exist after first write")
	}

	if !w.Balance.Equal(decimal.RequireFromString("-15.49")) {
		t.Fatalf("balance = %s, want -15.49", w.Balance)
	}

	if w.Version != 2 {
		t.Fatalf("version = %d, want 2", w.Version)
	}
}

func TestLedgerUseCase_ConcurrentCreditsAreNotLost(t *testing.T) {
	const n = 100

	f := newLedgerFixture(t, "acc-1")

	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.uc.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
				AccountID:   "acc-1",
				Kind:        domain.KindCredit,
				Amount:      decimal.RequireFromString("1.00"),
				Description: fmt.Sprintf("sale %d", i),
			})
			errs <- err
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent record failed: %v", err)
		}
	}

	w, _ := f.store.Wallet("acc-1")
	if !w.Balance.Equal(decimal.NewFromInt(n)) {
		t.Fatalf("balance = %s, want %d", w.Balance, n)
	}

	txs := f.store.Transactions("acc-1")
	if len(txs) != n {
		t.Fatalf("expected %d transactions, got %d", n, len(txs))
	}

	seen := make(map[int64]bool, n)
	for i, tx := range txs {
		if tx.WalletVersion != int64(i+1) {
			t.Fatalf("transaction %d has version %d, want %d", i, tx.WalletVersion, i+1)
		}
		if seen[tx.WalletVersion] {
			t.Fatalf("duplicate version %d", tx.WalletVersion)
		}
		seen[tx.WalletVersion] = true

		if !tx.BalanceAfter.Equal(tx.BalanceBefore.Add(tx.SignedAmount())) {
			t.Fatalf("transaction %s: %s + %s != %s", tx.ID, tx.BalanceBefore, tx.SignedAmount(), tx.BalanceAfter)
		}
	}

	if !domain.SumCompleted(txs).Equal(w.Balance) {
		t.Fatalf("sum of transactions %s != balance %s", domain.SumCompleted(txs), w.Balance)
	}
}

func TestLedgerUseCase_ConcurrentMixedAccounts(t *testing.T) {
	f := newLedgerFixture(t, "acc-a", "acc-b")

	submit := func(wg *sync.WaitGroup, acc string, kind domain.TransactionKind, amount string) {
		defer wg.Done()
		_, err := f.uc.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
			AccountID: acc,
			Kind:      kind,
			Amount:    decimal.RequireFromString(amount),
		})
		if err != nil {
			t.Errorf("%s %s on %s failed: %v", kind, amount, acc, err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, acc := range []string{"acc-a", "acc-b"} {
			wg.Add(2)
			go submit(&wg, acc, domain.KindCredit, "3.00")
			go submit(&wg, acc, domain.KindDebit, "1.25")
		}
	}
	wg.Wait()

	for _, acc := range []string{"acc-a", "acc-b"} {
		w, _ := f.store.Wallet(acc)
		if !w.Balance.Equal(decimal.RequireFromString("87.5")) {
			t.Fatalf("%s balance = %s, want 87.5", acc, w.Balance)
		}
	}
}

func TestLedgerUseCase_CommitFailureRollsBack(t *testing.T) {
	f := newLedgerFixture(t, "acc-1")
	f.record(t, "acc-1", domain.KindCredit, "100", "")

	f.store.FailCommits(errors.New("disk full"))

	_, err := f.uc.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		AccountID: "acc-1",
		Kind:      domain.KindDebit,
		Amount:    decimal.NewFromInt(40),
	})

	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	w, _ := f.store.Wallet("acc-1")
	if !w.Balance.Equal(decimal.NewFromInt(100)) || w.Version != 1 {
		t.Fatalf("wallet changed after failed commit: %+v", w)
	}

	if got := len(f.store.Transactions("acc-1")); got != 1 {
		t.Fatalf("expected 1 transaction after failed commit, got %d", got)
	}
}

func TestLedgerUseCase_RetriesSerializationFailure(t *testing.T) {
	f := newLedgerFixture(t, "acc-1")
	f.store.FailCommits(errSerialization, errSerialization)

	tx := f.record(t, "acc-1", domain.KindCredit, "12.00", "retry me")

	if f.store.Begun() != 3 {
		t.Fatalf("expected 3 attempts, got %d", f.store.Begun())
	}

	if tx.WalletVersion != 1 {
		t.Fatalf("retried write must produce version 1, got %d", tx.WalletVersion)
	}

	if got := len(f.store.Transactions("acc-1")); got != 1 {
		t.Fatalf("expected exactly one committed transaction, got %d", got)
	}
}

func TestLedgerUseCase_CallerTimeoutWhileWaitingForLock(t *testing.T) {
	f := newLedgerFixture(t, "acc-1")
	f.record(t, "acc-1", domain.KindCredit, "1", "")

	// Hold the wallet lock from a second transaction.
	txMgr := &mocks.MemoryTxManager{Store: f.store}
	holder, _ := txMgr.Begin(context.Background())
	wallets := &mocks.MemoryWalletRepository{Store: f.store}
	if _, err := wallets.GetOrCreateForUpdate(context.Background(), holder, "acc-1", time.Now()); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	defer func() { _ = holder.Rollback(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.uc.RecordTransaction(ctx, usecase.RecordTransactionInput{
		AccountID: "acc-1",
		Kind:      domain.KindCredit,
		Amount:    decimal.NewFromInt(1),
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence category, got %v", err)
	}
}

func TestLedgerUseCase_RecordTransaction_OutboxFailureSkipsCommit(t *testing.T) {
	ctrl := gomock.NewController(t)

	accounts := mocks.NewMockAccountRepository(ctrl)
	wallets := mocks.NewMockWalletRepository(ctrl)
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	txMgr := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	accounts.EXPECT().GetByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1"}, nil)
	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	wallets.EXPECT().GetOrCreateForUpdate(gomock.Any(), tx, "acc-1", gomock.Any()).
		Return(&domain.Wallet{AccountID: "acc-1", Balance: decimal.NewFromInt(10), Version: 4}, nil)
	gomock.InOrder(
		idGen.EXPECT().Generate().Return("tx-1"),
		idGen.EXPECT().Generate().Return("evt-1"),
	)
	txRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, rec *domain.Transaction) error {
			if !rec.BalanceBefore.Equal(decimal.NewFromInt(10)) || !rec.BalanceAfter.Equal(decimal.NewFromInt(35)) {
				t.Errorf("unexpected balances %s -> %s", rec.BalanceBefore, rec.BalanceAfter)
			}
			if rec.WalletVersion != 5 {
				t.Errorf("version = %d, want 5", rec.WalletVersion)
			}
			return nil
		})
	wallets.EXPECT().UpdateBalance(gomock.Any(), tx, "acc-1", gomock.Any(), gomock.Any()).Return(nil)
	outbox.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(errors.New("outbox down"))
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := usecase.NewLedgerUseCase(txMgr, accounts, wallets, txRepo, outbox, nil, idGen, nil)

	_, err := uc.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		AccountID: "acc-1",
		Kind:      domain.KindCredit,
		Amount:    decimal.NewFromInt(25),
	})

	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}

	if pe.Op != "append outbox" {
		t.Fatalf("op = %q, want append outbox", pe.Op)
	}
}

func TestLedgerUseCase_RecordTransaction_SucceedsWhenContextEndsAfterCommit(t *testing.T) {
	ctrl := gomock.NewController(t)

	accounts := mocks.NewMockAccountRepository(ctrl)
	wallets := mocks.NewMockWalletRepository(ctrl)
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	txMgr := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	accounts.EXPECT().GetByID(gomock.Any(), "acc-1").Return(&domain.Account{ID: "acc-1"}, nil)
	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	wallets.EXPECT().GetOrCreateForUpdate(gomock.Any(), tx, "acc-1", gomock.Any()).
		Return(&domain.Wallet{AccountID: "acc-1", Balance: decimal.Zero}, nil)
	txRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	wallets.EXPECT().UpdateBalance(gomock.Any(), tx, "acc-1", gomock.Any(), gomock.Any()).Return(nil)
	outbox.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	tx.EXPECT().Commit(gomock.Any()).DoAndReturn(func(context.Context) error {
		cancel()
		return nil
	})
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	uc := usecase.NewLedgerUseCase(txMgr, accounts, wallets, txRepo, outbox, nil, &mocks.SequentialIDGenerator{}, nil)

	rec, err := uc.RecordTransaction(ctx, usecase.RecordTransactionInput{
		AccountID: "acc-1",
		Kind:      domain.KindCredit,
		Amount:    decimal.NewFromInt(7),
	})
	if err != nil {
		t.Fatalf("committed write must be reported as success, got %v", err)
	}

	if rec == nil || !rec.BalanceAfter.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("unexpected result %+v", rec)
	}
}

func TestLedgerUseCase_GetWalletSnapshot(t *testing.T) {
	t.Run("no wallet yet", func(t *testing.T) {
		f := newLedgerFixture(t, "acc-1")

		snap, err := f.uc.GetWalletSnapshot(context.Background(), "acc-1", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !snap.Balance.IsZero() || snap.Transactions == nil || len(snap.Transactions) != 0 {
			t.Fatalf("expected zero balance and empty list, got %+v", snap)
		}

		if _, ok := f.store.Wallet("acc-1"); ok {
			t.Fatal("snapshot must not create the wallet")
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newLedgerFixture(t)

		if _, err := f.uc.GetWalletSnapshot(context.Background(), "ghost", 10); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("negative limit", func(t *testing.T) {
		f := newLedgerFixture(t, "acc-1")

		if _, err := f.uc.GetWalletSnapshot(context.Background(), "acc-1", -1); !errors.Is(err, domain.ErrInvalidHistoryLimit) {
			t.Fatalf("expected ErrInvalidHistoryLimit, got %v", err)
		}
	})

	t.Run("limits", func(t *testing.T) {
		f := newLedgerFixture(t, "acc-1")
		for i := 0; i < 12; i++ {
			f.record(t, "acc-1", domain.KindCredit, "1", "")
		}

		tests := []struct {
			limit int
			want  int
		}{
			{0, 0},
			{5, 5},
			{10, 10},
			{500, 12},
		}

		for _, tt := range tests {
			snap, err := f.uc.GetWalletSnapshot(context.Background(), "acc-1", tt.limit)
			if err != nil {
				t.Fatalf("limit %d: %v", tt.limit, err)
			}

			if len(snap.Transactions) != tt.want {
				t.Fatalf("limit %d: got %d transactions, want %d", tt.limit, len(snap.Transactions), tt.want)
			}

			if !snap.Balance.Equal(decimal.NewFromInt(12)) {
				t.Fatalf("limit %d: balance %s", tt.limit, snap.Balance)
			}

			if tt.want > 0 && !snap.Transactions[0].BalanceAfter.Equal(snap.Balance) {
				t.Fatalf("newest transaction must carry the snapshot balance")
			}
		}
	})

	t.Run("repeated reads are identical and write nothing", func(t *testing.T) {
		f := newLedgerFixture(t, "acc-1")
		f.record(t, "acc-1", domain.KindCredit, "40", "float")
		f.record(t, "acc-1", domain.KindDebit, "15", "stock")

		before, ok := f.store.Wallet("acc-1")
		require.True(t, ok)
		begun := f.store.Begun()

		first, err := f.uc.GetWalletSnapshot(context.Background(), "acc-1", 10)
		require.NoError(t, err)
		second, err := f.uc.GetWalletSnapshot(context.Background(), "acc-1", 10)
		require.NoError(t, err)

		assert.Equal(t, first, second)

		after, ok := f.store.Wallet("acc-1")
		require.True(t, ok)
		assert.Equal(t, before.Version, after.Version)
		assert.True(t, before.Balance.Equal(after.Balance))
		assert.Equal(t, begun, f.store.Begun(), "reads must not open write transactions")
		assert.Len(t, f.store.Transactions("acc-1"), 2)
	})

	t.Run("history follows wallet version not wall clock", func(t *testing.T) {
		f := newLedgerFixture(t, "acc-1")
		base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

		f.store.AddWallet(&domain.Wallet{AccountID: "acc-1", Balance: decimal.NewFromInt(30), Version: 2, CreatedAt: base, UpdatedAt: base})
		f.store.AddTransaction(&domain.Transaction{
			ID: "tx-1", AccountID: "acc-1", Kind: domain.KindCredit, Status: domain.StatusCompleted,
			Amount: decimal.NewFromInt(10), BalanceBefore: decimal.Zero, BalanceAfter: decimal.NewFromInt(10),
			WalletVersion: 1, CreatedAt: base.Add(500 * time.Millisecond),
		})
		// Written by a replica whose clock runs behind.
		f.store.AddTransaction(&domain.Transaction{
			ID: "tx-2", AccountID: "acc-1", Kind: domain.KindCredit, Status: domain.StatusCompleted,
			Amount: decimal.NewFromInt(20), BalanceBefore: decimal.NewFromInt(10), BalanceAfter: decimal.NewFromInt(30),
			WalletVersion: 2, CreatedAt: base.Add(200 * time.Millisecond),
		})

		snap, err := f.uc.GetWalletSnapshot(context.Background(), "acc-1", 10)
		require.NoError(t, err)
		require.Len(t, snap.Transactions, 2)
		assert.Equal(t, "tx-2", snap.Transactions[0].ID)
		assert.True(t, snap.Transactions[0].BalanceAfter.Equal(snap.Balance))

		listed, err := f.uc.ListTransactions(context.Background(), domain.NewTransactionQuery("acc-1"))
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, "tx-2", listed[0].ID)
	})
}

func TestLedgerUseCase_ListTransactions(t *testing.T) {
	f := newLedgerFixture(t, "acc-1")

	f.record(t, "acc-1", domain.KindCredit, "100", "Supplier refund")
	f.record(t, "acc-1", domain.KindDebit, "20", "stock")
	f.record(t, "acc-1", domain.KindRefund, "5", "customer refund")
	f.record(t, "acc-1", domain.KindWithdrawal, "50", "cash out")

	tests := []struct {
		name  string
		conds []domain.TransactionCondition
		want  []domain.TransactionKind
	}{
		{
			name: "all newest first",
			want: []domain.TransactionKind{domain.KindWithdrawal, domain.KindRefund, domain.KindDebit, domain.KindCredit},
		},
		{
			name:  "inflows",
			conds: []domain.TransactionCondition{domain.KindIn{Kinds: []domain.TransactionKind{domain.KindCredit, domain.KindRefund}}},
			want:  []domain.TransactionKind{domain.KindRefund, domain.KindCredit},
		},
		{
			name:  "description search is case-insensitive",
			conds: []domain.TransactionCondition{domain.DescriptionContains{Text: "REFUND"}},
			want:  []domain.TransactionKind{domain.KindRefund, domain.KindCredit},
		},
		{
			name:  "failed only",
			conds: []domain.TransactionCondition{domain.StatusIs{Status: domain.StatusFailed}},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := domain.NewTransactionQuery("acc-1").Where(tt.conds...)

			got, err := f.uc.ListTransactions(context.Background(), q)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d transactions, want %d", len(got), len(tt.want))
			}

			for i := range got {
				if got[i].Kind != tt.want[i] {
					t.Fatalf("position %d: got %s, want %s", i, got[i].Kind, tt.want[i])
				}
			}
		})
	}

	t.Run("invalid filter", func(t *testing.T) {
		q := domain.NewTransactionQuery("acc-1").Where(domain.KindIn{})
		if _, err := f.uc.ListTransactions(context.Background(), q); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("paging", func(t *testing.T) {
		q := domain.NewTransactionQuery("acc-1").Page(2, 1)
		got, err := f.uc.ListTransactions(context.Background(), q)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(got) != 2 || got[0].Kind != domain.KindRefund {
			t.Fatalf("unexpected page %+v", got)
		}
	})
}
