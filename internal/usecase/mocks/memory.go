package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/usecase"
)

// MemoryStore is an in-memory ledger database. Writes made through a
// MemoryTx become visible on Commit, and GetOrCreateForUpdate holds a
// per-wallet lock until the transaction ends, like SELECT ... FOR UPDATE.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	wallets  map[string]*domain.Wallet
	txs      map[string][]*domain.Transaction
	outbox   []*domain.OutboxEvent

	locksMu  sync.Mutex
	rowLocks map[string]chan struct{}

	commitErrs []error
	begun      atomic.Int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*domain.Account),
		wallets:  make(map[string]*domain.Wallet),
		txs:      make(map[string][]*domain.Transaction),
		rowLocks: make(map[string]chan struct{}),
	}
}

// AddAccount seeds a committed account.
func (s *MemoryStore) AddAccount(a *domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.accounts[a.ID] = &cp
}

// AddWallet seeds a committed wallet without any transactions.
func (s *MemoryStore) AddWallet(w *domain.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.wallets[w.AccountID] = &cp
}

// AddTransaction seeds a committed transaction.
func (s *MemoryStore) AddTransaction(t *domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.txs[t.AccountID] = append(s.txs[t.AccountID], &cp)
}

// FailCommits makes the next len(errs) commits fail with errs in order.
func (s *MemoryStore) FailCommits(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErrs = append(s.commitErrs, errs...)
}

// Wallet returns a copy of the committed wallet, if any.
func (s *MemoryStore) Wallet(accountID string) (domain.Wallet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[accountID]
	if !ok {
		return domain.Wallet{}, false
	}
	return *w, true
}

// Transactions returns the committed transactions of an account in commit order.
func (s *MemoryStore) Transactions(accountID string) []*domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.Transaction(nil), s.txs[accountID]...)
}

// OutboxEvents returns every committed outbox event.
func (s *MemoryStore) OutboxEvents() []*domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), s.outbox...)
}

// Begun reports how many transactions were started.
func (s *MemoryStore) Begun() int64 {
	return s.begun.Load()
}

func (s *MemoryStore) rowLock(accountID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.rowLocks[accountID]
	if !ok {
		l = make(chan struct{}, 1)
		s.rowLocks[accountID] = l
	}
	return l
}

// MemoryTx buffers writes until Commit.
type MemoryTx struct {
	store  *MemoryStore
	mu     sync.Mutex
	writes []func()
	held   []chan struct{}
	done   bool
}

// ErrTxDone is returned when a finished MemoryTx is used again.
var ErrTxDone = errors.New("memory tx already finished")

func (t *MemoryTx) buffer(fn func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.writes = append(t.writes, fn)
	return nil
}

func (t *MemoryTx) lock(ctx context.Context, accountID string) error {
	l := t.store.rowLock(accountID)
	select {
	case l <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		<-l
		return ErrTxDone
	}
	t.held = append(t.held, l)
	return nil
}

func (t *MemoryTx) finish(apply bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.done = true

	defer func() {
		for _, l := range t.held {
			<-l
		}
		t.held = nil
	}()

	if !apply {
		return nil
	}

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.commitErrs) > 0 {
		err := s.commitErrs[0]
		s.commitErrs = s.commitErrs[1:]
		return err
	}

	for _, w := range t.writes {
		w()
	}
	return nil
}

// Commit applies buffered writes and releases row locks.
func (t *MemoryTx) Commit(ctx context.Context) error {
	return t.finish(true)
}

// Rollback discards buffered writes and releases row locks.
func (t *MemoryTx) Rollback(ctx context.Context) error {
	return t.finish(false)
}

func asMemoryTx(tx usecase.Transaction) (*MemoryTx, error) {
	mt, ok := tx.(*MemoryTx)
	if !ok {
		return nil, fmt.Errorf("unexpected transaction type %T", tx)
	}
	return mt, nil
}

// MemoryTxManager starts MemoryTx transactions.
type MemoryTxManager struct {
	Store *MemoryStore
}

// Begin starts a transaction.
func (m *MemoryTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.Store.begun.Add(1)
	return &MemoryTx{store: m.Store}, nil
}

// MemoryAccountRepository implements usecase.AccountRepository.
type MemoryAccountRepository struct {
	Store *MemoryStore
}

func (r *MemoryAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	mt, err := asMemoryTx(tx)
	if err != nil {
		return err
	}

	r.Store.mu.RLock()
	for _, a := range r.Store.accounts {
		if a.Email == account.Email {
			r.Store.mu.RUnlock()
			return domain.ErrEmailTaken
		}
	}
	r.Store.mu.RUnlock()

	cp := *account
	return mt.buffer(func() { r.Store.accounts[cp.ID] = &cp })
}

func (r *MemoryAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.Store.mu.RLock()
	defer r.Store.mu.RUnlock()
	a, ok := r.Store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.Store.mu.RLock()
	defer r.Store.mu.RUnlock()
	for _, a := range r.Store.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// MemoryWalletRepository implements usecase.WalletRepository.
type MemoryWalletRepository struct {
	Store *MemoryStore
}

func (r *MemoryWalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	mt, err := asMemoryTx(tx)
	if err != nil {
		return err
	}
	cp := *wallet
	return mt.buffer(func() {
		if _, ok := r.Store.wallets[cp.AccountID]; !ok {
			r.Store.wallets[cp.AccountID] = &cp
		}
	})
}

func (r *MemoryWalletRepository) GetOrCreateForUpdate(ctx context.Context, tx usecase.Transaction, accountID string, now time.Time) (*domain.Wallet, error) {
	mt, err := asMemoryTx(tx)
	if err != nil {
		return nil, err
	}

	if err := mt.lock(ctx, accountID); err != nil {
		return nil, err
	}

	r.Store.mu.RLock()
	w, ok := r.Store.wallets[accountID]
	var cp domain.Wallet
	if ok {
		cp = *w
	}
	r.Store.mu.RUnlock()

	if ok {
		return &cp, nil
	}

	created := domain.Wallet{AccountID: accountID, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}
	if err := mt.buffer(func() {
		if _, exists := r.Store.wallets[accountID]; !exists {
			c := created
			r.Store.wallets[accountID] = &c
		}
	}); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *MemoryWalletRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.Wallet, error) {
	r.Store.mu.RLock()
	defer r.Store.mu.RUnlock()
	w, ok := r.Store.wallets[accountID]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *MemoryWalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, accountID string, balance decimal.Decimal, updatedAt time.Time) error {
	mt, err := asMemoryTx(tx)
	if err != nil {
		return err
	}
	return mt.buffer(func() {
		w := r.Store.wallets[accountID]
		w.Balance = balance
		w.Version++
		w.UpdatedAt = updatedAt
	})
}

func (r *MemoryWalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	r.Store.mu.RLock()
	defer r.Store.mu.RUnlock()
	all := make([]*domain.Wallet, 0, len(r.Store.wallets))
	for _, w := range r.Store.wallets {
		cp := *w
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AccountID < all[j].AccountID })
	return page(all, limit, offset), nil
}

// MemoryTransactionRepository implements usecase.TransactionRepository.
type MemoryTransactionRepository struct {
	Store *MemoryStore
}

func (r *MemoryTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	mt, err := asMemoryTx(tx)
	if err != nil {
		return err
	}
	cp := *t
	return mt.buffer(func() {
		r.Store.txs[cp.AccountID] = append(r.Store.txs[cp.AccountID], &cp)
	})
}

// newestFirst returns copies of the account's transactions ordered by wallet version, descending.
func (r *MemoryTransactionRepository) newestFirst(accountID string) []*domain.Transaction {
	r.Store.mu.RLock()
	defer r.Store.mu.RUnlock()
	src := r.Store.txs[accountID]
	out := make([]*domain.Transaction, 0, len(src))
	for _, t := range src {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WalletVersion > out[j].WalletVersion })
	return out
}

func (r *MemoryTransactionRepository) ListRecent(ctx context.Context, accountID string, atVersion int64, limit int) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, t := range r.newestFirst(accountID) {
		if t.WalletVersion > atVersion {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *MemoryTransactionRepository) Query(ctx context.Context, q *domain.TransactionQuery) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, t := range r.newestFirst(q.AccountID) {
		if matchesAll(t, q.Conditions) {
			out = append(out, t)
		}
	}
	return page(out, q.Limit, q.Offset), nil
}

func (r *MemoryTransactionRepository) SumCompleted(ctx context.Context, accountID string, atVersion int64) (decimal.Decimal, error) {
	var in []*domain.Transaction
	for _, t := range r.newestFirst(accountID) {
		if t.WalletVersion <= atVersion {
			in = append(in, t)
		}
	}
	return domain.SumCompleted(in), nil
}

func matchesAll(t *domain.Transaction, conds []domain.TransactionCondition) bool {
	for _, c := range conds {
		switch v := c.(type) {
		case domain.KindIn:
			found := false
			for _, k := range v.Kinds {
				if t.Kind == k {
					found = true
				}
			}
			if !found {
				return false
			}
		case domain.StatusIs:
			if t.Status != v.Status {
				return false
			}
		case domain.CreatedFrom:
			if t.CreatedAt.Before(v.At) {
				return false
			}
		case domain.CreatedBefore:
			if !t.CreatedAt.Before(v.At) {
				return false
			}
		case domain.DescriptionContains:
			if !strings.Contains(strings.ToLower(t.Description), strings.ToLower(v.Text)) {
				return false
			}
		}
	}
	return true
}

// MemoryLedgerRepository implements usecase.LedgerRepository.
type MemoryLedgerRepository struct {
	Store *MemoryStore
}

func (r *MemoryLedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	r.Store.mu.RLock()
	defer r.Store.mu.RUnlock()
	balances := decimal.Zero
	for _, w := range r.Store.wallets {
		balances = balances.Add(w.Balance)
	}
	signed := decimal.Zero
	for _, txs := range r.Store.txs {
		signed = signed.Add(domain.SumCompleted(txs))
	}
	return balances, signed, nil
}

// MemoryOutboxRepository implements usecase.OutboxRepository.
type MemoryOutboxRepository struct {
	Store *MemoryStore
}

func (r *MemoryOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	mt, err := asMemoryTx(tx)
	if err != nil {
		return err
	}
	cp := *event
	return mt.buffer(func() { r.Store.outbox = append(r.Store.outbox, &cp) })
}

func (r *MemoryOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.Store.mu.RLock()
	defer r.Store.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range r.Store.outbox {
		if !e.Published {
			cp := *e
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	for _, e := range r.Store.outbox {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
			return nil
		}
	}
	return fmt.Errorf("outbox event %s not found", id)
}

func (r *MemoryOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	r.Store.mu.RLock()
	defer r.Store.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range r.Store.outbox {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return page(out, limit, offset), nil
}

func (r *MemoryOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	kept := r.Store.outbox[:0]
	for _, e := range r.Store.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.Store.outbox = kept
	return nil
}

// SequentialIDGenerator returns id-000001, id-000002, ...
type SequentialIDGenerator struct {
	n atomic.Int64
}

func (g *SequentialIDGenerator) Generate() string {
	return fmt.Sprintf("id-%06d", g.n.Add(1))
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
