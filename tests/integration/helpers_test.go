package integration

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dooonda/ledger/internal/adapter/repository/postgres"
	"github.com/dooonda/ledger/internal/infrastructure/metrics"
	"github.com/dooonda/ledger/internal/usecase"
	"github.com/dooonda/ledger/tests/testutil"
)

type stack struct {
	accounts       *postgres.AccountRepository
	wallets        *postgres.WalletRepository
	transactions   *postgres.TransactionRepository
	outbox         *postgres.OutboxRepository
	ledger         *usecase.LedgerUseCase
	signup         *usecase.AccountUseCase
	reconciliation *usecase.ReconciliationUseCase
	metrics        *metrics.Metrics
}

func newStack(db *testutil.TestDB) *stack {
	pool := db.Pool
	m := metrics.New(prometheus.NewRegistry())

	s := &stack{
		accounts:     postgres.NewAccountRepository(pool),
		wallets:      postgres.NewWalletRepository(pool),
		transactions: postgres.NewTransactionRepository(pool),
		outbox:       postgres.NewOutboxRepository(pool),
		metrics:      m,
	}

	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()

	s.ledger = usecase.NewLedgerUseCase(
		txManager, s.accounts, s.wallets, s.transactions, s.outbox,
		postgres.NewRetrier(5, zerolog.Nop()), idGen, m,
	)
	s.signup = usecase.NewAccountUseCase(txManager, s.accounts, s.wallets, s.outbox, idGen, m)
	s.reconciliation = usecase.NewReconciliationUseCase(
		s.accounts, s.wallets, s.transactions, postgres.NewLedgerRepository(pool), m,
	)

	return s
}
