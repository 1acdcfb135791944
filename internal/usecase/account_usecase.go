package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/infrastructure/metrics"
)

// AccountUseCase handles signup and login.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	walletRepo  WalletRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
	hashCost    int
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	walletRepo WalletRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     m,
		hashCost:    PasswordHashCost,
	}
}

// WithPasswordCost overrides the bcrypt cost.
func (uc *AccountUseCase) WithPasswordCost(cost int) *AccountUseCase {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		uc.hashCost = cost
	}

	return uc
}

// SignupInput represents input for creating an account.
type SignupInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Signup creates an account and its empty wallet atomically.
func (uc *AccountUseCase) Signup(ctx context.Context, input SignupInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if err := domain.ValidateAccountName(name); err != nil {
		return nil, err
	}

	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	phone := strings.TrimSpace(input.Phone)
	if err := domain.ValidatePhone(phone); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(input.Email)

	existing, err := uc.accountRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrEmailTaken
	case err != nil && !errors.Is(err, domain.ErrAccountNotFound):
		return nil, domain.Persistence("lookup email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), uc.hashCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		Name:           name,
		Email:          email,
		Phone:          phone,
		HashedPassword: string(hashed),
		Role:           domain.RoleUser,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, domain.Persistence("begin", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// The unique index on email still rejects a racing signup here.
	if err := uc.accountRepo.CreateTx(txCtx, tx, account); err != nil {
		return nil, domain.Persistence("insert account", err)
	}

	wallet := &domain.Wallet{
		AccountID: account.ID,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.walletRepo.CreateTx(txCtx, tx, wallet); err != nil {
		return nil, domain.Persistence("insert wallet", err)
	}

	if err := uc.outboxRepo.Create(txCtx, tx, domain.NewAccountCreatedEvent(uc.idGen.Generate(), account)); err != nil {
		return nil, domain.Persistence("append outbox", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.Persistence("commit", err)
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	account.HashedPassword = ""
	return account, nil
}

// AuthenticateInput represents authentication input
type AuthenticateInput struct {
	Email    string
	Password string
}

// Authenticate verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (uc *AccountUseCase) Authenticate(ctx context.Context, input AuthenticateInput) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByEmail(ctx, domain.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			uc.observeAuth("unknown_email")
			return nil, domain.ErrInvalidCredentials
		}

		return nil, domain.Persistence("lookup email", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.HashedPassword), []byte(input.Password)); err != nil {
		uc.observeAuth("bad_password")
		return nil, domain.ErrInvalidCredentials
	}

	uc.observeAuth("success")

	account.HashedPassword = ""
	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("load account", err)
	}

	account.HashedPassword = ""
	return account, nil
}

func (uc *AccountUseCase) observeAuth(status string) {
	if uc.metrics != nil {
		uc.metrics.AuthAttempts.WithLabelValues(status).Inc()
	}
}
