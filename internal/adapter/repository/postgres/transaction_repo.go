package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/infrastructure/postgres/generated"
	"github.com/dooonda/ledger/internal/usecase"
)

const transactionColumns = "id, account_id, type, amount, description, status, balance_before, balance_after, wallet_version, created_at"

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Create appends a transaction inside tx.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(pgxTx).CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:            t.ID,
		AccountID:     t.AccountID,
		Type:          string(t.Kind),
		Amount:        decimalToNumeric(t.Amount),
		Description:   t.Description,
		Status:        string(t.Status),
		BalanceBefore: decimalToNumeric(t.BalanceBefore),
		BalanceAfter:  decimalToNumeric(t.BalanceAfter),
		WalletVersion: t.WalletVersion,
		CreatedAt:     timeToPgTimestamptz(t.CreatedAt),
	})
}

// ListRecent returns up to limit transactions of accountID produced at or
// before wallet version atVersion, newest first.
func (r *TransactionRepository) ListRecent(ctx context.Context, accountID string, atVersion int64, limit int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListRecentTransactions(ctx, generated.ListRecentTransactionsParams{
		AccountID:     accountID,
		WalletVersion: atVersion,
		Limit:         int32(limit),
	})
	if err != nil {
		return nil, err
	}

	txs := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, rowToTransaction(row))
	}

	return txs, nil
}

// SumCompleted returns the signed sum of completed transactions up to atVersion.
func (r *TransactionRepository) SumCompleted(ctx context.Context, accountID string, atVersion int64) (decimal.Decimal, error) {
	total, err := r.queries.SumCompletedTransactions(ctx, generated.SumCompletedTransactionsParams{
		AccountID:     accountID,
		WalletVersion: atVersion,
	})
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// Query runs a filtered, paginated transaction query.
func (r *TransactionRepository) Query(ctx context.Context, q *domain.TransactionQuery) ([]*domain.Transaction, error) {
	sql, args, err := buildTransactionQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, scanTransaction)
}

// buildTransactionQuery renders q as a parameterized SELECT. Condition values
// only ever travel as bind arguments.
func buildTransactionQuery(q *domain.TransactionQuery) (string, []any, error) {
	var (
		where []string
		args  []any
	)

	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	where = append(where, "account_id = "+bind(q.AccountID))

	for _, c := range q.Conditions {
		switch v := c.(type) {
		case domain.KindIn:
			kinds := make([]string, 0, len(v.Kinds))
			for _, k := range v.Kinds {
				kinds = append(kinds, string(k))
			}
			where = append(where, "type = ANY("+bind(kinds)+")")
		case domain.StatusIs:
			where = append(where, "status = "+bind(string(v.Status)))
		case domain.CreatedFrom:
			where = append(where, "created_at >= "+bind(timeToPgTimestamptz(v.At)))
		case domain.CreatedBefore:
			where = append(where, "created_at < "+bind(timeToPgTimestamptz(v.At)))
		case domain.DescriptionContains:
			where = append(where, "description ILIKE "+bind("%"+escapeLike(v.Text)+"%")+` ESCAPE '\'`)
		default:
			return "", nil, fmt.Errorf("%w: unsupported condition %T", domain.ErrInvalidFilter, c)
		}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(transactionColumns)
	b.WriteString(" FROM transactions WHERE ")
	b.WriteString(strings.Join(where, " AND "))
	b.WriteString(" ORDER BY wallet_version DESC, id DESC")
	b.WriteString(" LIMIT " + bind(int32(q.Limit)))
	b.WriteString(" OFFSET " + bind(int32(q.Offset)))

	return b.String(), args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanTransaction(row pgx.CollectableRow) (*domain.Transaction, error) {
	var t generated.Transaction

	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Type,
		&t.Amount,
		&t.Description,
		&t.Status,
		&t.BalanceBefore,
		&t.BalanceAfter,
		&t.WalletVersion,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return rowToTransaction(t), nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:            row.ID,
		AccountID:     row.AccountID,
		Kind:          domain.TransactionKind(row.Type),
		Status:        domain.TransactionStatus(row.Status),
		Description:   row.Description,
		Amount:        numericToDecimal(row.Amount),
		BalanceBefore: numericToDecimal(row.BalanceBefore),
		BalanceAfter:  numericToDecimal(row.BalanceAfter),
		WalletVersion: row.WalletVersion,
		CreatedAt:     row.CreatedAt.Time,
	}
}
