package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/infrastructure/postgres"
	"github.com/dooonda/ledger/internal/infrastructure/postgres/generated"
)

// DatabaseURLEnv names the variable that enables database-backed tests.
const DatabaseURLEnv = "TEST_DATABASE_URL"

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB migrates and connects to TEST_DATABASE_URL. The test is skipped
// when the variable is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv(DatabaseURLEnv)
	if dbURL == "" {
		t.Skipf("%s not set", DatabaseURLEnv)
	}

	if err := postgres.NewMigrator(dbURL, migrationsPath(t), zerolog.Nop()).Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    dbURL,
		MaxConns:       50,
		MinConns:       1,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	t.Cleanup(db.Cleanup)

	return db
}

// migrationsPath walks up from the working directory to the repo's migrations.
func migrationsPath(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("migrations directory not found")
		}
		dir = parent
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `TRUNCATE TABLE outbox_events, transactions, wallets, accounts CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestAccount inserts an account without a wallet row.
func (db *TestDB) CreateTestAccount(ctx context.Context, name string, role domain.Role) *domain.Account {
	db.t.Helper()

	now := time.Now().UTC()
	id := GenerateID()
	ts := pgtype.Timestamptz{Time: now, Valid: true}

	_, err := db.Queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:             id,
		Name:           name,
		Email:          id + "@dooonda.test",
		HashedPassword: "not-a-real-hash",
		Role:           string(role),
		CreatedAt:      ts,
		UpdatedAt:      ts,
	})
	if err != nil {
		db.t.Fatalf("failed to create test account: %v", err)
	}

	return &domain.Account{
		ID:        id,
		Name:      name,
		Email:     id + "@dooonda.test",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetWalletBalance overwrites a wallet balance, bypassing the ledger. It is
// used to simulate drift for reconciliation tests.
func (db *TestDB) SetWalletBalance(ctx context.Context, accountID string, balance decimal.Decimal) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `UPDATE wallets SET balance = $2 WHERE account_id = $1`, accountID, balance.String())
	if err != nil {
		db.t.Fatalf("failed to set wallet balance: %v", err)
	}
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
