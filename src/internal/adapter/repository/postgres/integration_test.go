package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/api-sage/atm-ledger/src/internal/adapter/repository/postgres"
	"github.com/api-sage/atm-ledger/src/internal/config"
	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/usecase/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// openTestDB connects to DATABASE_DSN. Integration tests are opt-in: set
// DB_DSN_TEST=1 to run them against a disposable database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := postgres.RunMigrations(ctx, db, filepath.Join("..", "..", "..", "..", "migrations")); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := db.ExecContext(ctx, `TRUNCATE users CASCADE`); err != nil {
		t.Fatalf("reset tables: %v", err)
	}
	return db
}

type pgFixture struct {
	users  *postgres.UserRepository
	ledger *services.LedgerService
}

func newPGFixture(t *testing.T, db *sql.DB) *pgFixture {
	t.Helper()
	accounts := postgres.NewAccountRepository(db)
	allocator := services.NewAccountNumberAllocator(8, services.GenerateAccountNumber)
	return &pgFixture{
		users: postgres.NewUserRepository(db),
		ledger: services.NewLedgerService(
			postgres.NewLedgerStore(db),
			accounts,
			postgres.NewTransactionRepository(db),
			allocator,
		),
	}
}

func (f *pgFixture) register(t *testing.T, number string) {
	t.Helper()
	_, _, err := f.users.CreateWithAccount(context.Background(), domain.User{
		ID:             uuid.NewString(),
		Username:       "user" + number,
		Email:          number + "@example.com",
		Identification: number,
		PasswordHash:   "x",
	}, domain.Account{
		AccountNumber: number,
		Class:         domain.AccountClassCurrent,
		Balance:       decimal.Zero,
	})
	if err != nil {
		t.Fatalf("register %s: %v", number, err)
	}
}

func TestPostgresLedgerFlow(t *testing.T) {
	db := openTestDB(t)
	f := newPGFixture(t, db)
	ctx := context.Background()
	f.register(t, "1000000001")
	f.register(t, "1000000002")

	if _, err := f.ledger.Deposit(ctx, "1000000001", decimal.RequireFromString("150.00")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := f.ledger.Withdraw(ctx, "1000000001", decimal.RequireFromString("200.00")); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	receipt, err := f.ledger.Transfer(ctx, "1000000001", "1000000002", decimal.RequireFromString("150.00"))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !receipt.SourceBalance.IsZero() || !receipt.DestinationBalance.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("unexpected balances %s %s", receipt.SourceBalance, receipt.DestinationBalance)
	}

	entries, err := f.ledger.ListRecentTransactions(ctx, "1000000001", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Kind != domain.TransactionKindTransfer {
		t.Fatalf("expected transfer as latest of 2 entries, got %+v", entries)
	}
	if entries[0].CounterpartyAccount == nil || *entries[0].CounterpartyAccount != "1000000002" {
		t.Fatalf("expected destination reference, got %v", entries[0].CounterpartyAccount)
	}

	if _, err := f.ledger.Deposit(ctx, "5555555555", decimal.RequireFromString("1")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgresConcurrentWithdrawals(t *testing.T) {
	const n = 10
	db := openTestDB(t)
	f := newPGFixture(t, db)
	ctx := context.Background()
	f.register(t, "1000000001")
	if _, err := f.ledger.Deposit(ctx, "1000000001", decimal.RequireFromString("100.00")); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	var succeeded atomic.Int32
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := f.ledger.Withdraw(ctx, "1000000001", decimal.RequireFromString("11.00"))
			if err == nil {
				succeeded.Add(1)
				return nil
			}
			if errors.Is(err, domain.ErrInsufficientFunds) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, err := f.ledger.GetAccount(ctx, "1000000001")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if succeeded.Load() != 9 || !account.Balance.Equal(decimal.RequireFromString("1.00")) {
		t.Fatalf("expected 9 withdrawals leaving 1.00, got %d leaving %s", succeeded.Load(), account.Balance)
	}
}

func TestPostgresDuplicateRegistration(t *testing.T) {
	db := openTestDB(t)
	f := newPGFixture(t, db)
	f.register(t, "1000000001")

	_, _, err := f.users.CreateWithAccount(context.Background(), domain.User{
		ID:             uuid.NewString(),
		Username:       "user1000000001",
		Email:          "other@example.com",
		Identification: "2222222222",
		PasswordHash:   "x",
	}, domain.Account{AccountNumber: "1000000003", Class: domain.AccountClassSavings})
	if !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected duplicate user, got %v", err)
	}
}
