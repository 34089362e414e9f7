package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/api-sage/atm-ledger/src/internal/adapter/repository/memory"
	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/usecase/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type ledgerFixture struct {
	store *memory.Store
	svc   *services.LedgerService
	next  int
}

func newLedgerFixture(t *testing.T, storeOpts []memory.Option, opts ...services.LedgerOption) *ledgerFixture {
	t.Helper()

	store := memory.NewStore(storeOpts...)
	f := &ledgerFixture{store: store}
	allocator := services.NewAccountNumberAllocator(8, func() (string, error) {
		f.next++
		return fmt.Sprintf("90000%05d", f.next), nil
	})
	f.svc = services.NewLedgerService(store, store, store, allocator, opts...)
	return f
}

// openAccount registers a fresh owner with one account holding balance.
func (f *ledgerFixture) openAccount(t *testing.T, number string, balance string) string {
	t.Helper()

	id := uuid.NewString()
	_, _, err := f.store.CreateWithAccount(context.Background(), domain.User{
		ID:             id,
		Username:       "user-" + number,
		Email:          number + "@example.com",
		Identification: number,
		PasswordHash:   "x",
	}, domain.Account{
		AccountNumber: number,
		Class:         domain.AccountClassCurrent,
		Balance:       decimal.Zero,
	})
	if err != nil {
		t.Fatalf("failed to seed account %s: %v", number, err)
	}

	amount := decimal.RequireFromString(balance)
	if amount.IsPositive() {
		if _, err := f.svc.Deposit(context.Background(), number, amount); err != nil {
			t.Fatalf("failed to fund account %s: %v", number, err)
		}
	}
	return number
}

func (f *ledgerFixture) balance(t *testing.T, number string) decimal.Decimal {
	t.Helper()

	account, err := f.svc.GetAccount(context.Background(), number)
	if err != nil {
		t.Fatalf("failed to load account %s: %v", number, err)
	}
	return account.Balance
}

func (f *ledgerFixture) history(t *testing.T, number string) []domain.Transaction {
	t.Helper()

	entries, err := f.svc.ListRecentTransactions(context.Background(), number, 100)
	if err != nil {
		t.Fatalf("failed to list transactions for %s: %v", number, err)
	}
	return entries
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func expectBalance(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("expected balance %s, got %s", want, got.String())
	}
}

func TestLedgerServiceAtmScenario(t *testing.T) {
	f := newLedgerFixture(t, nil, services.WithMirrorTransferCredits(false))
	ctx := context.Background()
	a := f.openAccount(t, "1000000001", "100.00")
	b := f.openAccount(t, "1000000002", "0")

	receipt, err := f.svc.Deposit(ctx, a, dec("50.00"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	expectBalance(t, receipt.Balance, "150.00")
	if receipt.Transaction.Kind != domain.TransactionKindDeposit {
		t.Fatalf("expected DEPOSIT record, got %s", receipt.Transaction.Kind)
	}

	_, err = f.svc.Withdraw(ctx, a, dec("200.00"))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	expectBalance(t, f.balance(t, a), "150.00")

	transfer, err := f.svc.Transfer(ctx, a, b, dec("150.00"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	expectBalance(t, f.balance(t, a), "0")
	expectBalance(t, f.balance(t, b), "150.00")
	if transfer.Credit != nil {
		t.Fatal("expected no mirrored credit when disabled")
	}

	history := f.history(t, a)
	if len(history) != 3 {
		t.Fatalf("expected 3 records on source, got %d", len(history))
	}
	latest := history[0]
	if latest.Kind != domain.TransactionKindTransfer || latest.Direction != domain.EntryDebit {
		t.Fatalf("expected TRANSFER debit as latest record, got %s %s", latest.Kind, latest.Direction)
	}
	if latest.CounterpartyAccount == nil || *latest.CounterpartyAccount != b {
		t.Fatalf("expected transfer to reference %s, got %v", b, latest.CounterpartyAccount)
	}
	if latest.Description == nil || *latest.Description != "Transfer to account "+b {
		t.Fatalf("unexpected transfer description %v", latest.Description)
	}
	if got := f.history(t, b); len(got) != 0 {
		t.Fatalf("expected destination without records, got %d", len(got))
	}
}

func TestLedgerServiceDepositWithdrawRoundTrip(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	a := f.openAccount(t, "1000000001", "0")

	for _, amount := range []string{"0.01", "12.34", "9999.99"} {
		before := f.balance(t, a)
		count := len(f.history(t, a))

		if _, err := f.svc.Deposit(ctx, a, dec(amount)); err != nil {
			t.Fatalf("deposit %s: %v", amount, err)
		}
		if _, err := f.svc.Withdraw(ctx, a, dec(amount)); err != nil {
			t.Fatalf("withdraw %s: %v", amount, err)
		}

		if !f.balance(t, a).Equal(before) {
			t.Fatalf("expected balance %s after round trip, got %s", before, f.balance(t, a))
		}
		if got := len(f.history(t, a)) - count; got != 2 {
			t.Fatalf("expected 2 new records, got %d", got)
		}
	}
}

func TestLedgerServiceTransferConservesTotal(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	a := f.openAccount(t, "1000000001", "80.50")
	b := f.openAccount(t, "1000000002", "19.50")

	receipt, err := f.svc.Transfer(ctx, a, b, dec("30.25"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	expectBalance(t, receipt.SourceBalance, "50.25")
	expectBalance(t, receipt.DestinationBalance, "49.75")
	total := f.balance(t, a).Add(f.balance(t, b))
	expectBalance(t, total, "100.00")

	if receipt.Credit == nil {
		t.Fatal("expected mirrored credit record by default")
	}
	if receipt.Credit.AccountNumber != b || receipt.Credit.Direction != domain.EntryCredit {
		t.Fatalf("unexpected credit record %+v", *receipt.Credit)
	}
	if receipt.Credit.CounterpartyAccount == nil || *receipt.Credit.CounterpartyAccount != a {
		t.Fatalf("expected credit to reference source %s", a)
	}
	if got := f.history(t, b)[0]; got.ID != receipt.Credit.ID {
		t.Fatalf("expected mirrored credit as latest destination record, got %s", got.ID)
	}
}

func TestLedgerServiceTransferRejectsSameAccount(t *testing.T) {
	f := newLedgerFixture(t, nil)
	a := f.openAccount(t, "1000000001", "10")

	for _, amount := range []string{"5", "0", "-1", "0.001", "1000"} {
		_, err := f.svc.Transfer(context.Background(), a, a, dec(amount))
		if !errors.Is(err, domain.ErrInvalidDestination) {
			t.Fatalf("amount %s: expected invalid destination, got %v", amount, err)
		}
	}
	// Also for accounts that do not exist.
	if _, err := f.svc.Transfer(context.Background(), "5555555555", "5555555555", dec("1")); !errors.Is(err, domain.ErrInvalidDestination) {
		t.Fatalf("expected invalid destination, got %v", err)
	}
	expectBalance(t, f.balance(t, a), "10")
}

func TestLedgerServiceRejectsInvalidAmounts(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	a := f.openAccount(t, "1000000001", "10")
	b := f.openAccount(t, "1000000002", "0")

	for _, amount := range []string{"0", "-5", "1.005", "10000000000.00"} {
		if _, err := f.svc.Deposit(ctx, a, dec(amount)); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("deposit %s: expected invalid amount, got %v", amount, err)
		}
		if _, err := f.svc.Withdraw(ctx, a, dec(amount)); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("withdraw %s: expected invalid amount, got %v", amount, err)
		}
		if _, err := f.svc.Transfer(ctx, a, b, dec(amount)); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("transfer %s: expected invalid amount, got %v", amount, err)
		}
	}

	// Invalid amounts are reported before missing accounts.
	if _, err := f.svc.Deposit(ctx, "5555555555", dec("0")); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	expectBalance(t, f.balance(t, a), "10")
}

func TestLedgerServiceDepositCannotExceedStoragePrecision(t *testing.T) {
	f := newLedgerFixture(t, nil)
	a := f.openAccount(t, "1000000001", "9999999999.00")

	_, err := f.svc.Deposit(context.Background(), a, dec("1.00"))
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	expectBalance(t, f.balance(t, a), "9999999999.00")
}

func TestLedgerServiceMissingAccounts(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	a := f.openAccount(t, "1000000001", "10")
	missing := "5555555555"

	if _, err := f.svc.Deposit(ctx, missing, dec("1")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deposit: expected not found, got %v", err)
	}
	if _, err := f.svc.Withdraw(ctx, missing, dec("1")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("withdraw: expected not found, got %v", err)
	}
	if _, err := f.svc.Transfer(ctx, a, missing, dec("1")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("transfer to missing: expected not found, got %v", err)
	}
	if _, err := f.svc.Transfer(ctx, missing, a, dec("1")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("transfer from missing: expected not found, got %v", err)
	}
	if _, err := f.svc.ListRecentTransactions(ctx, missing, 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("list: expected not found, got %v", err)
	}
	expectBalance(t, f.balance(t, a), "10")
}

func TestLedgerServiceTransferInsufficientFundsLeavesBothUnchanged(t *testing.T) {
	f := newLedgerFixture(t, nil)
	a := f.openAccount(t, "1000000001", "10.00")
	b := f.openAccount(t, "1000000002", "5.00")

	_, err := f.svc.Transfer(context.Background(), a, b, dec("10.01"))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	expectBalance(t, f.balance(t, a), "10.00")
	expectBalance(t, f.balance(t, b), "5.00")
	if got := len(f.history(t, b)); got != 1 {
		t.Fatalf("expected only the funding deposit on destination, got %d records", got)
	}
}

func TestLedgerServicePayBill(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	a := f.openAccount(t, "1000000001", "60")

	receipt, err := f.svc.PayBill(ctx, a, domain.BillPayment{
		ServiceType: domain.ServiceTypeWater,
		BillNumber:  " W-778 ",
		Amount:      dec("45.10"),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	expectBalance(t, receipt.Balance, "14.90")
	if receipt.Transaction.Kind != domain.TransactionKindBillPayment || receipt.Transaction.Direction != domain.EntryDebit {
		t.Fatalf("unexpected bill record %s %s", receipt.Transaction.Kind, receipt.Transaction.Direction)
	}
	if receipt.Transaction.Description == nil || *receipt.Transaction.Description != "WATER bill W-778" {
		t.Fatalf("unexpected bill description %v", receipt.Transaction.Description)
	}

	_, err = f.svc.PayBill(ctx, a, domain.BillPayment{ServiceType: domain.ServiceTypeElectricity, BillNumber: "E-1", Amount: dec("20")})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	_, err = f.svc.PayBill(ctx, a, domain.BillPayment{ServiceType: "GAS", BillNumber: "G-1", Amount: dec("1")})
	if !errors.Is(err, domain.ErrInvalidBill) {
		t.Fatalf("expected invalid bill, got %v", err)
	}
}

func TestLedgerServiceListRecentTransactionsOrdering(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newLedgerFixture(t, []memory.Option{memory.WithClock(func() time.Time { return fixed })})
	ctx := context.Background()
	a := f.openAccount(t, "1000000001", "0")

	for _, amount := range []string{"1", "2", "3", "4"} {
		if _, err := f.svc.Deposit(ctx, a, dec(amount)); err != nil {
			t.Fatalf("deposit %s: %v", amount, err)
		}
	}

	entries, err := f.svc.ListRecentTransactions(ctx, a, 3)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"4", "3", "2"} {
		if !entries[i].Amount.Equal(dec(want)) {
			t.Fatalf("entry %d: expected amount %s, got %s", i, want, entries[i].Amount)
		}
	}

	empty, err := f.svc.ListRecentTransactions(ctx, a, 0)
	if err != nil {
		t.Fatalf("expected nil error for zero limit, got %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no entries for zero limit, got %d", len(empty))
	}
}

func TestLedgerServiceConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	const n = 10
	f := newLedgerFixture(t, nil)
	a := f.openAccount(t, "1000000001", "100.00")
	amount := dec("100.00").Div(decimal.NewFromInt(n)).Add(decimal.NewFromInt(1))

	var succeeded, rejected atomic.Int32
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := f.svc.Withdraw(context.Background(), a, amount)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrInsufficientFunds):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected withdrawal error: %v", err)
	}

	if succeeded.Load() > n-1 {
		t.Fatalf("expected at most %d successful withdrawals, got %d", n-1, succeeded.Load())
	}
	balance := f.balance(t, a)
	if balance.IsNegative() {
		t.Fatalf("balance went negative: %s", balance)
	}
	want := dec("100.00").Sub(amount.Mul(decimal.NewFromInt(int64(succeeded.Load()))))
	if !balance.Equal(want) {
		t.Fatalf("expected balance %s, got %s", want, balance)
	}
	if got := len(f.history(t, a)); got != 1+int(succeeded.Load()) {
		t.Fatalf("expected %d records, got %d", 1+succeeded.Load(), got)
	}
}

func TestLedgerServiceOppositeTransfersDoNotDeadlock(t *testing.T) {
	const rounds = 50
	f := newLedgerFixture(t, nil)
	a := f.openAccount(t, "1000000001", "500.00")
	b := f.openAccount(t, "1000000002", "500.00")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < rounds; i++ {
		g.Go(func() error {
			_, err := f.svc.Transfer(gctx, a, b, dec("3.00"))
			return err
		})
		g.Go(func() error {
			_, err := f.svc.Transfer(gctx, b, a, dec("2.00"))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected transfer error: %v", err)
	}

	expectBalance(t, f.balance(t, a), "450.00")
	expectBalance(t, f.balance(t, b), "550.00")
}

func TestLedgerServiceOpenAccount(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	owner := f.openAccount(t, "1000000001", "0")
	existing, err := f.svc.GetAccount(ctx, owner)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	account, err := f.svc.OpenAccount(ctx, existing.OwnerID, domain.AccountClassSavings)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if account.AccountNumber != "9000000001" || account.Class != domain.AccountClassSavings || !account.Balance.IsZero() {
		t.Fatalf("unexpected account %+v", account)
	}

	accounts, err := f.svc.ListAccounts(ctx, existing.OwnerID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}

	if _, err := f.svc.OpenAccount(ctx, existing.OwnerID, "CHECKING"); !errors.Is(err, domain.ErrInvalidAccountClass) {
		t.Fatalf("expected invalid account class, got %v", err)
	}
	if _, err := f.svc.OpenAccount(ctx, "no-such-user", domain.AccountClassCurrent); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found owner, got %v", err)
	}
}

func TestLedgerServiceStorageErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	svc := services.NewLedgerService(
		ledgerStoreStub{runInTxFn: func(context.Context, []string, func(context.Context, domain.LedgerTx) error) error {
			return boom
		}},
		nil,
		nil,
		nil,
	)

	_, err := svc.Deposit(context.Background(), "1000000001", dec("1"))
	if !errors.Is(err, domain.ErrStorageFailure) || !errors.Is(err, boom) {
		t.Fatalf("expected storage failure wrapping cause, got %v", err)
	}

	conflict := services.NewLedgerService(
		ledgerStoreStub{runInTxFn: func(context.Context, []string, func(context.Context, domain.LedgerTx) error) error {
			return domain.ErrBalanceConflict
		}},
		nil,
		nil,
		nil,
	)
	_, err = conflict.Withdraw(context.Background(), "1000000001", dec("1"))
	if !errors.Is(err, domain.ErrStorageFailure) || !errors.Is(err, domain.ErrBalanceConflict) {
		t.Fatalf("expected storage failure wrapping balance conflict, got %v", err)
	}
}

type ledgerStoreStub struct {
	runInTxFn func(ctx context.Context, accountNumbers []string, fn func(ctx context.Context, tx domain.LedgerTx) error) error
}

func (s ledgerStoreStub) RunInTx(ctx context.Context, accountNumbers []string, fn func(ctx context.Context, tx domain.LedgerTx) error) error {
	return s.runInTxFn(ctx, accountNumbers, fn)
}
