package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/atm-ledger/src/internal/adapter/http/controller"
	"github.com/api-sage/atm-ledger/src/internal/adapter/http/middleware"
	"github.com/api-sage/atm-ledger/src/internal/adapter/http/router"
	"github.com/api-sage/atm-ledger/src/internal/adapter/repository/memory"
	"github.com/api-sage/atm-ledger/src/internal/adapter/repository/postgres"
	"github.com/api-sage/atm-ledger/src/internal/config"
	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/logger"
	"github.com/api-sage/atm-ledger/src/internal/usecase/services"
)

type storage struct {
	ledger       domain.LedgerStore
	accounts     domain.AccountRepository
	transactions domain.TransactionRepository
	users        domain.UserRepository
	close        func() error
}

func main() {
	if err := run(); err != nil {
		logger.Error("server stopped", err, nil)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Configure(cfg.LogLevel); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.Error("close storage failed", err, nil)
		}
	}()

	allocator := services.NewAccountNumberAllocator(cfg.AccountNumberMaxAttempts, services.GenerateAccountNumber)
	ledgerService := services.NewLedgerService(
		store.ledger,
		store.accounts,
		store.transactions,
		allocator,
		services.WithMirrorTransferCredits(cfg.MirrorTransferCredits),
	)
	userService := services.NewUserService(store.users, store.accounts, allocator)
	bankingService := services.NewBankingService(ledgerService, cfg.RecentTransactionsLimit)

	mux := router.New(
		controller.NewUserController(userService),
		controller.NewAccountController(bankingService, cfg.RecentTransactionsLimit),
		controller.NewTransactionController(bankingService),
		middleware.BasicAuth(userService),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", logger.Fields{
			"addr":          cfg.HTTPAddr,
			"storageDriver": cfg.StorageDriver,
		})
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("http server shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStorage(ctx context.Context, cfg config.Config) (storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		store := memory.NewStore()
		return storage{
			ledger:       store,
			accounts:     store,
			transactions: store,
			users:        store,
			close:        func() error { return nil },
		}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := postgres.Open(connectCtx, cfg.DatabaseDSN)
	if err != nil {
		return storage{}, err
	}
	if err := postgres.RunMigrations(connectCtx, db, cfg.MigrationsDir); err != nil {
		_ = db.Close()
		return storage{}, err
	}
	logger.Info("migrations completed successfully", logger.Fields{"dir": cfg.MigrationsDir})

	return storage{
		ledger:       postgres.NewLedgerStore(db),
		accounts:     postgres.NewAccountRepository(db),
		transactions: postgres.NewTransactionRepository(db),
		users:        postgres.NewUserRepository(db),
		close:        db.Close,
	}, nil
}
