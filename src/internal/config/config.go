package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=atm_ledger_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultHTTPAddr = ":8080"
const defaultRecentTransactionsLimit = 3
const defaultAccountNumberMaxAttempts = 8

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	DatabaseDSN              string
	MigrationsDir            string
	StorageDriver            string
	HTTPAddr                 string
	LogLevel                 string
	RecentTransactionsLimit  int
	AccountNumberMaxAttempts int
	MirrorTransferCredits    bool
}

func Load() (Config, error) {
	conn := envOrDefault("DATABASE_DSN", defaultConnectionString)

	driver := strings.ToLower(envOrDefault("STORAGE_DRIVER", StorageDriverPostgres))
	if driver != StorageDriverPostgres && driver != StorageDriverMemory {
		return Config{}, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverPostgres, StorageDriverMemory, driver)
	}

	recentLimit, err := positiveInt("RECENT_TRANSACTIONS_LIMIT", defaultRecentTransactionsLimit)
	if err != nil {
		return Config{}, err
	}

	maxAttempts, err := positiveInt("ACCOUNT_NUMBER_MAX_ATTEMPTS", defaultAccountNumberMaxAttempts)
	if err != nil {
		return Config{}, err
	}

	mirror := true
	if raw := strings.TrimSpace(os.Getenv("LEDGER_MIRROR_TRANSFER_CREDITS")); raw != "" {
		mirror, err = strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("LEDGER_MIRROR_TRANSFER_CREDITS must be a boolean: %w", err)
		}
	}

	return Config{
		DatabaseDSN:              normalizeConnectionString(conn),
		MigrationsDir:            envOrDefault("MIGRATIONS_DIR", filepath.Join("src", "migrations")),
		StorageDriver:            driver,
		HTTPAddr:                 envOrDefault("HTTP_ADDR", defaultHTTPAddr),
		LogLevel:                 envOrDefault("LOG_LEVEL", "info"),
		RecentTransactionsLimit:  recentLimit,
		AccountNumberMaxAttempts: maxAttempts,
		MirrorTransferCredits:    mirror,
	}, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func positiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero", key)
	}
	return value, nil
}

// normalizeConnectionString accepts either a lib/pq key=value DSN or the
// "Host=..;Port=..;Database=.." form and returns the lib/pq form.
func normalizeConnectionString(raw string) string {
	if !strings.Contains(raw, ";") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
