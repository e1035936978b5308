package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// LedgerEntry is one recorded balance movement.
type LedgerEntry struct {
	Kind    string // "spend" or "refund"
	Amount  int
	Balance int64
	At      time.Time
}

type LedgerRepo struct {
	db *DB
}

func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// LoadBalance returns the stored balance of wallet, creating the row with
// start if it does not exist yet.
func (r *LedgerRepo) LoadBalance(ctx context.Context, wallet string, start int64) (int64, error) {
	var balance int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT balance FROM wallets WHERE name = $1`, wallet,
	).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("load balance %s: %w", wallet, err)
	}
	if _, err := r.db.Pool.Exec(ctx,
		`INSERT INTO wallets (name, balance) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		wallet, start,
	); err != nil {
		return 0, fmt.Errorf("create wallet %s: %w", wallet, err)
	}
	return start, nil
}

// WriteEntries atomically appends a batch of ledger entries and stores the
// resulting balance in a single transaction.
func (r *LedgerRepo) WriteEntries(ctx context.Context, wallet string, entries []LedgerEntry, balance int64) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ledger begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO build_ledger (wallet, kind, amount, balance, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			wallet, e.Kind, e.Amount, e.Balance, e.At,
		); err != nil {
			return fmt.Errorf("ledger insert: %w", err)
		}
	}
	if err := saveBalance(ctx, tx, wallet, balance); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SaveBalance stores balance without ledger entries (shutdown, resets).
func (r *LedgerRepo) SaveBalance(ctx context.Context, wallet string, balance int64) error {
	return saveBalance(ctx, r.db.Pool, wallet, balance)
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func saveBalance(ctx context.Context, db execer, wallet string, balance int64) error {
	if _, err := db.Exec(ctx,
		`INSERT INTO wallets (name, balance, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET balance = EXCLUDED.balance, updated_at = now()`,
		wallet, balance,
	); err != nil {
		return fmt.Errorf("save balance %s: %w", wallet, err)
	}
	return nil
}
