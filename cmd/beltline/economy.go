package main

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sugarsyndicate/beltline/internal/config"
	"github.com/sugarsyndicate/beltline/internal/economy"
	"github.com/sugarsyndicate/beltline/internal/persist"
	"github.com/sugarsyndicate/beltline/internal/system"
)

// economyBackend is the wallet chosen by economy.backend plus whatever it
// needs closed on exit.
type economyBackend struct {
	wallet      economy.Wallet
	persistence *system.PersistenceSystem
	closers     []func()
}

func (b *economyBackend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openEconomy(ctx context.Context, cfg *config.Config, log *zap.Logger) (*economyBackend, error) {
	ec := cfg.Economy
	switch ec.Backend {
	case "postgres":
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		if err := persist.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		repo := persist.NewLedgerRepo(db)
		balance, err := repo.LoadBalance(ctx, ec.Wallet, ec.StartingBalance)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("load balance: %w", err)
		}
		journal := economy.NewJournal(economy.NewMemoryWallet(balance))
		return &economyBackend{
			wallet:      journal,
			persistence: system.NewPersistenceSystem(journal, repo, ec.Wallet, log, ec.FlushTicks),
			closers:     []func(){db.Close},
		}, nil

	case "redis":
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		w := economy.NewRedisWallet(client, cfg.Redis.Prefix, ec.Wallet, log)
		if err := w.Init(ctx, ec.StartingBalance); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis wallet: %w", err)
		}
		return &economyBackend{
			wallet:  w,
			closers: []func(){func() { client.Close() }},
		}, nil

	default:
		return &economyBackend{wallet: economy.NewMemoryWallet(ec.StartingBalance)}, nil
	}
}
