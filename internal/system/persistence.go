package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/sugarsyndicate/beltline/internal/core/system"
	"github.com/sugarsyndicate/beltline/internal/economy"
	"github.com/sugarsyndicate/beltline/internal/persist"
)

// LedgerWriter stores a batch of balance movements with the resulting balance.
type LedgerWriter interface {
	WriteEntries(ctx context.Context, wallet string, entries []persist.LedgerEntry, balance int64) error
}

// PersistenceSystem periodically writes the wallet journal to the ledger.
// Phase 5 (Persist).
type PersistenceSystem struct {
	journal   *economy.Journal
	repo      LedgerWriter
	wallet    string
	log       *zap.Logger
	tickCount int
	interval  int // flush every N ticks

	// Entries from failed writes, retried first on the next flush.
	retry []persist.LedgerEntry
}

func NewPersistenceSystem(journal *economy.Journal, repo LedgerWriter, wallet string, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	if intervalTicks <= 0 {
		intervalTicks = 1
	}
	return &PersistenceSystem{
		journal:  journal,
		repo:     repo,
		wallet:   wallet,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush writes everything pending now. Called for graceful shutdown.
func (s *PersistenceSystem) Flush() int {
	entries := s.retry
	for _, e := range s.journal.Drain() {
		entries = append(entries, persist.LedgerEntry{
			Kind:    e.Kind.String(),
			Amount:  e.Amount,
			Balance: e.Balance,
			At:      e.At,
		})
	}
	s.retry = nil
	if len(entries) == 0 {
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.WriteEntries(ctx, s.wallet, entries, s.journal.Balance()); err != nil {
		s.log.Error("ledger flush failed", zap.Int("entries", len(entries)), zap.Error(err))
		s.retry = entries
		return 0
	}
	s.log.Debug("ledger flushed", zap.Int("entries", len(entries)))
	return len(entries)
}
