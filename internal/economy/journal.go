package economy

import "time"

type EntryKind uint8

const (
	EntrySpend EntryKind = iota + 1
	EntryRefund
)

func (k EntryKind) String() string {
	if k == EntryRefund {
		return "refund"
	}
	return "spend"
}

// Entry is one balance movement.
type Entry struct {
	Kind    EntryKind
	Amount  int
	Balance int64 // after the movement
	At      time.Time
}

// Journal records every successful spend and refund of the wallet it wraps.
// The persistence system drains it on its own schedule.
type Journal struct {
	Wallet
	entries []Entry
	now     func() time.Time
}

func NewJournal(w Wallet) *Journal {
	return &Journal{Wallet: w, now: time.Now}
}

func (j *Journal) TrySpend(amount int) bool {
	if !j.Wallet.TrySpend(amount) {
		return false
	}
	if amount > 0 {
		j.record(EntrySpend, amount)
	}
	return true
}

func (j *Journal) Refund(amount int) {
	if amount <= 0 {
		return
	}
	j.Wallet.Refund(amount)
	j.record(EntryRefund, amount)
}

// Pending returns how many entries wait for Drain.
func (j *Journal) Pending() int { return len(j.entries) }

// Drain hands over the recorded entries and starts a fresh batch.
func (j *Journal) Drain() []Entry {
	out := j.entries
	j.entries = nil
	return out
}

func (j *Journal) record(kind EntryKind, amount int) {
	j.entries = append(j.entries, Entry{
		Kind:    kind,
		Amount:  amount,
		Balance: j.Wallet.Balance(),
		At:      j.now(),
	})
}
