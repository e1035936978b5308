// Package economy holds the build budget. Every backend satisfies the
// builder's Economy contract: TrySpend either takes the whole amount or
// nothing, Refund always succeeds.
package economy

// Wallet is a build budget.
type Wallet interface {
	TrySpend(amount int) bool
	Refund(amount int)
	Balance() int64
}

// MemoryWallet keeps the balance in process. Game loop goroutine only.
type MemoryWallet struct {
	balance int64
}

func NewMemoryWallet(start int64) *MemoryWallet {
	return &MemoryWallet{balance: start}
}

func (w *MemoryWallet) TrySpend(amount int) bool {
	if amount < 0 || int64(amount) > w.balance {
		return false
	}
	w.balance -= int64(amount)
	return true
}

func (w *MemoryWallet) Refund(amount int) {
	if amount > 0 {
		w.balance += int64(amount)
	}
}

func (w *MemoryWallet) Balance() int64 { return w.balance }
