package build

import "errors"

// Refusal reasons. None of these cross the public Placer surface: every
// operation degrades to doing nothing and the reason is logged.
var (
	ErrCellBlocked       = errors.New("cell blocked")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNothingToDelete   = errors.New("nothing to delete")
	ErrAlreadyCommitted  = errors.New("already committed")
	ErrAlreadyMarked     = errors.New("already marked")
	ErrNoOrientation     = errors.New("no orientation")
)

// Benign reports refusals that are idempotent no-ops rather than failures.
func Benign(err error) bool {
	return errors.Is(err, ErrAlreadyCommitted) || errors.Is(err, ErrAlreadyMarked)
}
