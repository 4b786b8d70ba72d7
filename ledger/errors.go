package ledger

import (
	"errors"
	"fmt"
)

// ErrStateNotFound is returned when a state (root) is unknown to the ledger or has been evicted.
var ErrStateNotFound = errors.New("state not found")

// ErrLedgerConstruction is returned upon a failure in ledger creation steps
type ErrLedgerConstruction struct {
	Err error
}

func (e ErrLedgerConstruction) Error() string {
	return fmt.Sprintf("ledger construction failed: %v", e.Err)
}

func (e ErrLedgerConstruction) Unwrap() error {
	return e.Err
}

// NewErrLedgerConstruction constructs a new ledger construction error
func NewErrLedgerConstruction(err error) *ErrLedgerConstruction {
	return &ErrLedgerConstruction{err}
}

// NewErrStateNotFound wraps ErrStateNotFound with the missing state.
func NewErrStateNotFound(state State) error {
	return fmt.Errorf("%w: %s", ErrStateNotFound, state)
}

// IsStateNotFound returns true if err is (or wraps) ErrStateNotFound
func IsStateNotFound(err error) bool {
	return errors.Is(err, ErrStateNotFound)
}
