package ledger

import (
	"fmt"
)

// WriteBatch collects register writes on top of a state and commits them
// atomically as a single ledger update.
type WriteBatch struct {
	ledger    Ledger
	update    *Update
	committed bool
}

// NewWriteBatch starts a write batch on top of the given state.
func NewWriteBatch(l Ledger, state State) *WriteBatch {
	update, _ := NewEmptyUpdate(state)
	return &WriteBatch{
		ledger: l,
		update: update,
	}
}

// Put stages a write. An empty value removes the key.
func (b *WriteBatch) Put(namespace, key string, value Value) {
	b.update.AppendKV(NewKeyID(namespace, key), value)
}

// Size returns the number of staged writes
func (b *WriteBatch) Size() int {
	return b.update.Size()
}

// Commit applies the staged writes and returns the new state.
// The base state stays readable. A batch can be committed only once.
func (b *WriteBatch) Commit() (State, error) {
	if b.committed {
		return DummyState, fmt.Errorf("write batch on state %s already committed", b.update.State())
	}
	b.committed = true
	if b.update.Size() == 0 {
		if !b.ledger.HasState(b.update.State()) {
			return DummyState, NewErrStateNotFound(b.update.State())
		}
		return b.update.State(), nil
	}
	return b.ledger.Set(b.update)
}
