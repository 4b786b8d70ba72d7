package state

import (
	"fmt"

	"github.com/servicechain/executor/fvm/meter"
	"github.com/servicechain/executor/fvm/storage/snapshot"
)

// Opaque identifier used for Restarting nested transactions
type NestedTransactionId struct {
	state *ExecutionState
}

func (id NestedTransactionId) StateForTestingOnly() *ExecutionState {
	return id.state
}

// TransactionState manages the nested transaction stack of a single
// execution. The bottom of the stack is the main transaction, which is
// finalized once all nested transactions are committed.
type TransactionState struct {
	// NOTE: The first frame is always the main transaction, and is not
	// poppable during the course of the transaction.
	nestedTransactions []*ExecutionState
}

// NewTransactionState constructs a new state transaction which manages
// nested transactions.
func NewTransactionState(
	snapshot snapshot.StorageSnapshot,
	params StateParameters,
) *TransactionState {
	startState := NewExecutionState(snapshot, params)
	return &TransactionState{
		nestedTransactions: []*ExecutionState{startState},
	}
}

func (txnState *TransactionState) current() *ExecutionState {
	return txnState.nestedTransactions[txnState.NumNestedTransactions()]
}

// NumNestedTransactions returns the number of uncommitted nested
// transactions. Note that the main transaction is not considered a nested
// transaction.
func (txnState *TransactionState) NumNestedTransactions() int {
	return len(txnState.nestedTransactions) - 1
}

// IsCurrent returns true if the provide id refers to the current (nested)
// transaction.
func (txnState *TransactionState) IsCurrent(id NestedTransactionId) bool {
	return txnState.current() == id.state
}

// BeginNestedTransaction creates a unrestricted nested transaction within
// the current transaction which shares the current meter.
func (txnState *TransactionState) BeginNestedTransaction() (
	NestedTransactionId,
	error,
) {
	child := txnState.current().NewChild()
	txnState.push(child)
	return NestedTransactionId{state: child}, nil
}

// BeginNestedTransactionWithMeter creates a nested transaction metered by a
// new meter with the given cycles limit. Nested transactions started on top
// of it share that meter.
func (txnState *TransactionState) BeginNestedTransactionWithMeter(
	limit uint64,
) (
	NestedTransactionId,
	*meter.Meter,
	error,
) {
	m := txnState.current().NewMeter(limit)
	id, err := txnState.BeginMeteredNestedTransaction(m)
	return id, m, err
}

// BeginMeteredNestedTransaction creates a nested transaction metered by m.
func (txnState *TransactionState) BeginMeteredNestedTransaction(
	m *meter.Meter,
) (
	NestedTransactionId,
	error,
) {
	child := txnState.current().NewChildWithMeter(m)
	txnState.push(child)
	return NestedTransactionId{state: child}, nil
}

func (txnState *TransactionState) push(child *ExecutionState) {
	txnState.nestedTransactions = append(txnState.nestedTransactions, child)
}

func (txnState *TransactionState) pop(op string) (*ExecutionState, error) {
	if len(txnState.nestedTransactions) < 2 {
		return nil, fmt.Errorf("cannot %s the main transaction", op)
	}

	child := txnState.current()
	txnState.nestedTransactions = txnState.nestedTransactions[:len(txnState.nestedTransactions)-1]

	return child, nil
}

func (txnState *TransactionState) mergeIntoParent() (*snapshot.ExecutionSnapshot, error) {
	childState, err := txnState.pop("commit")
	if err != nil {
		return nil, err
	}

	childSnapshot := childState.Finalize()

	err = txnState.current().Merge(childSnapshot)
	if err != nil {
		return nil, err
	}

	return childSnapshot, nil
}

// CommitNestedTransaction commits the changes in the current unrestricted
// nested transaction to the parent (nested) transaction. This returns error
// if the expectedId does not match the current nested transaction.
func (txnState *TransactionState) CommitNestedTransaction(
	expectedId NestedTransactionId,
) (
	*snapshot.ExecutionSnapshot,
	error,
) {
	if !txnState.IsCurrent(expectedId) {
		return nil, fmt.Errorf(
			"cannot commit unexpected nested transaction: id mismatch")
	}

	return txnState.mergeIntoParent()
}

// AbortNestedTransaction drops the changes of the current nested
// transaction. This returns error if the expectedId does not match the
// current nested transaction.
func (txnState *TransactionState) AbortNestedTransaction(
	expectedId NestedTransactionId,
) error {
	if !txnState.IsCurrent(expectedId) {
		return fmt.Errorf(
			"cannot abort unexpected nested transaction: id mismatch")
	}

	child, err := txnState.pop("abort")
	if err != nil {
		return err
	}
	child.Finalize()
	return nil
}

// RestartNestedTransaction drops all changes of the nested transaction id
// (and of any nested transaction started on top of it), then restarts id as
// an empty nested transaction. The restarted transaction keeps its meter, so
// cycles spent before the restart stay spent.
func (txnState *TransactionState) RestartNestedTransaction(
	id NestedTransactionId,
) error {

	// NOTE: We need to verify the id is valid before popping anything or else
	// we would accidentally drop every nested transaction.
	found := false
	for _, frame := range txnState.nestedTransactions[1:] {
		if frame == id.state {
			found = true
			break
		}
	}

	if !found {
		return fmt.Errorf(
			"cannot restart nested transaction: nested transaction not found")
	}

	for txnState.current() != id.state {
		_, err := txnState.pop("restart")
		if err != nil {
			return err
		}
	}

	restarted, err := txnState.pop("restart")
	if err != nil {
		return err
	}

	// the id keeps referring to the restarted frame
	restarted.storageState = txnState.current().storageState.NewChild()
	restarted.finalized = false
	txnState.push(restarted)
	return nil
}

// FinalizeMainTransaction finalizes the main transaction and returns its
// execution snapshot. It fails if nested transactions are still open.
func (txnState *TransactionState) FinalizeMainTransaction() (
	*snapshot.ExecutionSnapshot,
	error,
) {
	if len(txnState.nestedTransactions) > 1 {
		return nil, fmt.Errorf(
			"cannot finalize with outstanding nested transaction(s)")
	}

	return txnState.nestedTransactions[0].Finalize(), nil
}

func (txnState *TransactionState) Get(
	id snapshot.RegisterID,
) (
	snapshot.RegisterValue,
	error,
) {
	return txnState.current().Get(id)
}

func (txnState *TransactionState) Set(
	id snapshot.RegisterID,
	value snapshot.RegisterValue,
) error {
	return txnState.current().Set(id, value)
}

func (txnState *TransactionState) MeterComputation(
	kind meter.ComputationKind,
	intensity uint,
) error {
	return txnState.current().MeterComputation(kind, intensity)
}

func (txnState *TransactionState) TotalComputationUsed() uint64 {
	return txnState.current().TotalComputationUsed()
}

func (txnState *TransactionState) TotalComputationLimit() uint64 {
	return txnState.current().TotalComputationLimit()
}

func (txnState *TransactionState) ComputationIntensities() meter.MeteredComputationIntensities {
	return txnState.current().ComputationIntensities()
}

func (txnState *TransactionState) EnforceLimits() bool {
	return txnState.current().EnforceLimits()
}

func (txnState *TransactionState) RunWithAllLimitsDisabled(f func()) {
	txnState.current().RunWithAllLimitsDisabled(f)
}
