package snapshot

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/servicechain/executor/ledger"
)

// RegisterID identifies a single register: a key inside a service namespace.
type RegisterID = ledger.KeyID

type RegisterValue = ledger.Value

type RegisterEntry struct {
	Key   RegisterID
	Value RegisterValue
}

// StorageSnapshot is a read-only view of the registers. A missing register
// reads as an empty value.
type StorageSnapshot interface {
	Get(id RegisterID) (RegisterValue, error)
}

type EmptyStorageSnapshot struct{}

func (EmptyStorageSnapshot) Get(
	id RegisterID,
) (
	RegisterValue,
	error,
) {
	return nil, nil
}

type MapStorageSnapshot map[RegisterID]RegisterValue

func (storage MapStorageSnapshot) Get(
	id RegisterID,
) (
	RegisterValue,
	error,
) {
	return storage[id], nil
}

// ExecutionSnapshot holds the registers read and written by an execution.
type ExecutionSnapshot struct {
	// Note that the ReadSet only include reads from the storage snapshot.
	// Reads from the WriteSet are excluded from the ReadSet.
	ReadSet map[RegisterID]struct{}

	WriteSet map[RegisterID]RegisterValue
}

func NewExecutionSnapshot() *ExecutionSnapshot {
	return &ExecutionSnapshot{
		ReadSet:  map[RegisterID]struct{}{},
		WriteSet: map[RegisterID]RegisterValue{},
	}
}

// UpdatedRegisters returns all registers that were updated by this view,
// sorted by namespace then key. The returned entries are the only
// deterministic input to the next state root.
func (snapshot *ExecutionSnapshot) UpdatedRegisters() []RegisterEntry {
	ids := snapshot.UpdatedRegisterIDs()
	entries := make([]RegisterEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, RegisterEntry{
			Key:   id,
			Value: snapshot.WriteSet[id],
		})
	}
	return entries
}

// UpdatedRegisterIDs returns the sorted list of updated register ids.
func (snapshot *ExecutionSnapshot) UpdatedRegisterIDs() []RegisterID {
	ids := maps.Keys(snapshot.WriteSet)
	sortRegisterIDs(ids)
	return ids
}

// ReadRegisterIDs returns the sorted list of register ids that were read
// from the underlying storage snapshot.
func (snapshot *ExecutionSnapshot) ReadRegisterIDs() []RegisterID {
	ids := maps.Keys(snapshot.ReadSet)
	sortRegisterIDs(ids)
	return ids
}

// AllRegisterIDs returns the union of the read and updated register ids.
func (snapshot *ExecutionSnapshot) AllRegisterIDs() []RegisterID {
	set := make(map[RegisterID]struct{}, len(snapshot.ReadSet)+len(snapshot.WriteSet))
	for id := range snapshot.ReadSet {
		set[id] = struct{}{}
	}
	for id := range snapshot.WriteSet {
		set[id] = struct{}{}
	}
	ids := maps.Keys(set)
	sortRegisterIDs(ids)
	return ids
}

// Update converts the write set into a ledger update at the given state.
func (snapshot *ExecutionSnapshot) Update(
	state ledger.State,
) (
	*ledger.Update,
	error,
) {
	entries := snapshot.UpdatedRegisters()
	keys := make([]ledger.KeyID, 0, len(entries))
	values := make([]ledger.Value, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entry.Key)
		values = append(values, entry.Value)
	}
	return ledger.NewUpdate(state, keys, values)
}

func sortRegisterIDs(ids []RegisterID) {
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Namespace != ids[j].Namespace {
			return ids[i].Namespace < ids[j].Namespace
		}
		return ids[i].Key < ids[j].Key
	})
}

// Peeker returns a register value without recording the read.
type Peeker interface {
	Peek(id RegisterID) (RegisterValue, error)
}

type peekerStorageSnapshot struct {
	Peeker
}

// NewPeekerStorageSnapshot adapts a Peeker into a StorageSnapshot, so that a
// child state reading through its parent does not pollute the parent's read
// set.
func NewPeekerStorageSnapshot(peeker Peeker) StorageSnapshot {
	return peekerStorageSnapshot{
		Peeker: peeker,
	}
}

func (storage peekerStorageSnapshot) Get(
	id RegisterID,
) (
	RegisterValue,
	error,
) {
	return storage.Peek(id)
}
