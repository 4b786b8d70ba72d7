package state

import (
	"fmt"

	"github.com/servicechain/executor/fvm/storage/snapshot"
)

type storageState struct {
	baseStorage snapshot.StorageSnapshot

	// The read set only include reads from the baseStorage
	readSet map[snapshot.RegisterID]struct{}

	writeSet map[snapshot.RegisterID]snapshot.RegisterValue
}

func newStorageState(base snapshot.StorageSnapshot) *storageState {
	if base == nil {
		base = snapshot.EmptyStorageSnapshot{}
	}
	return &storageState{
		baseStorage: base,
		readSet:     map[snapshot.RegisterID]struct{}{},
		writeSet:    map[snapshot.RegisterID]snapshot.RegisterValue{},
	}
}

func (state *storageState) NewChild() *storageState {
	return newStorageState(snapshot.NewPeekerStorageSnapshot(state))
}

func (state *storageState) Finalize() *snapshot.ExecutionSnapshot {
	return &snapshot.ExecutionSnapshot{
		ReadSet:  state.readSet,
		WriteSet: state.writeSet,
	}
}

func (state *storageState) Merge(snapshot *snapshot.ExecutionSnapshot) error {
	for id := range snapshot.ReadSet {
		_, ok := state.writeSet[id]
		if ok {
			continue
		}
		state.readSet[id] = struct{}{}
	}

	for id, value := range snapshot.WriteSet {
		state.writeSet[id] = value
	}
	return nil
}

func (state *storageState) Set(
	id snapshot.RegisterID,
	value snapshot.RegisterValue,
) error {
	state.writeSet[id] = value
	return nil
}

func (state *storageState) get(
	id snapshot.RegisterID,
) (
	bool, // read from base storage
	snapshot.RegisterValue,
	error,
) {
	value, ok := state.writeSet[id]
	if ok {
		return false, value, nil
	}

	if state.baseStorage == nil {
		return true, nil, nil
	}

	value, err := state.baseStorage.Get(id)
	if err != nil {
		return true, nil, fmt.Errorf("get register %s failed: %w", id, err)
	}

	return true, value, nil
}

func (state *storageState) Get(
	id snapshot.RegisterID,
) (
	snapshot.RegisterValue,
	error,
) {
	readFromBaseStorage, value, err := state.get(id)
	if err != nil {
		return nil, err
	}

	if readFromBaseStorage {
		state.readSet[id] = struct{}{}
	}

	return value, nil
}

// Peek reads a register without recording the read.
func (state *storageState) Peek(
	id snapshot.RegisterID,
) (
	snapshot.RegisterValue,
	error,
) {
	_, value, err := state.get(id)
	return value, err
}
