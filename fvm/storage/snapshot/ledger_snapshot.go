package snapshot

import (
	"sync"

	"github.com/servicechain/executor/ledger"
)

// LedgerSnapshot is a read-through StorageSnapshot over a single ledger
// state. Values are cached, so repeated reads of a register hit the ledger
// once. Safe for concurrent use.
type LedgerSnapshot struct {
	ledger ledger.Ledger
	state  ledger.State

	mutex     sync.RWMutex
	readCache map[RegisterID]RegisterValue
}

var _ StorageSnapshot = (*LedgerSnapshot)(nil)

func NewLedgerSnapshot(l ledger.Ledger, state ledger.State) *LedgerSnapshot {
	return &LedgerSnapshot{
		ledger:    l,
		state:     state,
		readCache: make(map[RegisterID]RegisterValue),
	}
}

func (snapshot *LedgerSnapshot) State() ledger.State {
	return snapshot.state
}

func (snapshot *LedgerSnapshot) getFromCache(
	id RegisterID,
) (
	RegisterValue,
	bool,
) {
	snapshot.mutex.RLock()
	defer snapshot.mutex.RUnlock()

	data, ok := snapshot.readCache[id]
	return data, ok
}

func (snapshot *LedgerSnapshot) Get(
	id RegisterID,
) (
	RegisterValue,
	error,
) {
	value, ok := snapshot.getFromCache(id)
	if ok {
		return value, nil
	}

	query, err := ledger.NewQuerySingleValue(snapshot.state, id)
	if err != nil {
		return nil, err
	}

	value, err = snapshot.ledger.GetSingleValue(query)
	if err != nil {
		return nil, err
	}

	snapshot.mutex.Lock()
	defer snapshot.mutex.Unlock()

	snapshot.readCache[id] = value
	return value, nil
}
