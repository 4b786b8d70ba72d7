package complete

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/ledger/common/encoding"
	"github.com/servicechain/executor/ledger/common/pathfinder"
	"github.com/servicechain/executor/ledger/complete/mtrie"
	"github.com/servicechain/executor/ledger/complete/mtrie/trie"
	"github.com/servicechain/executor/module"
)

const DefaultCacheSize = 1000

// Ledger (complete) is a fast memory-efficient fork-aware thread-safe trie-based key/value storage.
// Ledger holds an array of registers (key-value pairs) and keeps tracks of changes over a limited time.
// Each register is referenced by an ID (key) and holds a value (byte slice).
// Ledger provides atomic batched updates and read (with or without proofs) operation given a list of keys.
// Every update to the Ledger creates a new state which captures the state of the storage.
// Under the hood, it uses binary Merkle tries to generate inclusion and non-inclusion proofs.
// Ledger is fork-aware which means any update can be applied at any previous state which forms a tree of tries (forest).
// In order to limit the memory usage the storage only keeps a limited number of
// tries and purges the old ones (LRU-based).
type Ledger struct {
	forest  *mtrie.Forest
	metrics module.LedgerMetrics
	logger  zerolog.Logger
}

var _ ledger.Ledger = (*Ledger)(nil)

// NewLedger creates a new in-memory trie-backed ledger storage.
func NewLedger(
	capacity int,
	metrics module.LedgerMetrics,
	log zerolog.Logger,
) (*Ledger, error) {

	logger := log.With().Str("ledger", "complete").Logger()

	forest, err := mtrie.NewForest(capacity, metrics, func(evictedTrie *trie.MTrie) {
		logger.Debug().Str("state", evictedTrie.RootHash().String()).Msg("trie evicted from forest")
	})
	if err != nil {
		return nil, ledger.NewErrLedgerConstruction(fmt.Errorf("cannot create forest: %w", err))
	}

	return &Ledger{
		forest:  forest,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// InitialState returns the state of an empty ledger
func (l *Ledger) InitialState() ledger.State {
	return l.forest.GetEmptyRootHash()
}

// HasState returns true if the given state exists inside the ledger
func (l *Ledger) HasState(state ledger.State) bool {
	return l.forest.HasTrie(state)
}

// GetSingleValue reads value of a single given key at the given state.
func (l *Ledger) GetSingleValue(query *ledger.QuerySingleValue) (ledger.Value, error) {
	start := time.Now()

	t, err := l.forest.GetTrie(query.State())
	if err != nil {
		return nil, err
	}
	payload := t.ReadSinglePayload(pathfinder.KeyToPath(query.Key()))

	l.metrics.ReadValuesNumber(1)
	l.metrics.ReadDuration(time.Since(start))

	return payload.Value.DeepCopy(), nil
}

// Get read the values of the given keys at the given state
// it returns the values in the same order as given registerIDs and errors (if any)
func (l *Ledger) Get(query *ledger.Query) ([]ledger.Value, error) {
	start := time.Now()

	payloads, err := l.forest.Read(pathfinder.QueryToTrieRead(query))
	if err != nil {
		return nil, err
	}
	values := pathfinder.PayloadsToValues(payloads)

	l.metrics.ReadValuesNumber(uint64(len(values)))
	l.metrics.ReadDuration(time.Since(start))

	return values, nil
}

// Read returns the value of a single key in the given namespace at the given state.
// A missing key reads as an empty value.
func (l *Ledger) Read(state ledger.State, namespace string, key string) (ledger.Value, error) {
	query, err := ledger.NewQuerySingleValue(state, ledger.NewKeyID(namespace, key))
	if err != nil {
		return nil, err
	}
	return l.GetSingleValue(query)
}

// Set updates the ledger given an update.
// It returns the state after update and errors (if any)
func (l *Ledger) Set(update *ledger.Update) (ledger.State, error) {
	if update.Size() == 0 {
		if !l.forest.HasTrie(update.State()) {
			return ledger.DummyState, ledger.NewErrStateNotFound(update.State())
		}
		return update.State(), nil
	}

	start := time.Now()

	trieUpdate := pathfinder.UpdateToTrieUpdate(update)

	newState, err := l.forest.Update(trieUpdate)
	if err != nil {
		return ledger.DummyState, fmt.Errorf("cannot update state: %w", err)
	}

	l.metrics.UpdateCount()
	l.metrics.UpdateValuesNumber(uint64(trieUpdate.Size()))
	l.metrics.UpdateDuration(time.Since(start))

	l.logger.Debug().
		Str("from", update.State().String()).
		Str("to", newState.String()).
		Int("update_size", trieUpdate.Size()).
		Msg("ledger updated")

	return newState, nil
}

// BeginWrite starts a write batch on top of the given state.
func (l *Ledger) BeginWrite(state ledger.State) *ledger.WriteBatch {
	return ledger.NewWriteBatch(l, state)
}

// Prove provides proofs for a ledger query and errors (if any).
// Proofs are provided in the register order of the query.
func (l *Ledger) Prove(query *ledger.Query) (ledger.Proof, error) {
	batchProof, err := l.forest.Proofs(pathfinder.QueryToTrieRead(query))
	if err != nil {
		return nil, fmt.Errorf("could not get proofs: %w", err)
	}

	proof, err := encoding.EncodeTrieBatchProof(batchProof)
	if err != nil {
		return nil, err
	}

	if batchProof.Size() > 0 {
		l.metrics.ProofSize(uint32(len(proof) / batchProof.Size()))
	}

	return proof, nil
}

// ForestSize returns the number of tries stored in the forest
func (l *Ledger) ForestSize() int {
	return l.forest.Size()
}
