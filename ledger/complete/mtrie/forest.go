package mtrie

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/ledger/complete/mtrie/trie"
	"github.com/servicechain/executor/module"
)

// Forest holds several in-memory tries. As Forest is a storage-abstraction layer,
// we assume that all registers are addressed via paths of pre-defined uniform length.
//
// Forest has a limit, the forestCapacity, on the number of tries it is able to store.
// If more tries are added than the capacity, the Least Recently Used trie is
// removed (evicted) from the Forest. The empty trie is always available.
// Forest is safe for concurrent use.
type Forest struct {
	tries     *lru.Cache[ledger.State, *trie.MTrie]
	emptyTrie *trie.MTrie
	metrics   module.LedgerMetrics
}

// NewForest returns a new instance of memory forest.
//
// CAUTION on forestCapacity: the specified capacity MUST be SUFFICIENT to store all needed MTries in the forest.
// If more tries are added than the capacity, the Least Recently Added trie is removed (evicted) from the Forest
// and reads or updates against its root fail with ledger.ErrStateNotFound.
func NewForest(forestCapacity int, metrics module.LedgerMetrics, onTreeEvicted func(tree *trie.MTrie)) (*Forest, error) {
	var (
		cache *lru.Cache[ledger.State, *trie.MTrie]
		err   error
	)
	if onTreeEvicted != nil {
		cache, err = lru.NewWithEvict(forestCapacity, func(_ ledger.State, t *trie.MTrie) {
			onTreeEvicted(t)
		})
	} else {
		cache, err = lru.New[ledger.State, *trie.MTrie](forestCapacity)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot create forest cache: %w", err)
	}

	emptyTrie := trie.NewEmptyMTrie()
	forest := &Forest{
		tries:     cache,
		emptyTrie: emptyTrie,
		metrics:   metrics,
	}
	forest.tries.Add(emptyTrie.RootHash(), emptyTrie)
	return forest, nil
}

// Read reads values for an slice of paths and returns values in the order of the paths.
func (f *Forest) Read(r *ledger.TrieRead) ([]*ledger.Payload, error) {
	if len(r.Paths) == 0 {
		return []*ledger.Payload{}, nil
	}

	t, err := f.GetTrie(r.RootHash)
	if err != nil {
		return nil, err
	}

	payloads := t.Read(r.Paths)
	result := make([]*ledger.Payload, len(payloads))
	for i, p := range payloads {
		result[i] = p.DeepCopy()
	}
	return result, nil
}

// Update updates the Values for the registers and returns the root hash of the new trie.
// The new trie is added to the forest only if the whole update succeeds.
func (f *Forest) Update(u *ledger.TrieUpdate) (ledger.State, error) {
	parentTrie, err := f.GetTrie(u.RootHash)
	if err != nil {
		return ledger.DummyState, err
	}

	if len(u.Paths) == 0 {
		return u.RootHash, nil
	}

	payloads := make([]ledger.Payload, len(u.Payloads))
	for i, p := range u.Payloads {
		payloads[i] = *p
	}

	newTrie, err := trie.NewTrieWithUpdatedRegisters(parentTrie, u.Paths, payloads)
	if err != nil {
		return ledger.DummyState, fmt.Errorf("constructing updated trie failed: %w", err)
	}

	f.metrics.LatestTrieRegCount(newTrie.AllocatedRegCount())
	f.metrics.LatestTrieRegCountDiff(int64(newTrie.AllocatedRegCount()) - int64(parentTrie.AllocatedRegCount()))
	f.metrics.LatestTrieMaxDepthTouched(newTrie.MaxDepth())

	f.AddTrie(newTrie)

	return newTrie.RootHash(), nil
}

// Proofs returns a batch proof for the given paths.
func (f *Forest) Proofs(r *ledger.TrieRead) (*ledger.TrieBatchProof, error) {
	t, err := f.GetTrie(r.RootHash)
	if err != nil {
		return nil, err
	}
	return t.ProveBatch(r.Paths), nil
}

// HasTrie returns true if trie exist at specific rootHash
func (f *Forest) HasTrie(rootHash ledger.State) bool {
	if rootHash == f.emptyTrie.RootHash() {
		return true
	}
	return f.tries.Contains(rootHash)
}

// GetTrie returns trie at specific rootHash
// warning, use this function for read-only operation
func (f *Forest) GetTrie(rootHash ledger.State) (*trie.MTrie, error) {
	if rootHash == f.emptyTrie.RootHash() {
		return f.emptyTrie, nil
	}
	if t, ok := f.tries.Get(rootHash); ok {
		return t, nil
	}
	return nil, ledger.NewErrStateNotFound(rootHash)
}

// AddTrie adds a trie to the forest
func (f *Forest) AddTrie(newTrie *trie.MTrie) {
	if newTrie == nil {
		return
	}
	f.tries.Add(newTrie.RootHash(), newTrie)
	f.metrics.ForestNumberOfTrees(uint64(f.tries.Len()))
}

// GetEmptyRootHash returns the rootHash of empty Trie
func (f *Forest) GetEmptyRootHash() ledger.State {
	return f.emptyTrie.RootHash()
}

// Size returns the number of active tries in this store
func (f *Forest) Size() int {
	return f.tries.Len()
}
