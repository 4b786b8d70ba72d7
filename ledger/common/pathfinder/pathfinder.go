// Package pathfinder computes the trie storage path for any given key/value pair
package pathfinder

import (
	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/ledger/common/hash"
)

// KeyToPath converts key into a path: SHA3-256 of the key's canonical form.
func KeyToPath(key ledger.KeyID) ledger.Path {
	return ledger.Path(hash.Sum256(key.CanonicalForm()))
}

// KeysToPaths converts an slice of keys into a paths
func KeysToPaths(keys []ledger.KeyID) []ledger.Path {
	paths := make([]ledger.Path, 0, len(keys))
	for _, k := range keys {
		paths = append(paths, KeyToPath(k))
	}
	return paths
}

// UpdateToTrieUpdate converts an update into a trie update.
// When a key appears more than once, the last value wins.
func UpdateToTrieUpdate(u *ledger.Update) *ledger.TrieUpdate {
	keys := u.Keys()
	values := u.Values()

	index := make(map[ledger.Path]int, len(keys))
	paths := make([]ledger.Path, 0, len(keys))
	payloads := make([]*ledger.Payload, 0, len(keys))

	for i, k := range keys {
		p := KeyToPath(k)
		payload := ledger.NewPayload(k, values[i])
		if j, ok := index[p]; ok {
			payloads[j] = payload
			continue
		}
		index[p] = len(paths)
		paths = append(paths, p)
		payloads = append(payloads, payload)
	}

	return &ledger.TrieUpdate{RootHash: u.State(), Paths: paths, Payloads: payloads}
}

// QueryToTrieRead converts a ledger query into a trie read
func QueryToTrieRead(q *ledger.Query) *ledger.TrieRead {
	return &ledger.TrieRead{RootHash: q.State(), Paths: KeysToPaths(q.Keys())}
}

// PayloadsToValues extracts values from an slice of payload
func PayloadsToValues(payloads []*ledger.Payload) []ledger.Value {
	ret := make([]ledger.Value, 0, len(payloads))
	for _, p := range payloads {
		if p == nil {
			ret = append(ret, nil)
			continue
		}
		ret = append(ret, p.Value)
	}
	return ret
}
