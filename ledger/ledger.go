package ledger

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/servicechain/executor/ledger/common/hash"
)

// Ledger is a versioned, authenticated key/value storage.
// Any update (value change for a key) to the ledger generates a new ledger state,
// identified by the root hash of a binary Merkle trie. Updates can be applied to any
// retained state, so the states form a tree. Ledger provides value lookup by key at a
// particular state and can prove the existence/non-existence of a key-value pair at that state.
// Ledger assumes the initial state includes all keys with an empty value.
type Ledger interface {
	// InitialState returns the initial (empty) state of the ledger
	InitialState() State

	// HasState reports whether the given state is retained by the ledger
	HasState(state State) bool

	// GetSingleValue returns value for a given key at specific state
	GetSingleValue(query *QuerySingleValue) (value Value, err error)

	// Get returns values for the given slice of keys at specific state
	Get(query *Query) (values []Value, err error)

	// Set updates a list of keys with new values at specific state and returns the new state.
	// An empty value removes the key.
	Set(update *Update) (newState State, err error)

	// Prove returns proofs for the given keys at specific state
	Prove(query *Query) (proof Proof, err error)
}

// KeyID is a ledger key: a key inside the namespace of a single owner (a service).
type KeyID struct {
	Namespace string
	Key       string
}

// NewKeyID returns a new key ID.
func NewKeyID(namespace, key string) KeyID {
	return KeyID{
		Namespace: namespace,
		Key:       key,
	}
}

// CanonicalForm returns a byte slice describing the key ID.
// WARNING: changing this function changes every path, and so every state root.
func (k KeyID) CanonicalForm() []byte {
	const encodedPartLength = 3

	b := make([]byte, 0, len(k.Namespace)+len(k.Key)+2*encodedPartLength)

	b = append(b, '/', '0', '/')
	b = append(b, k.Namespace...)

	b = append(b, '/', '1', '/')
	b = append(b, k.Key...)

	return b
}

// Size returns the byte size of the key
func (k KeyID) Size() int {
	return len(k.Namespace) + len(k.Key)
}

func (k KeyID) String() string {
	return k.Namespace + "/" + hex.EncodeToString([]byte(k.Key))
}

// State captures a state of the ledger: the root hash of its trie.
type State hash.Hash

// DummyState is an arbitrary value used in function failure cases,
// although it can represent a valid state.
var DummyState = State(hash.DummyHash)

// EmptyState is the root of a ledger holding no registers.
var EmptyState = State(hash.GetDefaultHashForHeight(hash.TreeHeight))

// String returns the hex encoding of the state
func (sc State) String() string {
	return hex.EncodeToString(sc[:])
}

// Equals compares the state to another state
func (sc State) Equals(o State) bool {
	return sc == o
}

// ToState converts a byte slice into a State.
// It returns an error if the slice has an invalid length.
func ToState(stateBytes []byte) (State, error) {
	var state State
	if len(stateBytes) != len(state) {
		return DummyState, fmt.Errorf("expecting %d bytes but got %d bytes", len(state), len(stateBytes))
	}
	copy(state[:], stateBytes)
	return state, nil
}

// Proof is a byte slice capturing encoded version of a batch proof
type Proof []byte

func (pr Proof) String() string {
	return hex.EncodeToString(pr)
}

// Value holds the value part of a ledger key value pair
type Value []byte

// Size returns the value size
func (v Value) Size() int {
	return len(v)
}

func (v Value) String() string {
	return hex.EncodeToString(v)
}

// DeepCopy returns a deep copy of the value
func (v Value) DeepCopy() Value {
	if v == nil {
		return nil
	}
	newV := make([]byte, len(v))
	copy(newV, v)
	return newV
}

// Equals compares a ledger Value to another one
// A nil value is equivalent to an empty value.
func (v Value) Equals(other Value) bool {
	return bytes.Equal(v, other)
}

// Query holds all data needed for a ledger read or ledger proof
type Query struct {
	state State
	keys  []KeyID
}

// NewQuery constructs a new ledger query
func NewQuery(sc State, keys []KeyID) (*Query, error) {
	return &Query{state: sc, keys: keys}, nil
}

// Keys returns keys of the query
func (q *Query) Keys() []KeyID {
	return q.keys
}

// Size returns number of keys in the query
func (q *Query) Size() int {
	return len(q.keys)
}

// State returns the state part of the query
func (q *Query) State() State {
	return q.state
}

// QuerySingleValue contains ledger query for a single value
type QuerySingleValue struct {
	state State
	key   KeyID
}

// NewQuerySingleValue constructs a new ledger query for a single value
func NewQuerySingleValue(sc State, key KeyID) (*QuerySingleValue, error) {
	return &QuerySingleValue{state: sc, key: key}, nil
}

// Key returns key of the query
func (q *QuerySingleValue) Key() KeyID {
	return q.key
}

// State returns the state part of the query
func (q *QuerySingleValue) State() State {
	return q.state
}

// Update holds all data needed for a ledger update
type Update struct {
	state  State
	keys   []KeyID
	values []Value
}

// NewUpdate returns an ledger update
func NewUpdate(sc State, keys []KeyID, values []Value) (*Update, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("length mismatch: keys have %d elements, but values have %d elements", len(keys), len(values))
	}
	return &Update{state: sc, keys: keys, values: values}, nil
}

// NewEmptyUpdate returns an empty ledger update
func NewEmptyUpdate(sc State) (*Update, error) {
	return &Update{state: sc}, nil
}

// State returns the state part of this update
func (u *Update) State() State {
	return u.state
}

// Keys returns keys of the update
func (u *Update) Keys() []KeyID {
	return u.keys
}

// Values returns value of the update
func (u *Update) Values() []Value {
	return u.values
}

// Size returns number of keys in the ledger update
func (u *Update) Size() int {
	return len(u.keys)
}

// AppendKV adds a key value pair to the update
func (u *Update) AppendKV(key KeyID, value Value) {
	u.keys = append(u.keys, key)
	u.values = append(u.values, value)
}
