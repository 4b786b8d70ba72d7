package unittest

import (
	crand "crypto/rand"
	"math/rand"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/model/types"
)

const (
	DefaultCyclesLimit = 100
	DefaultCyclesPrice = 1
)

// GetPRG returns a deterministic math/rand PRG that can be used for
// deterministic randomness in tests only. The PRG seed is logged in case the
// test iteration needs to be reproduced.
func GetPRG(t *testing.T) *rand.Rand {
	random := time.Now().UnixNano()
	t.Logf("rng seed is %d", random)
	return rand.New(rand.NewSource(random))
}

func RandomBytes(n int) []byte {
	b := make([]byte, n)
	_, err := crand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

func AddressFixture() types.Address {
	var address types.Address
	copy(address[:], RandomBytes(len(address)))
	return address
}

func AddressListFixture(n int) []types.Address {
	addresses := make([]types.Address, n)
	for i := range addresses {
		addresses[i] = AddressFixture()
	}
	return addresses
}

func HashFixture() types.Hash {
	var hash types.Hash
	copy(hash[:], RandomBytes(len(hash)))
	return hash
}

// PrivateKeyFixture returns a random secp256k1 key.
func PrivateKeyFixture(t testing.TB) *btcec.PrivateKey {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return key
}

// AddressOfKey returns the address derived from the compressed public key.
func AddressOfKey(key *btcec.PrivateKey) types.Address {
	return types.AddressFromPubKey(key.PubKey().SerializeCompressed())
}

// SignatureFixture returns the DER encoded signature of hash.
func SignatureFixture(key *btcec.PrivateKey, hash types.Hash) []byte {
	return ecdsa.Sign(key, hash.Bytes()).Serialize()
}

type TransactionOption func(*types.RawTransaction)

func WithSender(sender types.Address) TransactionOption {
	return func(tx *types.RawTransaction) {
		tx.Sender = sender
	}
}

func WithRequest(service string, method string, payload string) TransactionOption {
	return func(tx *types.RawTransaction) {
		tx.Request = types.TransactionRequest{
			ServiceName: service,
			Method:      method,
			Payload:     payload,
		}
	}
}

func WithCycles(limit uint64, price uint64) TransactionOption {
	return func(tx *types.RawTransaction) {
		tx.CyclesLimit = limit
		tx.CyclesPrice = price
	}
}

// TransactionFixture returns a signed transaction with a random nonce and
// sender. Its envelope signature is not valid.
func TransactionFixture(opts ...TransactionOption) types.SignedTransaction {
	raw := types.RawTransaction{
		ChainID:     types.Digest([]byte("executor-test")),
		Nonce:       HashFixture(),
		Timeout:     100,
		CyclesPrice: DefaultCyclesPrice,
		CyclesLimit: DefaultCyclesLimit,
		Sender:      AddressFixture(),
	}
	for _, apply := range opts {
		apply(&raw)
	}

	tx, err := types.NewSignedTransaction(raw, RandomBytes(33), RandomBytes(64))
	if err != nil {
		panic(err)
	}
	return tx
}
