// Package encoding provides byte serialization and deserialization of ledger proofs.
package encoding

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/ledger/common/hash"
)

// TrieBatchProofVersion is the maximum version of batch proof encoding this code supports.
// Bumping the version prevents older versions of code from handling newer data.
const TrieBatchProofVersion = uint16(1)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("could not create cbor encoding mode: %w", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(fmt.Errorf("could not create cbor decoding mode: %w", err))
	}
}

// key parts are byte strings on the wire: keys are arbitrary bytes and a
// CBOR text string must be valid UTF-8.
type encodedKeyID struct {
	Namespace []byte
	Key       []byte
}

type encodedPayload struct {
	Key   encodedKeyID
	Value []byte
}

type encodedTrieProof struct {
	Path      ledger.Path
	LeafPath  ledger.Path
	Payload   *encodedPayload
	Interims  []hash.Hash
	Inclusion bool
	Flags     []byte
	Steps     uint16
}

type encodedBatchProof struct {
	Version uint16
	Proofs  []*encodedTrieProof
}

func encodeTrieProof(p *ledger.TrieProof) *encodedTrieProof {
	encoded := &encodedTrieProof{
		Path:      p.Path,
		LeafPath:  p.LeafPath,
		Interims:  p.Interims,
		Inclusion: p.Inclusion,
		Flags:     p.Flags,
		Steps:     p.Steps,
	}
	if p.Payload != nil {
		encoded.Payload = &encodedPayload{
			Key: encodedKeyID{
				Namespace: []byte(p.Payload.Key.Namespace),
				Key:       []byte(p.Payload.Key.Key),
			},
			Value: p.Payload.Value,
		}
	}
	return encoded
}

func decodeTrieProof(encoded *encodedTrieProof) *ledger.TrieProof {
	p := &ledger.TrieProof{
		Path:      encoded.Path,
		LeafPath:  encoded.LeafPath,
		Payload:   ledger.EmptyPayload(),
		Interims:  encoded.Interims,
		Inclusion: encoded.Inclusion,
		Flags:     encoded.Flags,
		Steps:     encoded.Steps,
	}
	if encoded.Payload != nil {
		p.Payload = ledger.NewPayload(
			ledger.NewKeyID(
				string(encoded.Payload.Key.Namespace),
				string(encoded.Payload.Key.Key)),
			encoded.Payload.Value)
	}
	return p
}

// EncodeTrieBatchProof encodes a batch proof into a byte slice
func EncodeTrieBatchProof(bp *ledger.TrieBatchProof) (ledger.Proof, error) {
	if bp == nil {
		return nil, fmt.Errorf("cannot encode nil batch proof")
	}
	proofs := make([]*encodedTrieProof, len(bp.Proofs))
	for i, p := range bp.Proofs {
		if p == nil {
			return nil, fmt.Errorf("batch proof contains nil proof at index %d", i)
		}
		proofs[i] = encodeTrieProof(p)
	}
	b, err := encMode.Marshal(encodedBatchProof{Version: TrieBatchProofVersion, Proofs: proofs})
	if err != nil {
		return nil, fmt.Errorf("could not encode batch proof: %w", err)
	}
	return b, nil
}

// DecodeTrieBatchProof constructs a batch proof from an encoded byte slice
func DecodeTrieBatchProof(encoded ledger.Proof) (*ledger.TrieBatchProof, error) {
	var decoded encodedBatchProof
	if err := decMode.Unmarshal(encoded, &decoded); err != nil {
		return nil, fmt.Errorf("could not decode batch proof: %w", err)
	}
	if decoded.Version > TrieBatchProofVersion {
		return nil, fmt.Errorf("unsupported batch proof version %d (max %d)", decoded.Version, TrieBatchProofVersion)
	}
	proofs := make([]*ledger.TrieProof, len(decoded.Proofs))
	for i, p := range decoded.Proofs {
		if p == nil {
			return nil, fmt.Errorf("batch proof contains nil proof at index %d", i)
		}
		proofs[i] = decodeTrieProof(p)
	}
	return &ledger.TrieBatchProof{Proofs: proofs}, nil
}
