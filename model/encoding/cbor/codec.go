// Package cbor provides the canonical CBOR encoding used for state values and hashing preimages.
// Canonical encoding makes equal values encode to equal bytes, which every state root depends on.
package cbor

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/servicechain/executor/model/encoding"
)

// EncMode is the canonical encoding mode (sorted map keys, smallest integer encodings).
var EncMode = func() cbor.EncMode {
	options := cbor.CanonicalEncOptions()
	options.Time = cbor.TimeUnix
	encMode, err := options.EncMode()
	if err != nil {
		panic(err)
	}
	return encMode
}()

// DecMode rejects duplicate map keys so that every value has a single encoding.
var DecMode = func() cbor.DecMode {
	decMode, err := cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels: 64,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return decMode
}()

// Marshal encodes v canonically.
func Marshal(v interface{}) ([]byte, error) {
	return EncMode.Marshal(v)
}

// Unmarshal decodes b into v.
func Unmarshal(b []byte, v interface{}) error {
	return DecMode.Unmarshal(b, v)
}

type Encoder struct{}

var _ encoding.Encoder = (*Encoder)(nil)

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Encode(val interface{}) ([]byte, error) {
	return Marshal(val)
}

func (e *Encoder) Decode(b []byte, val interface{}) error {
	return Unmarshal(b, val)
}

func (e *Encoder) MustEncode(val interface{}) []byte {
	b, err := e.Encode(val)
	if err != nil {
		panic(fmt.Errorf("could not encode value: %w", err))
	}
	return b
}

func (e *Encoder) MustDecode(b []byte, val interface{}) {
	if err := e.Decode(b, val); err != nil {
		panic(fmt.Errorf("could not decode value: %w", err))
	}
}
