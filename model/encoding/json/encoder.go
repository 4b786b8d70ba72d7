// Package json provides the JSON encoder used for service payloads and responses.
package json

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/servicechain/executor/model/encoding"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Encoder struct{}

var _ encoding.Encoder = (*Encoder)(nil)

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Encode(val interface{}) ([]byte, error) {
	return json.Marshal(val)
}

func (e *Encoder) Decode(b []byte, val interface{}) error {
	return json.Unmarshal(b, val)
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

// Marshal encodes v with the shared json configuration.
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes b into v with the shared json configuration.
func Unmarshal(b []byte, v interface{}) error {
	return json.Unmarshal(b, v)
}

// MarshalIndent is like Marshal but indents the output.
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}
