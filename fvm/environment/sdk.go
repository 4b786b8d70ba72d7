package environment

import (
	"github.com/servicechain/executor/fvm/meter"
	"github.com/servicechain/executor/model/types"
)

type MethodKind uint8

const (
	MethodKindRead MethodKind = iota
	MethodKindWrite
)

func (k MethodKind) String() string {
	switch k {
	case MethodKindRead:
		return "read"
	case MethodKindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Handler executes a service method. Failures are reported through the
// response code; errors returned by the SDK while handling are sticky and
// take precedence over the response.
type Handler func(payload string) types.ServiceResponse

// Method is a named entry point of a service. Cycles is the base cost
// charged on every invocation, on top of the cost of the SDK operations the
// handler performs.
type Method struct {
	Name    string
	Kind    MethodKind
	Cycles  uint64
	Handler Handler
}

// ServiceResolver resolves a method of a service of the current session.
type ServiceResolver interface {
	ResolveMethod(service string, method string) (Method, error)
}

// ServiceContext describes the invocation a service is currently handling.
type ServiceContext struct {
	// Caller is the sender of the transaction, or the caller of a read.
	Caller types.Address
	// CallerService is the service that issued the current call, empty for
	// the root invocation of a transaction or read.
	CallerService string
	Service       string

	Height    uint64
	Timestamp uint64
	Proposer  types.Address

	TxHash      types.Hash
	Nonce       types.Hash
	CyclesPrice uint64
	CyclesLimit uint64
	CyclesUsed  uint64

	ReadOnly bool
}

// ServiceSDK is the capability surface handed to a service. State access is
// scoped to the namespace of the service the handle was created for.
//
// Every operation is metered. Once an operation fails, the error is sticky:
// every later operation of the transaction fails with the same error.
type ServiceSDK interface {
	// GetValue decodes the value stored under key into v. It returns false if
	// the key is not set.
	GetValue(key string, v interface{}) (bool, error)
	// SetValue stores the canonical CBOR encoding of v under key.
	SetValue(key string, v interface{}) error
	Remove(key string) error

	GetRaw(key string) ([]byte, error)
	SetRaw(key string, value []byte) error

	CallRead(service string, method string, payload string) (types.ServiceResponse, error)
	CallWrite(service string, method string, payload string) (types.ServiceResponse, error)

	EmitEvent(topic string, data string) error

	// Meter charges computation not covered by the other operations, such
	// as VM instructions.
	Meter(kind meter.ComputationKind, intensity uint) error

	Context() ServiceContext
}
