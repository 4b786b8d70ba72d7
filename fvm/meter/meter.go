package meter

import (
	"github.com/servicechain/executor/fvm/errors"
)

type ComputationKind uint16

const (
	// [1_000, 2_000) reserved for the executor
	ComputationKindInvokeMethod ComputationKind = 1001
	ComputationKindGetValue     ComputationKind = 1002
	ComputationKindSetValue     ComputationKind = 1003
	ComputationKindRemoveValue  ComputationKind = 1004
	ComputationKindEmitEvent    ComputationKind = 1005
	ComputationKindCallService  ComputationKind = 1006
	// metered once per VMInstructionsPerUnit instructions
	ComputationKindVMInstructions ComputationKind = 1007
	// metered once per VMStringBytesPerUnit bytes
	ComputationKindVMStringBytes ComputationKind = 1008
)

// VMInstructionsPerUnit is the number of VM instructions covered by one unit
// of ComputationKindVMInstructions intensity.
const VMInstructionsPerUnit = 1_000

// VMStringBytesPerUnit is the number of bytes built by a VM library function
// covered by one unit of ComputationKindVMStringBytes intensity.
const VMStringBytesPerUnit = 1_000

func (kind ComputationKind) String() string {
	switch kind {
	case ComputationKindInvokeMethod:
		return "invoke_method"
	case ComputationKindGetValue:
		return "get_value"
	case ComputationKindSetValue:
		return "set_value"
	case ComputationKindRemoveValue:
		return "remove_value"
	case ComputationKindEmitEvent:
		return "emit_event"
	case ComputationKindCallService:
		return "call_service"
	case ComputationKindVMInstructions:
		return "vm_instructions"
	case ComputationKindVMStringBytes:
		return "vm_string_bytes"
	default:
		return "unknown"
	}
}

type ExecutionWeights map[ComputationKind]uint64

// DefaultComputationWeights is the default weights for computation intensities.
var DefaultComputationWeights = ExecutionWeights{
	ComputationKindInvokeMethod:   1,
	ComputationKindGetValue:       1,
	ComputationKindSetValue:       1,
	ComputationKindRemoveValue:    1,
	ComputationKindEmitEvent:      1,
	ComputationKindCallService:    1,
	ComputationKindVMInstructions: 1,
	ComputationKindVMStringBytes:  1,
}

type MeteredComputationIntensities map[ComputationKind]uint

// Meter collects computation usage and enforces the cycles limit. For each
// MeterComputation call it adds intensity multiplied by the weight of the
// kind to the total usage and returns an error if the limit is exceeded.
type Meter struct {
	computationUsed  uint64
	computationLimit uint64
	exhausted        bool

	computationIntensities MeteredComputationIntensities
	computationWeights     ExecutionWeights
}

type MeterOptions func(*Meter)

// NewMeter constructs a new Meter
func NewMeter(computationLimit uint64, options ...MeterOptions) *Meter {
	m := &Meter{
		computationLimit:       computationLimit,
		computationWeights:     DefaultComputationWeights,
		computationIntensities: make(MeteredComputationIntensities),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// WithComputationWeights sets the weights for computation intensities
func WithComputationWeights(weights ExecutionWeights) MeterOptions {
	return func(m *Meter) {
		m.computationWeights = weights
	}
}

// MeterComputation captures computation usage and returns an error if it goes beyond the limit
func (m *Meter) MeterComputation(kind ComputationKind, intensity uint) error {
	m.computationIntensities[kind] += intensity
	w, ok := m.computationWeights[kind]
	if !ok || intensity == 0 {
		return nil
	}

	cost := w * uint64(intensity)
	overflow := w != 0 && cost/w != uint64(intensity)
	if overflow || cost > m.computationLimit-m.computationUsed {
		m.computationUsed = m.computationLimit
		m.exhausted = true
		return errors.NewCyclesExhaustedError(m.computationLimit)
	}
	m.computationUsed += cost
	return nil
}

// ComputationIntensities returns all the measured computational intensities
func (m *Meter) ComputationIntensities() MeteredComputationIntensities {
	return m.computationIntensities
}

// TotalComputationUsed returns the total computation used. It never exceeds
// the limit: an exhausting call charges the remaining budget.
func (m *Meter) TotalComputationUsed() uint64 {
	return m.computationUsed
}

// TotalComputationLimit returns the total computation limit
func (m *Meter) TotalComputationLimit() uint64 {
	return m.computationLimit
}

// Exhausted returns true once a MeterComputation call went beyond the limit.
func (m *Meter) Exhausted() bool {
	return m.exhausted
}
