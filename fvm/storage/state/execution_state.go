package state

import (
	"fmt"

	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/fvm/meter"
	"github.com/servicechain/executor/fvm/storage/snapshot"
)

const (
	DefaultMaxKeySize   = 16_000     // ~16KB
	DefaultMaxValueSize = 64_000_000 // ~64MB
)

// ExecutionState provides active storage and meter for a (nested)
// execution. A child state shares the meter and the limits enforcement of
// its parent.
type ExecutionState struct {
	// NOTE: A finalized state is no longer accessible. It can however be
	// re-attached to another transaction and be committed (for cached result
	// bookkeeping purpose).
	finalized bool

	*storageState
	meter *meter.Meter

	// NOTE: parent and child state shares the same limits controller
	*limitsController
}

type StateParameters struct {
	meterOptions []meter.MeterOptions

	maxKeySizeAllowed   uint64
	maxValueSizeAllowed uint64
}

func DefaultParameters() StateParameters {
	return StateParameters{
		maxKeySizeAllowed:   DefaultMaxKeySize,
		maxValueSizeAllowed: DefaultMaxValueSize,
	}
}

// WithMeterOptions sets the options of the meters created for nested
// transactions.
func (params StateParameters) WithMeterOptions(
	options ...meter.MeterOptions,
) StateParameters {
	newParams := params
	newParams.meterOptions = options
	return newParams
}

// WithMaxKeySizeAllowed sets limit on max key size
func (params StateParameters) WithMaxKeySizeAllowed(
	limit uint64,
) StateParameters {
	newParams := params
	newParams.maxKeySizeAllowed = limit
	return newParams
}

// WithMaxValueSizeAllowed sets limit on max value size
func (params StateParameters) WithMaxValueSizeAllowed(
	limit uint64,
) StateParameters {
	newParams := params
	newParams.maxValueSizeAllowed = limit
	return newParams
}

type limitsController struct {
	enforceLimits       bool
	meterOptions        []meter.MeterOptions
	maxKeySizeAllowed   uint64
	maxValueSizeAllowed uint64
}

func newLimitsController(params StateParameters) *limitsController {
	return &limitsController{
		enforceLimits:       true,
		meterOptions:        params.meterOptions,
		maxKeySizeAllowed:   params.maxKeySizeAllowed,
		maxValueSizeAllowed: params.maxValueSizeAllowed,
	}
}

func (controller *limitsController) RunWithAllLimitsDisabled(f func()) {
	if f == nil {
		return
	}
	current := controller.enforceLimits
	controller.enforceLimits = false
	f()
	controller.enforceLimits = current
}

// NewExecutionState constructs a new state. The state is not metered until
// a meter is attached with NewChildWithMeter.
func NewExecutionState(
	snapshot snapshot.StorageSnapshot,
	params StateParameters,
) *ExecutionState {
	return &ExecutionState{
		finalized:        false,
		storageState:     newStorageState(snapshot),
		limitsController: newLimitsController(params),
	}
}

// NewChildWithMeter generates a new child state using the provide meter.
func (state *ExecutionState) NewChildWithMeter(
	m *meter.Meter,
) *ExecutionState {
	return &ExecutionState{
		finalized:        false,
		storageState:     state.storageState.NewChild(),
		meter:            m,
		limitsController: state.limitsController,
	}
}

// NewChild generates a new child state that shares the parent's meter.
func (state *ExecutionState) NewChild() *ExecutionState {
	return state.NewChildWithMeter(state.meter)
}

// NewMeter constructs a meter with the given limit and the configured
// weights.
func (state *ExecutionState) NewMeter(limit uint64) *meter.Meter {
	return meter.NewMeter(limit, state.meterOptions...)
}

// Meter returns the attached meter, or nil.
func (state *ExecutionState) Meter() *meter.Meter {
	return state.meter
}

// Get returns a register value given owner and key
func (state *ExecutionState) Get(id snapshot.RegisterID) (snapshot.RegisterValue, error) {
	if state.finalized {
		return nil, fmt.Errorf("cannot Get on a finalized state")
	}

	if state.enforceLimits {
		if err := state.checkSize(id, []byte{}); err != nil {
			return nil, err
		}
	}

	value, err := state.storageState.Get(id)
	if err != nil {
		return nil, errors.NewLedgerFailure(err)
	}
	return value, nil
}

// Set updates state delta with a register update
func (state *ExecutionState) Set(id snapshot.RegisterID, value snapshot.RegisterValue) error {
	if state.finalized {
		return fmt.Errorf("cannot Set on a finalized state")
	}

	if state.enforceLimits {
		if err := state.checkSize(id, value); err != nil {
			return err
		}
	}

	return state.storageState.Set(id, value)
}

// MeterComputation meters computation usage
func (state *ExecutionState) MeterComputation(kind meter.ComputationKind, intensity uint) error {
	if state.finalized {
		return fmt.Errorf("cannot MeterComputation on a finalized state")
	}

	if state.enforceLimits && state.meter != nil {
		return state.meter.MeterComputation(kind, intensity)
	}
	return nil
}

// TotalComputationUsed returns total computation used
func (state *ExecutionState) TotalComputationUsed() uint64 {
	if state.meter == nil {
		return 0
	}
	return state.meter.TotalComputationUsed()
}

// TotalComputationLimit returns the total computation limit
func (state *ExecutionState) TotalComputationLimit() uint64 {
	if state.meter == nil {
		return 0
	}
	return state.meter.TotalComputationLimit()
}

// ComputationIntensities returns computation intensities
func (state *ExecutionState) ComputationIntensities() meter.MeteredComputationIntensities {
	if state.meter == nil {
		return meter.MeteredComputationIntensities{}
	}
	return state.meter.ComputationIntensities()
}

// EnforceLimits reports whether limits are currently enforced.
func (state *ExecutionState) EnforceLimits() bool {
	return state.enforceLimits
}

func (state *ExecutionState) Finalize() *snapshot.ExecutionSnapshot {
	state.finalized = true
	return state.storageState.Finalize()
}

// Merge merges the changes from a child execution state into this one.
func (state *ExecutionState) Merge(other *snapshot.ExecutionSnapshot) error {
	if state.finalized {
		return fmt.Errorf("cannot Merge on a finalized state")
	}

	err := state.storageState.Merge(other)
	if err != nil {
		return errors.NewStateMergeFailure(err)
	}
	return nil
}

func (state *ExecutionState) checkSize(
	id snapshot.RegisterID,
	value snapshot.RegisterValue,
) error {
	keySize := uint64(id.Size())
	valueSize := uint64(len(value))
	if keySize > state.maxKeySizeAllowed {
		return errors.NewStateKeySizeLimitError(
			id.Namespace,
			id.Key,
			keySize,
			state.maxKeySizeAllowed)
	}
	if valueSize > state.maxValueSizeAllowed {
		return errors.NewStateValueSizeLimitError(
			id.Namespace,
			id.Key,
			valueSize,
			state.maxValueSizeAllowed)
	}
	return nil
}
