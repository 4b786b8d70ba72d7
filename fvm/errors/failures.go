package errors

import (
	"strings"
)

func NewUnknownFailure(err error) CodedFailure {
	return WrapCodedFailure(
		FailureCodeUnknownFailure,
		err,
		"unknown failure")
}

// NewEncodingFailuref constructs a new CodedFailure which indicates that
// state or payload encoding failed inside the engine.
func NewEncodingFailuref(
	err error,
	msg string,
	args ...interface{},
) CodedFailure {
	return WrapCodedFailure(
		FailureCodeEncodingFailure,
		err,
		"encoding failed: "+msg,
		args...)
}

// NewLedgerFailure constructs a new CodedFailure which indicates a ledger
// read or commit failure.
func NewLedgerFailure(err error) CodedFailure {
	return WrapCodedFailure(
		FailureCodeLedgerFailure,
		err,
		"ledger returns unsuccessful")
}

// IsLedgerFailure returns true if the error or any of the wrapped errors is
// a ledger failure.
func IsLedgerFailure(err error) bool {
	return HasFailureCode(err, FailureCodeLedgerFailure)
}

// NewStateMergeFailure constructs a new CodedFailure which indicates that
// merging a nested execution state into its parent failed.
func NewStateMergeFailure(err error) CodedFailure {
	return WrapCodedFailure(
		FailureCodeStateMergeFailure,
		err,
		"cannot merge the state")
}

// NewUnknownServiceFailure constructs a new CodedFailure which indicates that
// a service name could not be resolved by the service mapping.
func NewUnknownServiceFailure(name string) CodedFailure {
	return NewCodedFailure(
		FailureCodeUnknownServiceFailure,
		"unknown service %q",
		name)
}

func IsUnknownServiceFailure(err error) bool {
	return HasFailureCode(err, FailureCodeUnknownServiceFailure)
}

// NewCyclicDependencyFailure constructs a new CodedFailure which indicates that
// service resolution revisited a service still under construction. path
// lists the construction stack, ending with the revisited name.
func NewCyclicDependencyFailure(path []string) CodedFailure {
	return NewCodedFailure(
		FailureCodeCyclicDependencyFailure,
		"cyclic service dependency: %s",
		strings.Join(path, " -> "))
}

func IsCyclicDependencyFailure(err error) bool {
	return HasFailureCode(err, FailureCodeCyclicDependencyFailure)
}

// NewGenesisServiceFailure constructs a new CodedFailure which indicates that
// the genesis hook of a service failed.
func NewGenesisServiceFailure(service string, err error) CodedFailure {
	return WrapCodedFailure(
		FailureCodeGenesisServiceFailure,
		err,
		"genesis of service %q failed",
		service)
}

func IsGenesisServiceFailure(err error) bool {
	return HasFailureCode(err, FailureCodeGenesisServiceFailure)
}

// NewStateNotFoundFailure constructs a new CodedFailure which indicates that
// the requested state root is unknown to the ledger.
func NewStateNotFoundFailure(err error) CodedFailure {
	return WrapCodedFailure(
		FailureCodeStateNotFoundFailure,
		err,
		"state root not found")
}

func IsStateNotFoundFailure(err error) bool {
	return HasFailureCode(err, FailureCodeStateNotFoundFailure)
}

// NewConcurrentExecutionFailure constructs a new CodedFailure which indicates
// that a block execution was requested while another one is in flight.
func NewConcurrentExecutionFailure() CodedFailure {
	return NewCodedFailure(
		FailureCodeConcurrentExecutionFailure,
		"another block is being executed")
}

func IsConcurrentExecutionFailure(err error) bool {
	return HasFailureCode(err, FailureCodeConcurrentExecutionFailure)
}

func NewPayerBalanceCheckFailure(payer string, err error) CodedFailure {
	return WrapCodedFailure(
		FailureCodePayerBalanceCheckFailure,
		err,
		"failed to check if the payer %s has sufficient balance",
		payer)
}

// NewBlockHookFailure constructs a new CodedFailure which indicates that a
// block hook of a service failed.
func NewBlockHookFailure(service string, hook string, err error) CodedFailure {
	return WrapCodedFailure(
		FailureCodeBlockHookFailure,
		err,
		"%s of service %q failed",
		hook,
		service)
}

func NewServiceConstructionFailure(service string, err error) CodedFailure {
	return WrapCodedFailure(
		FailureCodeServiceConstructionFailure,
		err,
		"cannot construct service %q",
		service)
}
