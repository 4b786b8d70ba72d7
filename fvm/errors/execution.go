package errors

import (
	"fmt"
)

// NewInvalidPayloadErrorf constructs a new CodedError which indicates that a
// service method could not decode or validate its payload.
func NewInvalidPayloadErrorf(
	service string,
	method string,
	msg string,
	args ...interface{},
) CodedError {
	return NewCodedError(
		ErrCodeInvalidPayloadError,
		"invalid payload for %s.%s: "+msg,
		append([]interface{}{service, method}, args...)...)
}

// NewMethodNotFoundError constructs a new CodedError which indicates that the
// target service does not declare the requested method.
func NewMethodNotFoundError(service string, method string) CodedError {
	return NewCodedError(
		ErrCodeMethodNotFoundError,
		"service %q has no method %q",
		service,
		method)
}

func IsMethodNotFoundError(err error) bool {
	return HasErrorCode(err, ErrCodeMethodNotFoundError)
}

// NewMethodKindMismatchError constructs a new CodedError which indicates that
// a read method was invoked as a write or the other way around.
func NewMethodKindMismatchError(
	service string,
	method string,
	expected string,
) CodedError {
	return NewCodedError(
		ErrCodeMethodKindMismatchError,
		"method %s.%s is not a %s method",
		service,
		method,
		expected)
}

func IsMethodKindMismatchError(err error) bool {
	return HasErrorCode(err, ErrCodeMethodKindMismatchError)
}

// NewWriteInReadContextError constructs a new CodedError which indicates
// that a state mutation was attempted while executing read-only.
func NewWriteInReadContextError(service string, operation string) CodedError {
	return NewCodedError(
		ErrCodeWriteInReadContextError,
		"%s by service %q is not allowed in a read-only context",
		operation,
		service)
}

func IsWriteInReadContextError(err error) bool {
	return HasErrorCode(err, ErrCodeWriteInReadContextError)
}

// NewServiceNotFoundError constructs a new CodedError which indicates that a
// nested call targeted a service the mapping does not know. An unknown
// service in the transaction request itself is a failure instead.
func NewServiceNotFoundError(caller string, service string) CodedError {
	return NewCodedError(
		ErrCodeServiceNotFoundError,
		"service %q called unknown service %q",
		caller,
		service)
}

// NewOperationNotSupportedError construct a new CodedError. It is generated
// when an operation (e.g. a genesis entry for a service without genesis
// support) is not supported.
func NewOperationNotSupportedError(operation string) CodedError {
	return NewCodedError(
		ErrCodeOperationNotSupportedError,
		"operation (%s) is not supported in this environment",
		operation)
}

// NewServiceResponseError constructs a new CodedError which carries a failed
// service response of the transaction's root invocation.
func NewServiceResponseError(
	service string,
	method string,
	code uint64,
	msg string,
) CodedError {
	return NewCodedError(
		ErrCodeServiceResponseError,
		"%s.%s responded with code %d: %s",
		service,
		method,
		code,
		msg)
}

func IsServiceResponseError(err error) bool {
	return HasErrorCode(err, ErrCodeServiceResponseError)
}

// NewServicePanicError constructs a new CodedError which indicates that a
// service method panicked.
func NewServicePanicError(
	service string,
	method string,
	recovered interface{},
) CodedError {
	return NewCodedError(
		ErrCodeServicePanicError,
		"%s.%s panicked: %v",
		service,
		method,
		recovered)
}

// NewStateKeySizeLimitError constructs a StateKeySizeLimitError.
func NewStateKeySizeLimitError(
	namespace string,
	key string,
	size uint64,
	limit uint64,
) CodedError {
	return NewCodedError(
		ErrCodeStateKeySizeLimitError,
		"key %s/%s has size %d which is higher than storage key size limit %d.",
		namespace,
		key,
		size,
		limit)
}

// NewStateValueSizeLimitError constructs a StateValueSizeLimitError.
func NewStateValueSizeLimitError(
	namespace string,
	key string,
	size uint64,
	limit uint64,
) CodedError {
	return NewCodedError(
		ErrCodeStateValueSizeLimitError,
		"value of key %s/%s has size %d which is higher than storage value size limit %d.",
		namespace,
		key,
		size,
		limit)
}

// NewTransactionFeeDeductionFailedError constructs a new CodedError which
// indicates that the fee could not be collected from the payer.
func NewTransactionFeeDeductionFailedError(
	payer fmt.Stringer,
	fee uint64,
	err error,
) CodedError {
	return WrapCodedError(
		ErrCodeTransactionFeeDeductionFailedError,
		err,
		"failed to deduct %d transaction fees from %s",
		fee,
		payer)
}

func IsTransactionFeeDeductionFailedError(err error) bool {
	return HasErrorCode(err, ErrCodeTransactionFeeDeductionFailedError)
}

// NewCyclesExhaustedError constructs a new CodedError which indicates that
// the transaction used up its cycles limit.
func NewCyclesExhaustedError(limit uint64) CodedError {
	return NewCodedError(
		ErrCodeCyclesExhaustedError,
		"cycles exhausted: limit %d reached",
		limit)
}

// IsCyclesExhaustedError returns true if error has this code.
func IsCyclesExhaustedError(err error) bool {
	return HasErrorCode(err, ErrCodeCyclesExhaustedError)
}

// NewInsufficientPayerBalanceError constructs a new CodedError which
// indicates that the payer cannot cover the maximum fee of the transaction.
func NewInsufficientPayerBalanceError(
	payer fmt.Stringer,
	balance uint64,
	required uint64,
) CodedError {
	return NewCodedError(
		ErrCodeInsufficientPayerBalance,
		"payer %s has insufficient balance to cover the maximum fee: required %d, available %d",
		payer,
		required,
		balance)
}

func IsInsufficientPayerBalanceError(err error) bool {
	return HasErrorCode(err, ErrCodeInsufficientPayerBalance)
}
