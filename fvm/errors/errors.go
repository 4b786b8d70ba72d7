package errors

import (
	stdErrors "errors"
	"fmt"
)

type Unwrappable interface {
	Unwrap() error
}

type CodedError interface {
	Code() ErrorCode

	Unwrappable
	error
}

type CodedFailure interface {
	FailureCode() FailureCode

	Unwrappable
	error
}

// Is is a utility function to call std error lib `Is` function for instance equality checks.
func Is(err error, target error) bool {
	return stdErrors.Is(err, target)
}

// As is a utility function to call std error lib `As` function.
// As finds the first error in err's chain that matches target,
// and if so, sets target to that error value and returns true. Otherwise, it returns false.
// The chain consists of err itself followed by the sequence of errors obtained by repeatedly calling Unwrap.
func As(err error, target interface{}) bool {
	return stdErrors.As(err, target)
}

// visit walks the error tree rooted at err in pre-order. Multi-errors
// (hashicorp/go-multierror and fmt.Errorf with several %w verbs) are expanded
// in their declared order. The walk stops as soon as fn returns false.
func visit(err error, fn func(error) bool) bool {
	if err == nil {
		return true
	}
	if !fn(err) {
		return false
	}

	switch e := err.(type) {
	case interface{ WrappedErrors() []error }:
		for _, inner := range e.WrappedErrors() {
			if !visit(inner, fn) {
				return false
			}
		}
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if !visit(inner, fn) {
				return false
			}
		}
	case Unwrappable:
		return visit(e.Unwrap(), fn)
	}
	return true
}

// findShallowestFailure returns the first coded failure found in the error
// tree, or nil.
func findShallowestFailure(err error) CodedFailure {
	var failure CodedFailure
	visit(err, func(e error) bool {
		if f, ok := e.(CodedFailure); ok {
			failure = f
			return false
		}
		return true
	})
	return failure
}

// findRootCodedError returns the deepest coded error of the error tree, or
// nil.
func findRootCodedError(err error) CodedError {
	var root CodedError
	visit(err, func(e error) bool {
		if coded, ok := e.(CodedError); ok {
			root = coded
		}
		return true
	})
	return root
}

// IsFailure returns true if the error is un-coded, or if the error contains
// a failure code.
func IsFailure(err error) bool {
	if err == nil {
		return false
	}
	return findShallowestFailure(err) != nil || findRootCodedError(err) == nil
}

// SplitErrorTypes splits the error into transaction-scoped errors and
// failures. The returned error's code is the root cause's code; the returned
// failure's code is the shallowest failure's code. Un-coded errors are
// classified as unknown failures.
func SplitErrorTypes(inp error) (err CodedError, failure CodedFailure) {
	if inp == nil {
		return nil, nil
	}

	if f := findShallowestFailure(inp); f != nil {
		return nil, WrapCodedFailure(f.FailureCode(), inp, "failure caused by")
	}

	if root := findRootCodedError(inp); root != nil {
		return WrapCodedError(root.Code(), inp, "error caused by"), nil
	}

	return nil, NewUnknownFailure(inp)
}

// Find finds the shallowest coded error with the given code in the tree.
func Find(originalErr error, code ErrorCode) CodedError {
	var found CodedError
	visit(originalErr, func(e error) bool {
		if coded, ok := e.(CodedError); ok && coded.Code() == code {
			found = coded
			return false
		}
		return true
	})
	return found
}

// FindFailure finds the shallowest coded failure with the given code in the
// tree.
func FindFailure(originalErr error, code FailureCode) CodedFailure {
	var found CodedFailure
	visit(originalErr, func(e error) bool {
		if coded, ok := e.(CodedFailure); ok && coded.FailureCode() == code {
			found = coded
			return false
		}
		return true
	})
	return found
}

func HasErrorCode(err error, code ErrorCode) bool {
	return Find(err, code) != nil
}

func HasFailureCode(err error, code FailureCode) bool {
	return FindFailure(err, code) != nil
}

type codedError struct {
	code ErrorCode

	err error
}

var _ CodedError = codedError{}

func newError(code ErrorCode, rootCause error) codedError {
	return codedError{
		code: code,
		err:  rootCause,
	}
}

func WrapCodedError(
	code ErrorCode,
	err error,
	prefixMsgFormat string,
	formatArguments ...interface{},
) codedError {
	if prefixMsgFormat != "" {
		msg := fmt.Sprintf(prefixMsgFormat, formatArguments...)
		err = fmt.Errorf("%s: %w", msg, err)
	}
	return newError(code, err)
}

func NewCodedError(
	code ErrorCode,
	format string,
	formatArguments ...interface{},
) codedError {
	return newError(code, fmt.Errorf(format, formatArguments...))
}

func (err codedError) Unwrap() error {
	return err.err
}

func (err codedError) Error() string {
	return fmt.Sprintf("%v %v", err.code, err.err)
}

func (err codedError) Code() ErrorCode {
	return err.code
}

type codedFailure struct {
	code FailureCode
	err  error
}

var _ CodedFailure = codedFailure{}

func WrapCodedFailure(
	code FailureCode,
	err error,
	prefixMsgFormat string,
	formatArguments ...interface{},
) codedFailure {
	if prefixMsgFormat != "" {
		msg := fmt.Sprintf(prefixMsgFormat, formatArguments...)
		err = fmt.Errorf("%s: %w", msg, err)
	}
	return codedFailure{
		code: code,
		err:  err,
	}
}

func NewCodedFailure(
	code FailureCode,
	format string,
	formatArguments ...interface{},
) codedFailure {
	return codedFailure{
		code: code,
		err:  fmt.Errorf(format, formatArguments...),
	}
}

func (err codedFailure) Unwrap() error {
	return err.err
}

func (err codedFailure) Error() string {
	return fmt.Sprintf("%v %v", err.code, err.err)
}

func (err codedFailure) FailureCode() FailureCode {
	return err.code
}
