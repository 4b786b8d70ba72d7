package errors

import (
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrorsCollector collects a list of errors. The collected errors are
// wrapped into a single error, which should be returned by the function.
// Un-coded errors are collected as unknown failures.
type ErrorsCollector struct {
	errors  *multierror.Error
	failure CodedFailure
}

func NewErrorsCollector() *ErrorsCollector {
	return &ErrorsCollector{}
}

func (collector *ErrorsCollector) CollectedFailure() bool {
	return collector.failure != nil
}

func (collector *ErrorsCollector) CollectedError() bool {
	return collector.errors != nil
}

func (collector *ErrorsCollector) Collect(err error) *ErrorsCollector {
	if err == nil {
		return collector
	}

	_, failure := SplitErrorTypes(err)
	if failure != nil {
		if collector.failure == nil {
			collector.failure = failure
		}
		if findShallowestFailure(err) == nil {
			err = failure
		}
	}

	if collector.errors == nil {
		collector.errors = &multierror.Error{ErrorFormat: formatErrors}
	}
	collector.errors = multierror.Append(collector.errors, err)
	return collector
}

// ErrorOrNil returns nil if no error was collected. Once a failure is
// collected, the returned error is a failure carrying the first failure's
// code.
func (collector *ErrorsCollector) ErrorOrNil() error {
	if collector.errors == nil {
		return nil
	}

	if collector.failure != nil {
		return WrapCodedFailure(
			collector.failure.FailureCode(),
			collector.errors,
			"failure caused by")
	}

	if len(collector.errors.Errors) == 1 {
		return collector.errors.Errors[0]
	}
	return collector.errors
}

func formatErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}
