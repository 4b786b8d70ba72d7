package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorsCollector(t *testing.T) {
	t.Run("no error", func(t *testing.T) {
		collector := NewErrorsCollector()

		err := collector.ErrorOrNil()
		require.Nil(t, err)
		require.False(t, collector.CollectedFailure())
		require.False(t, collector.CollectedError())

		collector.Collect(nil)
		require.Nil(t, collector.ErrorOrNil())
	})

	t.Run("failure only", func(t *testing.T) {
		collector := NewErrorsCollector()

		failure := NewLedgerFailure(fmt.Errorf("fatal"))
		collector.Collect(failure)

		require.True(t, collector.CollectedError())
		require.True(t, collector.CollectedFailure())

		err := collector.ErrorOrNil()
		require.NotNil(t, err)
		require.ErrorContains(t, err, "fatal")
		require.True(t, IsFailure(err))
		require.True(t, IsLedgerFailure(err))
	})

	t.Run("error only", func(t *testing.T) {
		collector := NewErrorsCollector()

		require.False(t, collector.CollectedError())
		require.False(t, collector.CollectedFailure())

		exhausted := NewCyclesExhaustedError(5)
		collector.Collect(exhausted)

		require.True(t, collector.CollectedError())
		require.False(t, collector.CollectedFailure())

		err := collector.ErrorOrNil()
		require.Equal(t, exhausted, err)
		require.False(t, IsFailure(err))
	})

	t.Run("multiple errors", func(t *testing.T) {
		collector := NewErrorsCollector()

		collector.Collect(NewCyclesExhaustedError(5))
		collector.Collect(NewTransactionFeeDeductionFailedError(
			testPayer("payer"),
			5,
			fmt.Errorf("insufficient balance")))

		require.True(t, collector.CollectedError())
		require.False(t, collector.CollectedFailure())

		err := collector.ErrorOrNil()
		require.False(t, IsFailure(err))
		require.True(t, IsCyclesExhaustedError(err))
		require.True(t, IsTransactionFeeDeductionFailedError(err))
		require.ErrorContains(t, err, "cycles exhausted")
		require.ErrorContains(t, err, "insufficient balance")
	})

	t.Run("unknown error becomes failure", func(t *testing.T) {
		collector := NewErrorsCollector()

		collector.Collect(NewCyclesExhaustedError(5))
		require.False(t, collector.CollectedFailure())

		collector.Collect(fmt.Errorf("fatal"))
		require.True(t, collector.CollectedFailure())

		_, failure := SplitErrorTypes(collector.ErrorOrNil())
		require.NotNil(t, failure)
		require.Equal(t, FailureCodeUnknownFailure, failure.FailureCode())
	})

	t.Run("first failure wins", func(t *testing.T) {
		collector := NewErrorsCollector()

		collector.Collect(NewCyclesExhaustedError(5))
		collector.Collect(NewLedgerFailure(fmt.Errorf("fatal1")))
		collector.Collect(NewStateMergeFailure(fmt.Errorf("fatal2")))
		collector.Collect(NewWriteInReadContextError("asset", "set_value"))

		require.True(t, collector.CollectedFailure())

		err := collector.ErrorOrNil()
		require.ErrorContains(t, err, "fatal1")
		require.ErrorContains(t, err, "fatal2")

		txErr, failure := SplitErrorTypes(err)
		require.Nil(t, txErr)
		require.Equal(t, FailureCodeLedgerFailure, failure.FailureCode())
	})
}

type testPayer string

func (p testPayer) String() string {
	return string(p)
}
