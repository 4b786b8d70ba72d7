package fvm

import (
	"fmt"
	"math"

	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/module/trace"
	"github.com/servicechain/executor/model/types"
)

// CheckPayerBalance verifies that the sender can cover the maximum fee of
// the transaction, cycles limit times cycles price. The check is not
// metered: its cost is static.
func (executor *transactionExecutor) CheckPayerBalance() error {
	if executor.feeCollector == nil {
		// This is also the condition that gets hit when fees are disabled.
		return nil
	}

	payer := executor.tx.Raw.Sender
	maxFee, ok := executor.tx.Raw.MaxFee()
	if !ok {
		maxFee = math.MaxUint64
	}

	var balance uint64
	var err error
	executor.txnState().RunWithAllLimitsDisabled(func() {
		err = executor.env().RunAs(executor.ctx.FeeService, func() error {
			var balanceErr error
			balance, balanceErr = executor.feeCollector.PayerBalance(payer)
			return balanceErr
		})
	})
	if err != nil {
		return errors.NewPayerBalanceCheckFailure(payer.Hex(), err)
	}

	if !ok || balance < maxFee {
		return errors.NewInsufficientPayerBalanceError(payer, balance, maxFee)
	}
	return nil
}

// deductTransactionFees moves cycles used times cycles price from the
// sender to the block proposer. It must run with limits disabled.
func (executor *transactionExecutor) deductTransactionFees() error {
	executor.cyclesUsed = executor.txnCyclesUsed()
	if executor.feeCollector == nil {
		return nil
	}

	span := executor.ctx.startChildSpan(executor.span, trace.EXEDeductTransactionFee)
	defer span.End()

	payer := executor.tx.Raw.Sender
	// cannot overflow: the payer balance check bounds limit times price
	fee := executor.cyclesUsed * executor.tx.Raw.CyclesPrice
	if fee == 0 {
		return nil
	}

	var response types.ServiceResponse
	err := executor.env().RunAs(executor.ctx.FeeService, func() error {
		response = executor.feeCollector.CollectFee(
			payer,
			executor.params.Proposer,
			fee)
		return nil
	})
	if err != nil {
		return errors.NewTransactionFeeDeductionFailedError(payer, fee, err)
	}

	if response.IsError() {
		return errors.NewTransactionFeeDeductionFailedError(
			payer,
			fee,
			fmt.Errorf("code %d: %s", response.Code, response.ErrorMessage))
	}
	return nil
}
