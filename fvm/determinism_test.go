package fvm_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/utils/unittest"
)

const supply = 10_000

type transferStep struct {
	from        int
	to          int
	value       uint64
	cyclesLimit uint64
}

func drawSteps(t *rapid.T, accounts int) []transferStep {
	return rapid.SliceOfN(
		rapid.Custom(func(t *rapid.T) transferStep {
			return transferStep{
				from:        rapid.IntRange(0, accounts-1).Draw(t, "from"),
				to:          rapid.IntRange(0, accounts-1).Draw(t, "to"),
				value:       rapid.Uint64Range(0, supply/2).Draw(t, "value"),
				cyclesLimit: rapid.Uint64Range(1, 30).Draw(t, "cycles_limit"),
			}
		}),
		1,
		20,
	).Draw(t, "steps")
}

// TestExec_Determinism executes the same random blocks on two independent
// executors and requires identical roots and receipts, and that fees and
// transfers never create or destroy tokens.
func TestExec_Determinism(t *testing.T) {
	accounts := unittest.AddressListFixture(4)
	proposer := unittest.AddressFixture()
	genesis := unittest.GenesisFixture(t, accounts[0], supply)

	rapid.Check(t, func(rt *rapid.T) {
		steps := drawSteps(rt, len(accounts))
		blockSize := rapid.IntRange(1, 5).Draw(rt, "block_size")

		harnesses := []*unittest.ExecutionHarness{
			unittest.NewExecutionHarness(rt, genesis, nil),
			unittest.NewExecutionHarness(rt, genesis, nil),
		}
		for _, h := range harnesses {
			h.Proposer = proposer
		}
		require.Equal(rt, harnesses[0].Root, harnesses[1].Root)

		for start := 0; start < len(steps); start += blockSize {
			end := start + blockSize
			if end > len(steps) {
				end = len(steps)
			}

			txs := make([]types.SignedTransaction, 0, end-start)
			for _, step := range steps[start:end] {
				txs = append(txs, transfer(
					harnesses[0],
					accounts[step.from],
					accounts[step.to],
					step.value,
					unittest.WithCycles(step.cyclesLimit, 1)))
			}

			first := harnesses[0].ExecBlock(txs...)
			second := harnesses[1].ExecBlock(txs...)
			require.Equal(rt, first, second)
		}

		h := harnesses[0]
		total := h.NativeBalance(proposer)
		for _, account := range accounts {
			total += h.NativeBalance(account)
		}
		require.Equal(rt, uint64(supply), total)
	})
}

// TestExec_RevertedTransactionKeepsOnlyFee requires that a transaction whose
// body fails leaves the same root as a block where it is replaced by a plain
// transfer of its fee to the proposer.
func TestExec_RevertedTransactionKeepsOnlyFee(t *testing.T) {
	sender := unittest.AddressFixture()
	recipient := unittest.AddressFixture()
	proposer := unittest.AddressFixture()
	genesis := unittest.GenesisFixture(t, sender, 1_000)

	rapid.Check(t, func(rt *rapid.T) {
		first := rapid.Uint64Range(1, 900).Draw(rt, "first")
		second := rapid.Uint64Range(1, 2_000).Draw(rt, "second")

		reverted := unittest.NewExecutionHarness(rt, genesis, nil)
		feeOnly := unittest.NewExecutionHarness(rt, genesis, nil)
		reverted.Proposer = proposer
		feeOnly.Proposer = proposer

		tx := transfer(reverted, sender, recipient, first, unittest.WithCycles(100, 1))
		resp := reverted.ExecBlock(
			tx,
			transfer(reverted, sender, recipient, second, unittest.WithCycles(100, 1)))
		require.Len(rt, resp.Receipts, 2)
		require.False(rt, resp.Receipts[0].Failed())

		failed := resp.Receipts[1]
		if failed.Response.Code != common.CodeInsufficientBalance {
			return
		}
		require.NotZero(rt, failed.CyclesUsed)

		expected := feeOnly.ExecBlock(
			tx,
			transfer(feeOnly, sender, proposer, failed.CyclesUsed, unittest.WithCycles(100, 0)))
		require.False(rt, expected.Receipts[1].Failed())

		require.Equal(rt, expected.StateRoot, resp.StateRoot)
	})
}
