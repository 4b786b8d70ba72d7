package types

// ExecutorParams are the block-level inputs of an execution.
type ExecutorParams struct {
	StateRoot   Hash    `json:"state_root"`
	Height      uint64  `json:"height"`
	Timestamp   uint64  `json:"timestamp"`
	CyclesLimit uint64  `json:"cycles_limit"`
	Proposer    Address `json:"proposer"`
}

// ExecutorResp is the outcome of executing a batch of transactions.
type ExecutorResp struct {
	StateRoot     Hash      `json:"state_root"`
	Receipts      []Receipt `json:"receipts"`
	AllCyclesUsed uint64    `json:"all_cycles_used"`
	LogsBloom     Bloom     `json:"logs_bloom"`
	// SkippedTransactions lists transactions left out by the block cycles limit.
	// They are neither executed nor charged.
	SkippedTransactions []Hash `json:"skipped_transactions"`
}

// ReceiptByHash returns the receipt of the given transaction.
func (r *ExecutorResp) ReceiptByHash(txHash Hash) (Receipt, bool) {
	for _, receipt := range r.Receipts {
		if receipt.TxHash == txHash {
			return receipt, true
		}
	}
	return Receipt{}, false
}
