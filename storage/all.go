package storage

// All includes all the storage modules
type All struct {
	Transactions Transactions
	Receipts     Receipts
	Blocks       Blocks
	Proofs       Proofs
}
