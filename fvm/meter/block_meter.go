package meter

// BlockMeter tracks the cycles budget of a whole block. Each admitted
// transaction gets its own Meter bounded by the remaining block budget.
type BlockMeter struct {
	limit uint64
	used  uint64

	options []MeterOptions
}

func NewBlockMeter(limit uint64, options ...MeterOptions) *BlockMeter {
	return &BlockMeter{
		limit:   limit,
		options: options,
	}
}

func (b *BlockMeter) Remaining() uint64 {
	return b.limit - b.used
}

func (b *BlockMeter) Used() uint64 {
	return b.used
}

func (b *BlockMeter) Limit() uint64 {
	return b.limit
}

// Admit returns false if a transaction with the given cycles limit could
// exceed the remaining block budget.
func (b *BlockMeter) Admit(txLimit uint64) bool {
	return txLimit <= b.Remaining()
}

// TransactionLimit returns min(remaining, txLimit).
func (b *BlockMeter) TransactionLimit(txLimit uint64) uint64 {
	if remaining := b.Remaining(); remaining < txLimit {
		return remaining
	}
	return txLimit
}

// Open returns a transaction meter bounded by TransactionLimit.
func (b *BlockMeter) Open(txLimit uint64) *Meter {
	return NewMeter(b.TransactionLimit(txLimit), b.options...)
}

// Charge deducts used cycles from the block budget. Charges beyond the
// remaining budget are capped.
func (b *BlockMeter) Charge(used uint64) {
	if used > b.Remaining() {
		used = b.Remaining()
	}
	b.used += used
}
