package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/servicechain/executor/model/encoding/cbor"
)

// BlockHeader is the header of an executed block.
type BlockHeader struct {
	ChainID     Hash    `json:"chain_id" cbor:"chain_id"`
	Height      uint64  `json:"height" cbor:"height"`
	PrevHash    Hash    `json:"prev_hash" cbor:"prev_hash"`
	Timestamp   uint64  `json:"timestamp" cbor:"timestamp"`
	OrderRoot   Hash    `json:"order_root" cbor:"order_root"`
	Proposer    Address `json:"proposer" cbor:"proposer"`
	CyclesLimit uint64  `json:"cycles_limit" cbor:"cycles_limit"`
	// PrevStateRoot is the root the block was executed on.
	PrevStateRoot Hash `json:"prev_state_root" cbor:"prev_state_root"`
	// StateRoot is the root after executing the block.
	StateRoot  Hash   `json:"state_root" cbor:"state_root"`
	CyclesUsed uint64 `json:"cycles_used" cbor:"cycles_used"`
	LogsBloom  Bloom  `json:"logs_bloom" cbor:"logs_bloom"`
}

// Hash returns the block hash: the SHA3-256 digest of the canonical CBOR encoding of the header.
func (h BlockHeader) Hash() (Hash, error) {
	encoded, err := cbor.Marshal(h)
	if err != nil {
		return ZeroHash, fmt.Errorf("could not encode block header: %w", err)
	}
	return Digest(encoded), nil
}

// ExecutorParams returns the execution parameters of the block.
func (h BlockHeader) ExecutorParams() ExecutorParams {
	return ExecutorParams{
		StateRoot:   h.PrevStateRoot,
		Height:      h.Height,
		Timestamp:   h.Timestamp,
		CyclesLimit: h.CyclesLimit,
		Proposer:    h.Proposer,
	}
}

// Block is a header with the ordered transactions it carries.
type Block struct {
	Header       BlockHeader         `json:"header"`
	Transactions []SignedTransaction `json:"transactions"`
}

// TransactionHashes returns the hashes of the block's transactions, in order.
func (b *Block) TransactionHashes() []Hash {
	hashes := make([]Hash, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.TxHash
	}
	return hashes
}

// ComputeOrderRoot returns the digest over the ordered transaction hashes.
func ComputeOrderRoot(txHashes []Hash) Hash {
	if len(txHashes) == 0 {
		return ZeroHash
	}
	data := make([]byte, 0, len(txHashes)*HashLen)
	for _, h := range txHashes {
		data = append(data, h[:]...)
	}
	return Digest(data)
}

// Proof is the consensus proof of a block.
type Proof struct {
	Height    uint64        `json:"height"`
	Round     uint64        `json:"round"`
	BlockHash Hash          `json:"block_hash"`
	Signature hexutil.Bytes `json:"signature"`
	Bitmap    hexutil.Bytes `json:"bitmap"`
}
