package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/servicechain/executor/model/encoding/cbor"
)

// TransactionRequest names the service method a transaction invokes.
type TransactionRequest struct {
	ServiceName string `json:"service_name" cbor:"service_name" validate:"required"`
	Method      string `json:"method" cbor:"method" validate:"required"`
	Payload     string `json:"payload" cbor:"payload"`
}

func (r TransactionRequest) String() string {
	return r.ServiceName + "." + r.Method
}

// RawTransaction is the signed part of a transaction.
type RawTransaction struct {
	ChainID     Hash               `json:"chain_id" cbor:"chain_id"`
	Nonce       Hash               `json:"nonce" cbor:"nonce"`
	Timeout     uint64             `json:"timeout" cbor:"timeout"`
	CyclesPrice uint64             `json:"cycles_price" cbor:"cycles_price"`
	CyclesLimit uint64             `json:"cycles_limit" cbor:"cycles_limit"`
	Request     TransactionRequest `json:"request" cbor:"request"`
	Sender      Address            `json:"sender" cbor:"sender"`
}

// Hash returns the transaction hash: the SHA3-256 digest of the canonical CBOR encoding.
func (tx RawTransaction) Hash() (Hash, error) {
	encoded, err := cbor.Marshal(tx)
	if err != nil {
		return ZeroHash, fmt.Errorf("could not encode raw transaction: %w", err)
	}
	return Digest(encoded), nil
}

// MaxFee returns the fee charged when all cycles of the limit are used.
// The second return value is false on overflow.
func (tx RawTransaction) MaxFee() (uint64, bool) {
	if tx.CyclesPrice != 0 && tx.CyclesLimit > ^uint64(0)/tx.CyclesPrice {
		return 0, false
	}
	return tx.CyclesLimit * tx.CyclesPrice, true
}

// SignedTransaction is a transaction envelope. The envelope signature is verified
// before the transaction reaches the executor.
type SignedTransaction struct {
	Raw       RawTransaction `json:"raw"`
	TxHash    Hash           `json:"tx_hash"`
	Pubkey    hexutil.Bytes  `json:"pubkey"`
	Signature hexutil.Bytes  `json:"signature"`
}

// NewSignedTransaction wraps a raw transaction, computing its hash.
func NewSignedTransaction(raw RawTransaction, pubkey []byte, signature []byte) (SignedTransaction, error) {
	txHash, err := raw.Hash()
	if err != nil {
		return SignedTransaction{}, err
	}
	return SignedTransaction{
		Raw:       raw,
		TxHash:    txHash,
		Pubkey:    pubkey,
		Signature: signature,
	}, nil
}

// Verify checks that the envelope hash matches the raw transaction.
func (tx SignedTransaction) Verify() error {
	expected, err := tx.Raw.Hash()
	if err != nil {
		return err
	}
	if expected != tx.TxHash {
		return fmt.Errorf("transaction hash mismatch: expected %s, got %s", expected, tx.TxHash)
	}
	return nil
}
