package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/servicechain/executor/model/types"
)

const (

	// codes for special database markers
	codeLatestHeight = 1
	codeLatestProof  = 2

	// codes for blocks
	codeHeader            = 10
	codeBlockTransactions = 11

	// codes for entities, keyed by height and hash
	codeTransaction = 20
	codeReceipt     = 21

	// codes for indexes from hash to height
	codeTransactionHeight = 30
	codeReceiptHeight     = 31
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := []byte{code}
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case types.Hash:
		return i[:]
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}
