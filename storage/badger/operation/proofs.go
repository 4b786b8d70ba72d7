package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/servicechain/executor/model/types"
)

func UpdateLatestProof(proof *types.Proof) func(*badger.Txn) error {
	return upsert(makePrefix(codeLatestProof), proof)
}

func RetrieveLatestProof(proof *types.Proof) func(*badger.Txn) error {
	return retrieve(makePrefix(codeLatestProof), proof)
}
