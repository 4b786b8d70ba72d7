package badger

import (
	"github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"

	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/storage"
	"github.com/servicechain/executor/storage/badger/operation"
)

type Proofs struct {
	db *badger.DB
}

var _ storage.Proofs = (*Proofs)(nil)

func NewProofs(db *badger.DB) *Proofs {
	return &Proofs{db: db}
}

func (p *Proofs) UpdateLatest(proof *types.Proof) error {
	err := p.db.Update(operation.UpdateLatestProof(proof))
	if err != nil {
		return errors.Wrap(err, "could not update latest proof")
	}
	return nil
}

func (p *Proofs) Latest() (*types.Proof, error) {
	var proof types.Proof
	err := p.db.View(operation.RetrieveLatestProof(&proof))
	if err != nil {
		return nil, errors.Wrap(err, "could not retrieve latest proof")
	}
	return &proof, nil
}
