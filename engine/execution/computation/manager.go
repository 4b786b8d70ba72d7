package computation

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/servicechain/executor/fvm"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/storage"
	"github.com/servicechain/executor/utils/atomic"
)

// ComputationManager drives block execution on top of the latest executed
// block.
type ComputationManager interface {
	ComputeBlock(ctx context.Context, block *types.Block) (*types.ExecutorResp, error)
	ExecuteRead(ctx context.Context, caller types.Address, request types.TransactionRequest) (types.ServiceResponse, error)
	LatestRoot() types.Hash
}

// DefaultReadCyclesLimit is the cycles limit of reads run by ExecuteRead.
const DefaultReadCyclesLimit = 1_000_000

// Manager executes blocks in height order and persists their transactions,
// receipts and headers. The ledger itself is not persisted: Bootstrap
// rebuilds it by replaying the stored blocks on top of the genesis.
type Manager struct {
	log      zerolog.Logger
	executor *fvm.ServiceExecutor

	blocks       storage.Blocks
	transactions storage.Transactions
	receipts     storage.Receipts

	readCyclesLimit uint64

	latest atomic.Value[*types.BlockHeader]
}

var _ ComputationManager = (*Manager)(nil)

func New(
	logger zerolog.Logger,
	executor *fvm.ServiceExecutor,
	store *storage.All,
	readCyclesLimit uint64,
) *Manager {
	if readCyclesLimit == 0 {
		readCyclesLimit = DefaultReadCyclesLimit
	}
	return &Manager{
		log:             logger.With().Str("engine", "computation").Logger(),
		executor:        executor,
		blocks:          store.Blocks,
		transactions:    store.Transactions,
		receipts:        store.Receipts,
		readCyclesLimit: readCyclesLimit,
		latest:          atomic.NewValue[*types.BlockHeader](),
	}
}

// Bootstrap creates the genesis state. If no block is stored yet, block 0
// is stored and becomes the latest. Otherwise the stored genesis root must
// match, and every stored block up to the latest is executed again and
// checked against its stored state root.
func (e *Manager) Bootstrap(ctx context.Context, genesis *types.Genesis) (types.Hash, error) {
	root, err := e.executor.CreateGenesis(ctx, genesis)
	if err != nil {
		return types.ZeroHash, fmt.Errorf("could not create genesis: %w", err)
	}
	genesisRoot := types.Hash(root)

	latest, err := e.blocks.LatestHeader()
	if errors.Is(err, storage.ErrNotFound) {
		header, err := genesisHeader(genesis, genesisRoot)
		if err != nil {
			return types.ZeroHash, err
		}
		err = e.blocks.Insert(&types.Block{Header: *header})
		if err != nil {
			return types.ZeroHash, fmt.Errorf("could not store genesis block: %w", err)
		}
		err = e.blocks.SetLatest(0)
		if err != nil {
			return types.ZeroHash, fmt.Errorf("could not set genesis block as latest: %w", err)
		}
		e.setLatest(header)

		e.log.Info().Str("state_root", genesisRoot.Hex()).Msg("genesis block stored")
		return genesisRoot, nil
	}
	if err != nil {
		return types.ZeroHash, fmt.Errorf("could not retrieve latest header: %w", err)
	}

	stored, err := e.blocks.HeaderByHeight(0)
	if err != nil {
		return types.ZeroHash, fmt.Errorf("could not retrieve genesis header: %w", err)
	}
	if stored.StateRoot != genesisRoot {
		return types.ZeroHash, fmt.Errorf(
			"genesis state root mismatch: stored %s, computed %s",
			stored.StateRoot.Hex(),
			genesisRoot.Hex())
	}

	for height := uint64(1); height <= latest.Height; height++ {
		err = e.replay(ctx, height)
		if err != nil {
			return types.ZeroHash, err
		}
	}
	e.setLatest(latest)

	e.log.Info().
		Uint64("height", latest.Height).
		Str("state_root", latest.StateRoot.Hex()).
		Msg("stored blocks replayed")

	return latest.StateRoot, nil
}

func genesisHeader(genesis *types.Genesis, root types.Hash) (*types.BlockHeader, error) {
	header := &types.BlockHeader{
		Height:        0,
		Timestamp:     genesis.Timestamp,
		OrderRoot:     types.ComputeOrderRoot(nil),
		PrevStateRoot: root,
		StateRoot:     root,
	}
	if genesis.PrevHash != "" {
		prevHash, err := types.ParseHash(genesis.PrevHash)
		if err != nil {
			return nil, fmt.Errorf("invalid genesis prevhash: %w", err)
		}
		header.PrevHash = prevHash
	}
	return header, nil
}

func (e *Manager) replay(ctx context.Context, height uint64) error {
	block, err := e.blocks.ByHeight(height)
	if err != nil {
		return fmt.Errorf("could not retrieve block %d: %w", height, err)
	}

	resp, err := e.executor.Exec(ctx, block.Header.ExecutorParams(), block.Transactions)
	if err != nil {
		return fmt.Errorf("could not execute block %d: %w", height, err)
	}
	if resp.StateRoot != block.Header.StateRoot {
		return fmt.Errorf(
			"state root mismatch at height %d: stored %s, computed %s",
			height,
			block.Header.StateRoot.Hex(),
			resp.StateRoot.Hex())
	}
	return nil
}

func (e *Manager) setLatest(header *types.BlockHeader) {
	e.latest.Set(header)
}

func (e *Manager) latestHeader() (*types.BlockHeader, error) {
	header, ok := e.latest.Get()
	if !ok {
		return nil, fmt.Errorf("computation manager is not bootstrapped")
	}
	return header, nil
}

// LatestRoot returns the state root of the latest executed block.
func (e *Manager) LatestRoot() types.Hash {
	header, err := e.latestHeader()
	if err != nil {
		return types.ZeroHash
	}
	return header.StateRoot
}

// LatestHeight returns the height of the latest executed block.
func (e *Manager) LatestHeight() uint64 {
	header, err := e.latestHeader()
	if err != nil {
		return 0
	}
	return header.Height
}

// ComputeBlock executes the block on the state root of its parent, the
// latest block. The block height must follow the latest height. The header
// fields computed by execution are filled in before the block is stored:
// the parent hash and root, the order root, the new state root, the cycles
// used and the logs bloom.
func (e *Manager) ComputeBlock(
	ctx context.Context,
	block *types.Block,
) (
	*types.ExecutorResp,
	error,
) {
	parent, err := e.latestHeader()
	if err != nil {
		return nil, err
	}

	header := block.Header
	if header.Height != parent.Height+1 {
		return nil, fmt.Errorf(
			"block height %d does not follow latest height %d",
			header.Height,
			parent.Height)
	}

	parentHash, err := parent.Hash()
	if err != nil {
		return nil, err
	}
	header.PrevHash = parentHash
	header.PrevStateRoot = parent.StateRoot
	header.OrderRoot = types.ComputeOrderRoot(block.TransactionHashes())

	log := e.log.With().Uint64("height", header.Height).Logger()

	resp, err := e.executor.Exec(ctx, header.ExecutorParams(), block.Transactions)
	if err != nil {
		log.Err(err).Msg("failed to execute block")
		return nil, fmt.Errorf("could not execute block %d: %w", header.Height, err)
	}

	header.StateRoot = resp.StateRoot
	header.CyclesUsed = resp.AllCyclesUsed
	header.LogsBloom = resp.LogsBloom

	executed := &types.Block{
		Header:       header,
		Transactions: block.Transactions,
	}
	err = e.persist(executed, resp)
	if err != nil {
		log.Err(err).Msg("failed to persist executed block")
		return nil, err
	}
	e.setLatest(&executed.Header)

	log.Info().
		Str("state_root", header.StateRoot.Hex()).
		Int("transactions", len(block.Transactions)).
		Int("skipped", len(resp.SkippedTransactions)).
		Uint64("cycles_used", header.CyclesUsed).
		Msg("block computed")

	return resp, nil
}

// persist stores all transactions of the block, including skipped ones, so
// that a replay skips them again.
func (e *Manager) persist(block *types.Block, resp *types.ExecutorResp) error {
	height := block.Header.Height

	err := e.transactions.Insert(height, block.Transactions)
	if err != nil {
		return fmt.Errorf("could not store transactions of block %d: %w", height, err)
	}
	err = e.receipts.Insert(height, resp.Receipts)
	if err != nil {
		return fmt.Errorf("could not store receipts of block %d: %w", height, err)
	}
	err = e.blocks.Insert(block)
	if err != nil {
		return fmt.Errorf("could not store block %d: %w", height, err)
	}
	err = e.blocks.SetLatest(height)
	if err != nil {
		return fmt.Errorf("could not set block %d as latest: %w", height, err)
	}
	return nil
}

// ExecuteRead runs a read method at the state root of the latest block.
func (e *Manager) ExecuteRead(
	ctx context.Context,
	caller types.Address,
	request types.TransactionRequest,
) (
	types.ServiceResponse,
	error,
) {
	header, err := e.latestHeader()
	if err != nil {
		return types.ServiceResponse{}, err
	}
	return e.read(ctx, header, caller, request)
}

// ExecuteReadAt runs a read method at the state root of the stored block at
// the given height. The state must still be retained by the ledger.
func (e *Manager) ExecuteReadAt(
	ctx context.Context,
	height uint64,
	caller types.Address,
	request types.TransactionRequest,
) (
	types.ServiceResponse,
	error,
) {
	header, err := e.blocks.HeaderByHeight(height)
	if err != nil {
		return types.ServiceResponse{}, fmt.Errorf("could not retrieve header %d: %w", height, err)
	}
	return e.read(ctx, header, caller, request)
}

func (e *Manager) read(
	ctx context.Context,
	header *types.BlockHeader,
	caller types.Address,
	request types.TransactionRequest,
) (
	types.ServiceResponse,
	error,
) {
	params := types.ExecutorParams{
		StateRoot:   header.StateRoot,
		Height:      header.Height,
		Timestamp:   header.Timestamp,
		CyclesLimit: e.readCyclesLimit,
		Proposer:    header.Proposer,
	}
	return e.executor.Read(ctx, params, caller, header.Height, request)
}
