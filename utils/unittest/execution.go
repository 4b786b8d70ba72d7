package unittest

import (
	"context"

	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/fvm"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/ledger/complete"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/module/metrics"
	"github.com/servicechain/executor/services/admissioncontrol"
	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/services/governance"
	"github.com/servicechain/executor/services/kyc"
	"github.com/servicechain/executor/services/metadata"
	"github.com/servicechain/executor/services/servicemapping"
	"github.com/servicechain/executor/services/timestamp"
	"github.com/servicechain/executor/services/transferquota"
)

const (
	GenesisTimestamp   = 1_600_000_000
	BlockInterval      = 3
	DefaultBlockCycles = 1_000_000

	NativeAssetName   = "Native Token"
	NativeAssetSymbol = "NT"
	KycOrgName        = "Huobi"
)

// NativeAssetID is the id the asset service derives for the native asset
// of GenesisFixture.
var NativeAssetID = types.Digest([]byte(NativeAssetName + "/" + NativeAssetSymbol))

// Encode returns the JSON payload of v. Strings are returned as is.
func Encode(t require.TestingT, v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	payload, err := common.Encode(v)
	require.NoError(t, err)
	return payload
}

// GenesisFixture returns a genesis of all built-in services administered by
// admin, who also holds the whole native asset supply.
func GenesisFixture(t require.TestingT, admin types.Address, supply uint64) *types.Genesis {
	return &types.Genesis{
		Timestamp: GenesisTimestamp,
		Services: []types.ServiceParam{
			{
				Name: metadata.ServiceName,
				Payload: Encode(t, metadata.Metadata{
					ChainID:     types.Digest([]byte("executor-test")),
					Version:     "1",
					TimeoutGap:  20,
					CyclesLimit: DefaultBlockCycles,
					CyclesPrice: DefaultCyclesPrice,
					Interval:    BlockInterval * 1000,
					TxNumLimit:  20_000,
					MaxTxSize:   1 << 20,
				}),
			},
			{
				Name: kyc.ServiceName,
				Payload: Encode(t, kyc.GenesisPayload{
					OrgName:        KycOrgName,
					OrgDescription: "genesis org",
					OrgAdmin:       admin,
					SupportedTags:  []string{"level", "country"},
					ServiceAdmin:   admin,
				}),
			},
			{
				Name:    timestamp.ServiceName,
				Payload: Encode(t, timestamp.GenesisPayload{Admin: admin}),
			},
			{
				Name:    transferquota.ServiceName,
				Payload: Encode(t, transferquota.GenesisPayload{Admin: admin}),
			},
			{
				Name: asset.ServiceName,
				Payload: Encode(t, asset.GenesisPayload{
					Name:      NativeAssetName,
					Symbol:    NativeAssetSymbol,
					Supply:    supply,
					Precision: 8,
					Issuer:    admin,
					Admin:     admin,
				}),
			},
			{
				Name: governance.ServiceName,
				Payload: Encode(t, governance.GenesisPayload{
					Admin:        admin,
					TxFailureFee: 10,
					TxFloorFee:   1,
				}),
			},
			{
				Name:    admissioncontrol.ServiceName,
				Payload: Encode(t, admissioncontrol.GenesisPayload{Admin: admin}),
			},
		},
	}
}

// ExecutionHarness runs blocks of transactions on top of a genesis, the way
// a chain would: each block starts at the root the previous one produced.
type ExecutionHarness struct {
	t require.TestingT

	Ledger   *complete.Ledger
	Executor *fvm.ServiceExecutor

	Root      ledger.State
	Height    uint64
	Timestamp uint64
	Proposer  types.Address
	// BlockCycles is the cycles limit of the next blocks.
	BlockCycles uint64
}

// NewExecutionHarness creates the genesis state of the given services.
// A nil mapping uses all built-in services.
func NewExecutionHarness(
	t require.TestingT,
	genesis *types.Genesis,
	mapping registry.ServiceMapping,
	opts ...fvm.Option,
) *ExecutionHarness {
	if mapping == nil {
		mapping = servicemapping.NewDefault()
	}

	l, err := complete.NewLedger(100, metrics.NewNoopCollector(), Logger())
	require.NoError(t, err)

	opts = append([]fvm.Option{fvm.WithLogger(Logger())}, opts...)
	executor := fvm.NewServiceExecutor(l, mapping, opts...)

	root, err := executor.CreateGenesis(context.Background(), genesis)
	require.NoError(t, err)

	return &ExecutionHarness{
		t:           t,
		Ledger:      l,
		Executor:    executor,
		Root:        root,
		Timestamp:   genesis.Timestamp,
		Proposer:    AddressFixture(),
		BlockCycles: DefaultBlockCycles,
	}
}

// NextParams returns the parameters of the next block.
func (h *ExecutionHarness) NextParams() types.ExecutorParams {
	return types.ExecutorParams{
		StateRoot:   types.Hash(h.Root),
		Height:      h.Height + 1,
		Timestamp:   h.Timestamp + BlockInterval,
		CyclesLimit: h.BlockCycles,
		Proposer:    h.Proposer,
	}
}

// ExecBlock executes the next block and moves the harness to its root.
func (h *ExecutionHarness) ExecBlock(txs ...types.SignedTransaction) *types.ExecutorResp {
	params := h.NextParams()
	resp, err := h.Executor.Exec(context.Background(), params, txs)
	require.NoError(h.t, err)

	h.Root = ledger.State(resp.StateRoot)
	h.Height = params.Height
	h.Timestamp = params.Timestamp
	return resp
}

// Tx returns a transaction of sender calling service.method with the JSON
// encoding of payload.
func (h *ExecutionHarness) Tx(
	sender types.Address,
	service string,
	method string,
	payload interface{},
	opts ...TransactionOption,
) types.SignedTransaction {
	opts = append(
		[]TransactionOption{
			WithSender(sender),
			WithRequest(service, method, Encode(h.t, payload)),
		},
		opts...)
	return TransactionFixture(opts...)
}

// Read runs a read at the current root.
func (h *ExecutionHarness) Read(
	caller types.Address,
	service string,
	method string,
	payload interface{},
) types.ServiceResponse {
	params := h.NextParams()
	params.StateRoot = types.Hash(h.Root)
	params.CyclesLimit = DefaultBlockCycles

	response, err := h.Executor.Read(
		context.Background(),
		params,
		caller,
		h.Height,
		types.TransactionRequest{
			ServiceName: service,
			Method:      method,
			Payload:     Encode(h.t, payload),
		})
	require.NoError(h.t, err)
	return response
}

// ReadInto runs a read that must succeed and decodes its response into v.
func (h *ExecutionHarness) ReadInto(
	caller types.Address,
	service string,
	method string,
	payload interface{},
	v interface{},
) {
	response := h.Read(caller, service, method, payload)
	require.False(h.t, response.IsError(), "read %s.%s failed: %s", service, method, response)
	require.NoError(h.t, common.DecodeResponse(response, v))
}

// NativeBalance returns the native asset balance of user.
func (h *ExecutionHarness) NativeBalance(user types.Address) uint64 {
	var balance asset.GetBalanceResponse
	h.ReadInto(
		user,
		asset.ServiceName,
		"get_balance",
		asset.GetBalancePayload{AssetID: NativeAssetID, User: user},
		&balance)
	return balance.Balance
}

// RequireSuccess requires every receipt of the block to succeed.
func RequireSuccess(t require.TestingT, resp *types.ExecutorResp) {
	for _, receipt := range resp.Receipts {
		require.False(t, receipt.Failed(), "transaction %s failed: %s", receipt.TxHash, receipt.Response)
	}
}
