package asset

import (
	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/common"
)

// NativeBalance reads the native asset balance of user through the asset
// service. It is meant for the services calling asset.
func NativeBalance(
	sdk environment.ServiceSDK,
	user types.Address,
) (
	uint64,
	types.ServiceResponse,
) {
	var native Asset
	response, err := common.CallRead(sdk, ServiceName, "get_native_asset", nil, &native)
	if err != nil {
		return 0, common.SDKError(err)
	}
	if response.IsError() {
		return 0, common.Forward(ServiceName, "get_native_asset", response)
	}

	var balance GetBalanceResponse
	response, err = common.CallRead(
		sdk,
		ServiceName,
		"get_balance",
		GetBalancePayload{AssetID: native.ID, User: user},
		&balance)
	if err != nil {
		return 0, common.SDKError(err)
	}
	if response.IsError() {
		return 0, common.Forward(ServiceName, "get_balance", response)
	}
	return balance.Balance, types.NewSuccessResponse("")
}
