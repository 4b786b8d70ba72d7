package common

import (
	"fmt"

	"github.com/servicechain/executor/model/types"
)

// Response codes shared by the built-in services. Codes below 1000 belong to
// services; the executor's own codes start at 1000.
const (
	CodeInternal              uint64 = 100
	CodeNotFound              uint64 = 101
	CodePermissionDenied      uint64 = 102
	CodeAlreadyExists         uint64 = 103
	CodeOverflow              uint64 = 104
	CodeInsufficientBalance   uint64 = 105
	CodeInsufficientAllowance uint64 = 106
	CodeRejected              uint64 = 107
	CodeInvalidArgument       uint64 = 108
	CodeContractError         uint64 = 109
)

func NotFound(format string, args ...interface{}) types.ServiceResponse {
	return types.NewErrorResponse(CodeNotFound, format, args...)
}

func PermissionDenied(format string, args ...interface{}) types.ServiceResponse {
	return types.NewErrorResponse(CodePermissionDenied, format, args...)
}

func InvalidArgument(format string, args ...interface{}) types.ServiceResponse {
	return types.NewErrorResponse(CodeInvalidArgument, format, args...)
}

// Forward wraps the failed response of a nested call, keeping its code.
func Forward(service string, method string, response types.ServiceResponse) types.ServiceResponse {
	return types.ServiceResponse{
		Code:         response.Code,
		ErrorMessage: fmt.Sprintf("%s.%s: %s", service, method, response.ErrorMessage),
	}
}

// SafeAdd returns a+b, or false on overflow.
func SafeAdd(a uint64, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}

// SafeMul returns a*b, or false on overflow.
func SafeMul(a uint64, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	return product, product/b == a
}
