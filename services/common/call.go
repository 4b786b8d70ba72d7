package common

import (
	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/model/types"
)

// CallRead encodes payload, calls a read method of another service and
// decodes its response into result, which may be nil. A failed response
// is returned as is, with a nil error.
func CallRead(
	sdk environment.ServiceSDK,
	service string,
	method string,
	payload interface{},
	result interface{},
) (
	types.ServiceResponse,
	error,
) {
	return call(sdk.CallRead, service, method, payload, result)
}

// CallWrite is CallRead for write methods.
func CallWrite(
	sdk environment.ServiceSDK,
	service string,
	method string,
	payload interface{},
	result interface{},
) (
	types.ServiceResponse,
	error,
) {
	return call(sdk.CallWrite, service, method, payload, result)
}

func call(
	invoke func(string, string, string) (types.ServiceResponse, error),
	service string,
	method string,
	payload interface{},
	result interface{},
) (
	types.ServiceResponse,
	error,
) {
	encoded := ""
	if payload != nil {
		var err error
		encoded, err = Encode(payload)
		if err != nil {
			return types.ServiceResponse{}, err
		}
	}

	response, err := invoke(service, method, encoded)
	if err != nil || response.IsError() {
		return response, err
	}

	if result != nil {
		err = DecodeResponse(response, result)
		if err != nil {
			return response, err
		}
	}
	return response, nil
}
