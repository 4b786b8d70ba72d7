package types

import (
	"fmt"
)

// ServiceResponse is the result of a service method invocation.
// A zero Code means success.
type ServiceResponse struct {
	Code         uint64 `json:"code"`
	SucceedData  string `json:"succeed_data"`
	ErrorMessage string `json:"error_message"`
}

// NewSuccessResponse returns a successful response carrying data.
func NewSuccessResponse(data string) ServiceResponse {
	return ServiceResponse{SucceedData: data}
}

// NewErrorResponse returns a failed response. A zero code is not a failure
// and is replaced with 1.
func NewErrorResponse(code uint64, format string, args ...interface{}) ServiceResponse {
	if code == 0 {
		code = 1
	}
	return ServiceResponse{
		Code:         code,
		ErrorMessage: fmt.Sprintf(format, args...),
	}
}

// IsError returns true if the response is a failure.
func (r ServiceResponse) IsError() bool {
	return r.Code != 0
}

func (r ServiceResponse) String() string {
	if r.IsError() {
		return fmt.Sprintf("error [code: %d]: %s", r.Code, r.ErrorMessage)
	}
	return fmt.Sprintf("ok: %s", r.SucceedData)
}
