// Package common holds the payload codec, response codes and address
// helpers shared by the built-in services.
package common

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/model/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var validate = newValidator()

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IsIdentifier reports whether s is a valid org, tag or tag value name.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

func newValidator() *validator.Validate {
	v := validator.New()
	// registering a well-formed static validation cannot fail
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return IsIdentifier(fl.Field().String())
	})
	return v
}

// Decode decodes a JSON payload into v and validates it against its
// `validate` tags.
func Decode(payload string, v interface{}) error {
	if err := json.UnmarshalFromString(payload, v); err != nil {
		return fmt.Errorf("could not decode payload: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// Encode returns the JSON encoding of v.
func Encode(v interface{}) (string, error) {
	return json.MarshalToString(v)
}

// DecodeResponse decodes the data of a successful response into v.
func DecodeResponse(response types.ServiceResponse, v interface{}) error {
	if response.IsError() {
		return fmt.Errorf("cannot decode failed response: %s", response)
	}
	return json.UnmarshalFromString(response.SucceedData, v)
}

// Success returns a successful response carrying the JSON encoding of v.
// A nil v gives an empty response.
func Success(v interface{}) types.ServiceResponse {
	if v == nil {
		return types.NewSuccessResponse("")
	}
	data, err := Encode(v)
	if err != nil {
		return types.NewErrorResponse(CodeInternal, "could not encode response: %s", err)
	}
	return types.NewSuccessResponse(data)
}

// InvalidPayload is the response to a payload Decode rejected.
func InvalidPayload(service string, method string, err error) types.ServiceResponse {
	return types.NewErrorResponse(
		uint64(errors.ErrCodeInvalidPayloadError),
		"%s.%s: %s",
		service,
		method,
		err)
}

// SDKError is the response to an error returned by the SDK. The SDK error
// is sticky, so the transaction is reverted with it whatever the response.
func SDKError(err error) types.ServiceResponse {
	return types.NewErrorResponse(CodeInternal, "%s", err)
}
