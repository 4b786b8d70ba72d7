package environment

import (
	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/fvm/meter"
	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/model/encoding/cbor"
	"github.com/servicechain/executor/model/types"
)

type serviceSDK struct {
	env     *Environment
	service string
}

var _ ServiceSDK = (*serviceSDK)(nil)

func (sdk *serviceSDK) registerID(key string) ledger.KeyID {
	return ledger.NewKeyID(sdk.service, key)
}

func (sdk *serviceSDK) GetValue(key string, v interface{}) (bool, error) {
	raw, err := sdk.GetRaw(key)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}

	err = cbor.Unmarshal(raw, v)
	if err != nil {
		return false, sdk.env.fail(errors.NewEncodingFailuref(
			err,
			"cannot decode value of %s",
			sdk.registerID(key)))
	}
	return true, nil
}

func (sdk *serviceSDK) SetValue(key string, v interface{}) error {
	if err := sdk.env.checkErr(); err != nil {
		return err
	}

	raw, err := cbor.Marshal(v)
	if err != nil {
		return sdk.env.fail(errors.NewEncodingFailuref(
			err,
			"cannot encode value of %s",
			sdk.registerID(key)))
	}
	return sdk.SetRaw(key, raw)
}

func (sdk *serviceSDK) GetRaw(key string) ([]byte, error) {
	if err := sdk.env.checkErr(); err != nil {
		return nil, err
	}
	if err := sdk.env.meter(meter.ComputationKindGetValue, 1); err != nil {
		return nil, err
	}

	value, err := sdk.env.txnState.Get(sdk.registerID(key))
	if err != nil {
		return nil, sdk.env.fail(err)
	}
	return value, nil
}

func (sdk *serviceSDK) SetRaw(key string, value []byte) error {
	return sdk.set(key, value, meter.ComputationKindSetValue, "set_value")
}

func (sdk *serviceSDK) Remove(key string) error {
	return sdk.set(key, nil, meter.ComputationKindRemoveValue, "remove")
}

func (sdk *serviceSDK) set(
	key string,
	value []byte,
	kind meter.ComputationKind,
	operation string,
) error {
	if err := sdk.env.checkErr(); err != nil {
		return err
	}
	if sdk.env.readOnly() {
		return sdk.env.fail(errors.NewWriteInReadContextError(sdk.service, operation))
	}
	if err := sdk.env.meter(kind, 1); err != nil {
		return err
	}

	err := sdk.env.txnState.Set(sdk.registerID(key), value)
	if err != nil {
		return sdk.env.fail(err)
	}
	return nil
}

func (sdk *serviceSDK) CallRead(
	service string,
	method string,
	payload string,
) (
	types.ServiceResponse,
	error,
) {
	return sdk.env.invoke(service, method, payload, MethodKindRead, false)
}

func (sdk *serviceSDK) CallWrite(
	service string,
	method string,
	payload string,
) (
	types.ServiceResponse,
	error,
) {
	return sdk.env.invoke(service, method, payload, MethodKindWrite, false)
}

func (sdk *serviceSDK) EmitEvent(topic string, data string) error {
	if err := sdk.env.checkErr(); err != nil {
		return err
	}
	if err := sdk.env.meter(meter.ComputationKindEmitEvent, 1); err != nil {
		return err
	}

	sdk.env.events = append(sdk.env.events, types.Event{
		Service: sdk.service,
		Topic:   topic,
		Data:    data,
	})
	return nil
}

func (sdk *serviceSDK) Meter(kind meter.ComputationKind, intensity uint) error {
	if err := sdk.env.checkErr(); err != nil {
		return err
	}
	return sdk.env.meter(kind, intensity)
}

func (sdk *serviceSDK) Context() ServiceContext {
	return sdk.env.context(sdk.service)
}
