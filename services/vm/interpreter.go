package vm

import (
	"fmt"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/meter"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/services/kyc"
)

const (
	governanceServiceName = "governance"

	entryInit = "init"
	entryMain = "main"

	// maxStringSize bounds the strings built by the library functions that
	// produce more bytes than they take instructions.
	// TODO: the concat operator builds a string in a single instruction and
	// is bounded only by the instruction meter; go-lua has no hook for it.
	maxStringSize = 16 << 20
)

// globals that are removed from the base library: they reach the host,
// they depend on the iteration order of tables, or they catch the errors
// that stop the contract.
var removedGlobals = []string{
	"print",
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"collectgarbage",
	"pairs",
	"next",
	"pcall",
	"xpcall",
}

// interpreter runs a contract in a fresh Lua state.
type interpreter struct {
	sdk      environment.ServiceSDK
	contract types.Address
	state    *lua.State

	// halted is the first SDK error raised in the contract
	halted error
}

func newInterpreter(sdk environment.ServiceSDK, contract types.Address) *interpreter {
	l := lua.NewState()
	lua.Require(l, "_G", lua.BaseOpen, true)
	lua.Require(l, "string", lua.StringOpen, true)
	lua.Require(l, "table", lua.TableOpen, true)
	l.Pop(3)

	for _, name := range removedGlobals {
		l.PushNil()
		l.SetGlobal(name)
	}

	i := &interpreter{
		sdk:      sdk,
		contract: contract,
		state:    l,
	}

	lua.SetDebugHook(l, i.meterInstructions, lua.MaskCount, meter.VMInstructionsPerUnit)

	i.replaceField("string", "rep", i.rep)
	i.replaceField("table", "concat", i.concat)

	l.Register("tostring", tostring)
	l.Register("get", i.get)
	l.Register("set", i.set)
	l.Register("caller", i.caller)
	l.Register("height", i.height)
	l.Register("emit", i.emit)
	l.Register("call_service", i.callService(false))
	l.Register("read_service", i.callService(true))
	l.Register("is_admin", i.isAdmin)
	l.Register("has_tag", i.hasTag)
	l.Register("native_balance", i.nativeBalance)
	return i
}

// load runs the chunk, which defines the entry points of the contract.
func (i *interpreter) load(code string) error {
	if err := lua.LoadString(i.state, code); err != nil {
		return fmt.Errorf("could not load contract: %w", err)
	}
	if err := i.state.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("could not run contract chunk: %w", err)
	}
	return nil
}

// hasEntry reports whether the contract defines the named function.
func (i *interpreter) hasEntry(name string) bool {
	i.state.Global(name)
	defer i.state.Pop(1)
	return i.state.IsFunction(-1)
}

// call runs the named entry point with args and returns its result
// converted to a string.
func (i *interpreter) call(name string, args string) (string, error) {
	if !i.hasEntry(name) {
		return "", fmt.Errorf("contract has no %s function", name)
	}

	i.state.Global(name)
	i.state.PushString(args)
	if err := i.state.ProtectedCall(1, 1, 0); err != nil {
		return "", err
	}
	defer i.state.Pop(1)

	if i.state.IsNil(-1) {
		return "", nil
	}
	result, ok := i.state.ToString(-1)
	if !ok {
		return "", fmt.Errorf("%s returned a %s", name, lua.TypeNameOf(i.state, -1))
	}
	return result, nil
}

func (i *interpreter) replaceField(library string, name string, f lua.Function) {
	i.state.Global(library)
	i.state.PushGoFunction(f)
	i.state.SetField(-2, name)
	i.state.Pop(1)
}

func (i *interpreter) meterInstructions(l *lua.State, _ lua.Debug) {
	if i.halted != nil {
		lua.Errorf(l, "%s", i.halted.Error())
	}
	if err := i.sdk.Meter(meter.ComputationKindVMInstructions, 1); err != nil {
		i.raise(l, err)
	}
}

// raise aborts the contract with err. Once raised, every instruction hook
// raises err again.
func (i *interpreter) raise(l *lua.State, err error) {
	if i.halted == nil {
		i.halted = err
	}
	lua.Errorf(l, "%s", err.Error())
}

// meterBytes charges for a string of size bytes before it is built.
func (i *interpreter) meterBytes(l *lua.State, size int) {
	if size > maxStringSize {
		lua.Errorf(l, "resulting string too large")
	}
	units := (size + meter.VMStringBytesPerUnit - 1) / meter.VMStringBytesPerUnit
	if err := i.sdk.Meter(meter.ComputationKindVMStringBytes, uint(units)); err != nil {
		i.raise(l, err)
	}
}

// rep is string.rep, metered by the length of its result.
func (i *interpreter) rep(l *lua.State) int {
	s, n, sep := lua.CheckString(l, 1), lua.CheckInteger(l, 2), lua.OptString(l, 3, "")
	if n <= 0 || len(s)+len(sep) == 0 {
		l.PushString("")
		return 1
	}
	if len(s)+len(sep) > maxStringSize/n {
		lua.Errorf(l, "resulting string too large")
	}

	size := n*len(s) + (n-1)*len(sep)
	i.meterBytes(l, size)

	var b strings.Builder
	b.Grow(size)
	b.WriteString(s)
	for ; n > 1; n-- {
		b.WriteString(sep)
		b.WriteString(s)
	}
	l.PushString(b.String())
	return 1
}

// concat is table.concat, metered by the length of its result.
func (i *interpreter) concat(l *lua.State) int {
	lua.CheckType(l, 1, lua.TypeTable)
	sep := lua.OptString(l, 2, "")
	first := lua.OptInteger(l, 3, 1)
	var last int
	if l.IsNoneOrNil(4) {
		last = lua.LengthEx(l, 1)
	} else {
		last = lua.CheckInteger(l, 4)
	}

	parts := make([]string, 0)
	size := 0
	for k := first; k <= last; k++ {
		l.RawGetInt(1, k)
		str, ok := l.ToString(-1)
		if !ok {
			lua.Errorf(l, "invalid value (%s) at index %d in table for 'concat'", lua.TypeNameOf(l, -1), k)
		}
		l.Pop(1)

		if k > first {
			size += len(sep)
		}
		size += len(str)
		if size > maxStringSize {
			lua.Errorf(l, "resulting string too large")
		}
		parts = append(parts, str)
		if k == last {
			break
		}
	}

	i.meterBytes(l, size)
	l.PushString(strings.Join(parts, sep))
	return 1
}

// tostring only converts plain values: the address of a table or function
// is not deterministic.
func tostring(l *lua.State) int {
	lua.CheckAny(l, 1)
	switch l.TypeOf(1) {
	case lua.TypeNil, lua.TypeBoolean, lua.TypeNumber, lua.TypeString:
		lua.ToStringMeta(l, 1)
	default:
		l.PushString(lua.TypeNameOf(l, 1))
	}
	return 1
}

func (i *interpreter) storageKey(key string) string {
	return "storage/" + i.contract.Hex() + "/" + key
}

func (i *interpreter) get(l *lua.State) int {
	key := lua.CheckString(l, 1)
	value, err := i.sdk.GetRaw(i.storageKey(key))
	if err != nil {
		i.raise(l, err)
	}
	if len(value) == 0 {
		l.PushNil()
		return 1
	}
	l.PushString(string(value))
	return 1
}

func (i *interpreter) set(l *lua.State) int {
	key := lua.CheckString(l, 1)
	var err error
	if l.IsNoneOrNil(2) {
		err = i.sdk.Remove(i.storageKey(key))
	} else {
		err = i.sdk.SetRaw(i.storageKey(key), []byte(lua.CheckString(l, 2)))
	}
	if err != nil {
		i.raise(l, err)
	}
	return 0
}

func (i *interpreter) caller(l *lua.State) int {
	l.PushString(i.sdk.Context().Caller.Hex())
	return 1
}

func (i *interpreter) height(l *lua.State) int {
	l.PushNumber(float64(i.sdk.Context().Height))
	return 1
}

func (i *interpreter) emit(l *lua.State) int {
	topic := lua.CheckString(l, 1)
	data := lua.OptString(l, 2, "")
	if err := i.sdk.EmitEvent(topic, data); err != nil {
		i.raise(l, err)
	}
	return 0
}

// callService returns a host function calling another service. It returns
// the response data, or nil and the error message of a failed response.
func (i *interpreter) callService(read bool) lua.Function {
	return func(l *lua.State) int {
		service := lua.CheckString(l, 1)
		method := lua.CheckString(l, 2)
		payload := lua.OptString(l, 3, "")

		var response types.ServiceResponse
		var err error
		if read {
			response, err = i.sdk.CallRead(service, method, payload)
		} else {
			response, err = i.sdk.CallWrite(service, method, payload)
		}
		if err != nil {
			i.raise(l, err)
		}

		if response.IsError() {
			l.PushNil()
			l.PushString(response.ErrorMessage)
			return 2
		}
		l.PushString(response.SucceedData)
		return 1
	}
}

func (i *interpreter) isAdmin(l *lua.State) int {
	var admin struct {
		Admin types.Address `json:"admin"`
	}
	response, err := common.CallRead(i.sdk, governanceServiceName, "get_admin_address", nil, &admin)
	if err != nil {
		i.raise(l, err)
	}
	if response.IsError() {
		lua.Errorf(l, "%s", common.Forward(governanceServiceName, "get_admin_address", response).ErrorMessage)
	}
	l.PushBoolean(admin.Admin == i.sdk.Context().Caller)
	return 1
}

func (i *interpreter) hasTag(l *lua.State) int {
	expression := lua.CheckString(l, 1)

	var result kyc.EvalUserTagExpressionResponse
	response, err := common.CallRead(
		i.sdk,
		kyc.ServiceName,
		"eval_user_tag_expression",
		kyc.EvalUserTagExpressionPayload{
			User:       i.sdk.Context().Caller,
			Expression: expression,
		},
		&result)
	if err != nil {
		i.raise(l, err)
	}
	if response.IsError() {
		lua.Errorf(l, "%s", common.Forward(kyc.ServiceName, "eval_user_tag_expression", response).ErrorMessage)
	}
	l.PushBoolean(result.Result)
	return 1
}

func (i *interpreter) nativeBalance(l *lua.State) int {
	address, err := types.ParseAddress(lua.CheckString(l, 1))
	if err != nil {
		lua.ArgumentError(l, 1, err.Error())
	}

	balance, response := asset.NativeBalance(i.sdk, address)
	if response.IsError() {
		lua.Errorf(l, "%s", response.ErrorMessage)
	}
	// numbers are doubles: balances above 2^53 lose precision
	l.PushNumber(float64(balance))
	return 1
}
