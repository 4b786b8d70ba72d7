package errors

import "fmt"

type ErrorCode uint16

func (ec ErrorCode) String() string {
	return fmt.Sprintf("[Error Code: %d]", ec)
}

type FailureCode uint16

func (fc FailureCode) String() string {
	return fmt.Sprintf("[Failure Code: %d]", fc)
}

const (
	FailureCodeUnknownFailure             FailureCode = 2000
	FailureCodeEncodingFailure            FailureCode = 2001
	FailureCodeLedgerFailure              FailureCode = 2002
	FailureCodeStateMergeFailure          FailureCode = 2003
	FailureCodeUnknownServiceFailure      FailureCode = 2004
	FailureCodeCyclicDependencyFailure    FailureCode = 2005
	FailureCodeGenesisServiceFailure      FailureCode = 2006
	FailureCodeStateNotFoundFailure       FailureCode = 2007
	FailureCodeConcurrentExecutionFailure FailureCode = 2008
	FailureCodePayerBalanceCheckFailure   FailureCode = 2009
	FailureCodeBlockHookFailure           FailureCode = 2010
	FailureCodeServiceConstructionFailure FailureCode = 2011
)

const (
	// service request errors 1050 - 1099
	ErrCodeInvalidPayloadError        ErrorCode = 1052
	ErrCodeMethodNotFoundError        ErrorCode = 1053
	ErrCodeMethodKindMismatchError    ErrorCode = 1054
	ErrCodeWriteInReadContextError    ErrorCode = 1055
	ErrCodeServiceNotFoundError       ErrorCode = 1056
	ErrCodeOperationNotSupportedError ErrorCode = 1057
	ErrCodeServiceResponseError       ErrorCode = 1058
	ErrCodeServicePanicError          ErrorCode = 1059

	// execution errors 1100 - 1199
	ErrCodeStateKeySizeLimitError             ErrorCode = 1107
	ErrCodeStateValueSizeLimitError           ErrorCode = 1108
	ErrCodeTransactionFeeDeductionFailedError ErrorCode = 1109
	ErrCodeCyclesExhaustedError               ErrorCode = 1110
	ErrCodeInsufficientPayerBalance           ErrorCode = 1118
)
