package trace

type SpanName string

func (s SpanName) Child(subOp string) SpanName {
	return SpanName(string(s) + "." + subOp)
}

const (
	// Execution Driver
	EXEExecuteBlock         SpanName = "exe.executor.executeBlock"
	EXEExecuteTransaction   SpanName = "exe.executor.executeTransaction"
	EXERunBlockHooks        SpanName = "exe.executor.runBlockHooks"
	EXECommitBlockState     SpanName = "exe.executor.commitBlockState"
	EXECreateGenesis        SpanName = "exe.executor.createGenesis"
	EXEExecuteRead          SpanName = "exe.executor.executeRead"
	EXEExecuteReadBatch     SpanName = "exe.executor.executeReadBatch"
	EXEResolveServiceGraph  SpanName = "exe.executor.resolveServiceGraph"
	EXEDeductTransactionFee SpanName = "exe.executor.deductTransactionFee"

	// Block driver
	EXEComputeBlock SpanName = "exe.computationManager.computeBlock"
	EXESaveResults  SpanName = "exe.computationManager.saveResults"

	// Ledger
	LEDGetRegisters SpanName = "ledger.getRegisters"
	LEDSetRegisters SpanName = "ledger.setRegisters"
)
