package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/servicechain/executor/module"
)

type ExecutionCollector struct {
	blockExecutionTime               prometheus.Histogram
	blockCyclesUsed                  prometheus.Histogram
	blockCyclesVector                *prometheus.GaugeVec
	blockTransactionCounts           prometheus.Histogram
	blockEventCounts                 prometheus.Histogram
	blockRegistersTouched            prometheus.Histogram
	blockBytesWritten                prometheus.Histogram
	lastExecutedBlockHeightGauge     prometheus.Gauge
	totalExecutedTransactionsCounter *prometheus.CounterVec
	totalSkippedTransactionsCounter  prometheus.Counter
	transactionExecutionTime         prometheus.Histogram
	transactionCyclesUsed            prometheus.Histogram
	transactionEventCounts           prometheus.Histogram
	totalExecutedReadsCounter        *prometheus.CounterVec
	readExecutionTime                prometheus.Histogram
	readCyclesUsed                   prometheus.Histogram
	servicesConstructed              *prometheus.CounterVec
	genesisServices                  prometheus.Gauge
	genesisExecutionTime             prometheus.Gauge
}

var _ module.ExecutionMetrics = (*ExecutionCollector)(nil)

func NewExecutionCollector(registerer prometheus.Registerer) *ExecutionCollector {

	blockExecutionTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "block_execution_time_milliseconds",
		Help:      "the total time spent on block execution in milliseconds",
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	blockCyclesUsed := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "block_cycles_used",
		Help:      "the total amount of cycles used by a block",
		Buckets:   prometheus.ExponentialBuckets(10, 4, 10),
	})

	blockCyclesVector := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "block_cycles_vector",
		Help:      "the unweighted intensity per computation kind used by a block",
	}, []string{LabelKind})

	blockTransactionCounts := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "block_transaction_counts",
		Help:      "the total number of transactions per block",
		Buckets:   prometheus.ExponentialBuckets(4, 2, 10),
	})

	blockEventCounts := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "block_event_counts",
		Help:      "the total number of events emitted during a block execution",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
	})

	blockRegistersTouched := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "block_number_of_registers_touched",
		Help:      "the total number of registers touched during a block execution",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
	})

	blockBytesWritten := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "block_total_bytes_written",
		Help:      "the total number of bytes written during a block execution",
		Buckets:   prometheus.ExponentialBuckets(1000, 2, 10),
	})

	lastExecutedBlockHeightGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "last_executed_block_height",
		Help:      "the last height that was executed",
	})

	totalExecutedTransactionsCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "total_executed_transactions",
		Help:      "the total number of transactions that have been executed",
	}, []string{LabelStatus})

	totalSkippedTransactionsCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "total_skipped_transactions",
		Help:      "the total number of transactions left out of a block by the block cycles limit",
	})

	transactionExecutionTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "transaction_execution_time_milliseconds",
		Help:      "the total time spent on transaction execution in milliseconds",
		Buckets:   prometheus.ExponentialBuckets(2, 2, 10),
	})

	transactionCyclesUsed := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "transaction_cycles_used",
		Help:      "the cycles used by transaction execution",
		Buckets:   prometheus.ExponentialBuckets(2, 2, 16),
	})

	transactionEventCounts := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "transaction_event_counts",
		Help:      "the number of events emitted by a transaction",
		Buckets:   prometheus.ExponentialBuckets(2, 2, 8),
	})

	totalExecutedReadsCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "total_executed_reads",
		Help:      "the total number of read-only queries that have been executed",
	}, []string{LabelStatus})

	readExecutionTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "read_execution_time_milliseconds",
		Help:      "the total time spent on read-only query execution in milliseconds",
		Buckets:   prometheus.ExponentialBuckets(2, 2, 10),
	})

	readCyclesUsed := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemRuntime,
		Name:      "read_cycles_used",
		Help:      "the cycles used by read-only query execution",
		Buckets:   prometheus.ExponentialBuckets(2, 2, 16),
	})

	servicesConstructed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemServices,
		Name:      "constructed_total",
		Help:      "the number of service instances built by the service factory",
	}, []string{LabelService})

	genesisServices := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemServices,
		Name:      "genesis_services",
		Help:      "the number of services initialized by the genesis",
	})

	genesisExecutionTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemServices,
		Name:      "genesis_execution_time_milliseconds",
		Help:      "the time spent on creating the genesis state in milliseconds",
	})

	registerer.MustRegister(
		blockExecutionTime,
		blockCyclesUsed,
		blockCyclesVector,
		blockTransactionCounts,
		blockEventCounts,
		blockRegistersTouched,
		blockBytesWritten,
		lastExecutedBlockHeightGauge,
		totalExecutedTransactionsCounter,
		totalSkippedTransactionsCounter,
		transactionExecutionTime,
		transactionCyclesUsed,
		transactionEventCounts,
		totalExecutedReadsCounter,
		readExecutionTime,
		readCyclesUsed,
		servicesConstructed,
		genesisServices,
		genesisExecutionTime,
	)

	return &ExecutionCollector{
		blockExecutionTime:               blockExecutionTime,
		blockCyclesUsed:                  blockCyclesUsed,
		blockCyclesVector:                blockCyclesVector,
		blockTransactionCounts:           blockTransactionCounts,
		blockEventCounts:                 blockEventCounts,
		blockRegistersTouched:            blockRegistersTouched,
		blockBytesWritten:                blockBytesWritten,
		lastExecutedBlockHeightGauge:     lastExecutedBlockHeightGauge,
		totalExecutedTransactionsCounter: totalExecutedTransactionsCounter,
		totalSkippedTransactionsCounter:  totalSkippedTransactionsCounter,
		transactionExecutionTime:         transactionExecutionTime,
		transactionCyclesUsed:            transactionCyclesUsed,
		transactionEventCounts:           transactionEventCounts,
		totalExecutedReadsCounter:        totalExecutedReadsCounter,
		readExecutionTime:                readExecutionTime,
		readCyclesUsed:                   readCyclesUsed,
		servicesConstructed:              servicesConstructed,
		genesisServices:                  genesisServices,
		genesisExecutionTime:             genesisExecutionTime,
	}
}

// ExecutionLastExecutedBlockHeight reports last executed block height
func (ec *ExecutionCollector) ExecutionLastExecutedBlockHeight(height uint64) {
	ec.lastExecutedBlockHeightGauge.Set(float64(height))
}

// ExecutionBlockExecuted reports execution meta data after executing a block
func (ec *ExecutionCollector) ExecutionBlockExecuted(dur time.Duration, stats module.ExecutionResultStats) {
	ec.blockExecutionTime.Observe(float64(dur.Milliseconds()))
	ec.blockCyclesUsed.Observe(float64(stats.CyclesUsed))
	ec.blockTransactionCounts.Observe(float64(stats.NumberOfTransactions))
	ec.blockEventCounts.Observe(float64(stats.EventCounts))
	ec.blockRegistersTouched.Observe(float64(stats.NumberOfRegistersTouched))
	ec.blockBytesWritten.Observe(float64(stats.NumberOfBytesWrittenToRegisters))
}

// ExecutionBlockCyclesVectorComponent reports the unweighted intensity of a computation kind
func (ec *ExecutionCollector) ExecutionBlockCyclesVectorComponent(kind string, intensity uint) {
	ec.blockCyclesVector.With(prometheus.Labels{LabelKind: kind}).Set(float64(intensity))
}

// ExecutionTransactionExecuted reports stats for executing a transaction
func (ec *ExecutionCollector) ExecutionTransactionExecuted(dur time.Duration, cyclesUsed uint64, eventCounts int, failed bool) {
	ec.totalExecutedTransactionsCounter.With(prometheus.Labels{LabelStatus: status(failed)}).Inc()
	ec.transactionExecutionTime.Observe(float64(dur.Milliseconds()))
	ec.transactionCyclesUsed.Observe(float64(cyclesUsed))
	ec.transactionEventCounts.Observe(float64(eventCounts))
}

func (ec *ExecutionCollector) ExecutionTransactionSkipped() {
	ec.totalSkippedTransactionsCounter.Inc()
}

// ExecutionReadExecuted reports the time spent executing a read-only query
func (ec *ExecutionCollector) ExecutionReadExecuted(dur time.Duration, cyclesUsed uint64, failed bool) {
	ec.totalExecutedReadsCounter.With(prometheus.Labels{LabelStatus: status(failed)}).Inc()
	ec.readExecutionTime.Observe(float64(dur.Milliseconds()))
	ec.readCyclesUsed.Observe(float64(cyclesUsed))
}

func (ec *ExecutionCollector) ExecutionServiceConstructed(service string) {
	ec.servicesConstructed.With(prometheus.Labels{LabelService: service}).Inc()
}

func (ec *ExecutionCollector) ExecutionGenesisCreated(dur time.Duration, services int) {
	ec.genesisServices.Set(float64(services))
	ec.genesisExecutionTime.Set(float64(dur.Milliseconds()))
}

func status(failed bool) string {
	if failed {
		return StatusFailed
	}
	return StatusSucceeded
}
