package module

import (
	"time"
)

// CacheMetrics reports the usage of the storage layer caches.
type CacheMetrics interface {
	// CacheEntries report the total number of cached items
	CacheEntries(resource string, entries uint)
	// CacheHit report the number of times the queried item is found in the cache
	CacheHit(resource string)
	// CacheNotFound records the number of times the queried item was not found in either cache or database.
	CacheNotFound(resource string)
	// CacheMiss report the number of times the queried item is not found in the cache, but found in the database.
	CacheMiss(resource string)
}

type LedgerMetrics interface {
	// ForestNumberOfTrees current number of trees in a forest (in memory)
	ForestNumberOfTrees(number uint64)

	// LatestTrieRegCount records the number of unique register allocated (the latest created trie)
	LatestTrieRegCount(number uint64)

	// LatestTrieRegCountDiff records the difference between the number of unique register allocated of the latest created trie and parent trie
	LatestTrieRegCountDiff(number int64)

	// LatestTrieMaxDepthTouched records the maximum depth touched of the lastest created trie
	LatestTrieMaxDepthTouched(maxDepth uint16)

	// UpdateCount increase a counter of performed updates
	UpdateCount()

	// ProofSize records a proof size
	ProofSize(bytes uint32)

	// UpdateValuesNumber accumulates number of updated values
	UpdateValuesNumber(number uint64)

	// UpdateDuration records absolute time for the update of a trie
	UpdateDuration(duration time.Duration)

	// ReadValuesNumber accumulates number of read values
	ReadValuesNumber(number uint64)

	// ReadDuration records absolute time for the read from a trie
	ReadDuration(duration time.Duration)
}

// ExecutionResultStats captures the outcome of executing a block.
type ExecutionResultStats struct {
	CyclesUsed                      uint64
	EventCounts                     int
	NumberOfTransactions            int
	NumberOfFailedTransactions      int
	NumberOfSkippedTransactions     int
	NumberOfRegistersTouched        int
	NumberOfBytesWrittenToRegisters int
}

func (stats *ExecutionResultStats) Merge(other ExecutionResultStats) {
	stats.CyclesUsed += other.CyclesUsed
	stats.EventCounts += other.EventCounts
	stats.NumberOfTransactions += other.NumberOfTransactions
	stats.NumberOfFailedTransactions += other.NumberOfFailedTransactions
	stats.NumberOfSkippedTransactions += other.NumberOfSkippedTransactions
	stats.NumberOfRegistersTouched += other.NumberOfRegistersTouched
	stats.NumberOfBytesWrittenToRegisters += other.NumberOfBytesWrittenToRegisters
}

type ExecutionMetrics interface {
	// ExecutionLastExecutedBlockHeight reports last executed block height
	ExecutionLastExecutedBlockHeight(height uint64)

	// ExecutionBlockExecuted reports the total time and cycles spent on executing a block
	ExecutionBlockExecuted(dur time.Duration, stats ExecutionResultStats)

	// ExecutionBlockCyclesVectorComponent reports the unweighted intensity of given computation kind at block level
	ExecutionBlockCyclesVectorComponent(kind string, intensity uint)

	// ExecutionTransactionExecuted reports stats on executing a single transaction
	ExecutionTransactionExecuted(dur time.Duration, cyclesUsed uint64, eventCounts int, failed bool)

	// ExecutionTransactionSkipped reports a transaction left out of a block by the block cycles ceiling
	ExecutionTransactionSkipped()

	// ExecutionReadExecuted reports the time and cycles spent on executing a read-only query
	ExecutionReadExecuted(dur time.Duration, cyclesUsed uint64, failed bool)

	// ExecutionServiceConstructed reports a service instance built by the service factory
	ExecutionServiceConstructed(service string)

	// ExecutionGenesisCreated reports the number of services initialized by the genesis
	ExecutionGenesisCreated(dur time.Duration, services int)
}
