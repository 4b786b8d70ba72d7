package metrics

import (
	"time"

	"github.com/servicechain/executor/module"
)

type NoopCollector struct{}

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

var _ module.ExecutionMetrics = (*NoopCollector)(nil)
var _ module.LedgerMetrics = (*NoopCollector)(nil)
var _ module.CacheMetrics = (*NoopCollector)(nil)

func (nc *NoopCollector) CacheEntries(resource string, entries uint)                      {}
func (nc *NoopCollector) CacheHit(resource string)                                        {}
func (nc *NoopCollector) CacheNotFound(resource string)                                   {}
func (nc *NoopCollector) CacheMiss(resource string)                                       {}
func (nc *NoopCollector) ForestNumberOfTrees(number uint64)                               {}
func (nc *NoopCollector) LatestTrieRegCount(number uint64)                                {}
func (nc *NoopCollector) LatestTrieRegCountDiff(number int64)                             {}
func (nc *NoopCollector) LatestTrieMaxDepthTouched(maxDepth uint16)                       {}
func (nc *NoopCollector) UpdateCount()                                                    {}
func (nc *NoopCollector) ProofSize(bytes uint32)                                          {}
func (nc *NoopCollector) UpdateValuesNumber(number uint64)                                {}
func (nc *NoopCollector) UpdateDuration(duration time.Duration)                           {}
func (nc *NoopCollector) ReadValuesNumber(number uint64)                                  {}
func (nc *NoopCollector) ReadDuration(duration time.Duration)                             {}
func (nc *NoopCollector) ExecutionLastExecutedBlockHeight(height uint64)                  {}
func (nc *NoopCollector) ExecutionBlockCyclesVectorComponent(kind string, intensity uint) {}
func (nc *NoopCollector) ExecutionTransactionSkipped()                                    {}
func (nc *NoopCollector) ExecutionServiceConstructed(service string)                      {}
func (nc *NoopCollector) ExecutionGenesisCreated(dur time.Duration, services int)         {}
func (nc *NoopCollector) ExecutionBlockExecuted(dur time.Duration, stats module.ExecutionResultStats) {
}
func (nc *NoopCollector) ExecutionTransactionExecuted(dur time.Duration, cyclesUsed uint64, eventCounts int, failed bool) {
}
func (nc *NoopCollector) ExecutionReadExecuted(dur time.Duration, cyclesUsed uint64, failed bool) {
}
