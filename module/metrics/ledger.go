package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/servicechain/executor/module"
)

type LedgerCollector struct {
	forestNumberOfTrees       prometheus.Gauge
	latestTrieRegCount        prometheus.Gauge
	latestTrieRegCountDiff    prometheus.Gauge
	latestTrieMaxDepthTouched prometheus.Gauge
	updated                   prometheus.Counter
	proofSize                 prometheus.Gauge
	updatedValuesNumber       prometheus.Counter
	updatedDuration           prometheus.Histogram
	readValuesNumber          prometheus.Counter
	readDuration              prometheus.Histogram
}

var _ module.LedgerMetrics = (*LedgerCollector)(nil)

func NewLedgerCollector(registerer prometheus.Registerer) *LedgerCollector {

	forestNumberOfTrees := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemMTrie,
		Name:      "forest_number_of_trees",
		Help:      "the number of trees in memory",
	})

	latestTrieRegCount := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemMTrie,
		Name:      "latest_trie_reg_count",
		Help:      "the number of allocated registers (latest created trie)",
	})

	latestTrieRegCountDiff := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemMTrie,
		Name:      "latest_trie_reg_count_diff",
		Help:      "the difference between number of unique register allocated of the latest created trie and parent trie",
	})

	latestTrieMaxDepthTouched := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemMTrie,
		Name:      "latest_trie_max_depth_touched",
		Help:      "the maximum depth touched of the latest created trie",
	})

	updated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemMTrie,
		Name:      "updates_counted",
		Help:      "the number of updates",
	})

	proofSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemMTrie,
		Name:      "average_proof_size",
		Help:      "the average size of a single generated proof in bytes",
	})

	updatedValuesNumber := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemMTrie,
		Name:      "update_values_number",
		Help:      "the total number of values updated",
	})

	updatedDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemMTrie,
		Name:      "update_duration",
		Help:      "the duration of update operation",
		Buckets:   []float64{0.05, 0.2, 0.5, 1, 2, 5},
	})

	readValuesNumber := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemMTrie,
		Name:      "read_values_number",
		Help:      "the total number of values read",
	})

	readDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceExecution,
		Subsystem: subsystemMTrie,
		Name:      "read_duration",
		Help:      "the duration of read operation",
		Buckets:   []float64{0.05, 0.2, 0.5, 1, 2, 5},
	})

	registerer.MustRegister(
		forestNumberOfTrees,
		latestTrieRegCount,
		latestTrieRegCountDiff,
		latestTrieMaxDepthTouched,
		updated,
		proofSize,
		updatedValuesNumber,
		updatedDuration,
		readValuesNumber,
		readDuration,
	)

	return &LedgerCollector{
		forestNumberOfTrees:       forestNumberOfTrees,
		latestTrieRegCount:        latestTrieRegCount,
		latestTrieRegCountDiff:    latestTrieRegCountDiff,
		latestTrieMaxDepthTouched: latestTrieMaxDepthTouched,
		updated:                   updated,
		proofSize:                 proofSize,
		updatedValuesNumber:       updatedValuesNumber,
		updatedDuration:           updatedDuration,
		readValuesNumber:          readValuesNumber,
		readDuration:              readDuration,
	}
}

// ForestNumberOfTrees current number of trees in a forest (in memory)
func (lc *LedgerCollector) ForestNumberOfTrees(number uint64) {
	lc.forestNumberOfTrees.Set(float64(number))
}

// LatestTrieRegCount records the number of unique register allocated (the lastest created trie)
func (lc *LedgerCollector) LatestTrieRegCount(number uint64) {
	lc.latestTrieRegCount.Set(float64(number))
}

// LatestTrieRegCountDiff records the difference between the number of unique register allocated of the latest created trie and parent trie
func (lc *LedgerCollector) LatestTrieRegCountDiff(number int64) {
	lc.latestTrieRegCountDiff.Set(float64(number))
}

// LatestTrieMaxDepthTouched records the maximum depth touched of the last created trie
func (lc *LedgerCollector) LatestTrieMaxDepthTouched(maxDepth uint16) {
	lc.latestTrieMaxDepthTouched.Set(float64(maxDepth))
}

// UpdateCount increase a counter of performed updates
func (lc *LedgerCollector) UpdateCount() {
	lc.updated.Inc()
}

// ProofSize records a proof size
func (lc *LedgerCollector) ProofSize(bytes uint32) {
	lc.proofSize.Set(float64(bytes))
}

// UpdateValuesNumber accumulates number of updated values
func (lc *LedgerCollector) UpdateValuesNumber(number uint64) {
	lc.updatedValuesNumber.Add(float64(number))
}

// UpdateDuration records absolute time for the update of a trie
func (lc *LedgerCollector) UpdateDuration(duration time.Duration) {
	lc.updatedDuration.Observe(duration.Seconds())
}

// ReadValuesNumber accumulates number of read values
func (lc *LedgerCollector) ReadValuesNumber(number uint64) {
	lc.readValuesNumber.Add(float64(number))
}

// ReadDuration records absolute time for the read from a trie
func (lc *LedgerCollector) ReadDuration(duration time.Duration) {
	lc.readDuration.Observe(duration.Seconds())
}
