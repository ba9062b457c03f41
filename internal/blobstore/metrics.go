package blobstore

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Store-level Prometheus metrics. All metrics carry a "store" label whose
// value is the Group set in ProviderConfig, allowing the raster and vector
// stores to be distinguished in dashboards and alerts.
var (
	// HitsTotal counts store lookups that returned bytes, per group.
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetcache_store_hits_total",
			Help: "Total number of blob store hits.",
		},
		[]string{"store"},
	)

	// MissesTotal counts store lookups that returned not-found (absent or
	// stale), per group.
	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetcache_store_misses_total",
			Help: "Total number of blob store misses.",
		},
		[]string{"store"},
	)

	// EvictionsTotal counts evicted entries per group.
	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetcache_store_evictions_total",
			Help: "Total number of entries evicted from the blob store.",
		},
		[]string{"store"},
	)
)

func init() {
	prometheus.MustRegister(
		HitsTotal,
		MissesTotal,
		EvictionsTotal,
	)
}

// storeEntriesCollector is a Prometheus Collector that lazily reports the
// current entry count for a single store group by calling lenFunc at scrape
// time. This avoids stale counts caused by TTL expiry happening outside the
// application's control (e.g. Redis per-field TTL).
type storeEntriesCollector struct {
	desc    *prometheus.Desc
	lenFunc func() int
}

func (c *storeEntriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *storeEntriesCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.lenFunc()))
}

var (
	entriesCollectorMu sync.Mutex
	entriesCollectors  = make(map[string]*storeEntriesCollector)
	// entriesReg is the Prometheus registerer used for entries collectors.
	// Exposed as a variable so tests can substitute an isolated registry.
	entriesReg prometheus.Registerer = prometheus.DefaultRegisterer
)

// registerEntriesCollector registers a per-group entries collector that
// lazily reads the store size at scrape time. If a collector for the same
// group already exists it is replaced, making it safe to call when a new
// store instance is created for a group that was previously registered
// (e.g., in tests).
func registerEntriesCollector(group string, lenFunc func() int) *storeEntriesCollector {
	desc := prometheus.NewDesc(
		"assetcache_store_entries",
		"Current number of entries in the blob store.",
		nil,
		prometheus.Labels{"store": group},
	)
	c := &storeEntriesCollector{desc: desc, lenFunc: lenFunc}

	entriesCollectorMu.Lock()
	defer entriesCollectorMu.Unlock()

	if old, ok := entriesCollectors[group]; ok {
		entriesReg.Unregister(old)
	}
	entriesCollectors[group] = c
	_ = entriesReg.Register(c)
	return c
}

// unregisterEntriesCollector removes the entries collector for the given group.
func unregisterEntriesCollector(group string) {
	entriesCollectorMu.Lock()
	defer entriesCollectorMu.Unlock()

	if c, ok := entriesCollectors[group]; ok {
		entriesReg.Unregister(c)
		delete(entriesCollectors, group)
	}
}
