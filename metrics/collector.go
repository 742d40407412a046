// Package metrics exports descriptor pool statistics to prometheus.
//
//	collector := metrics.NewPoolCollector("myapp")
//	collector.Add(pool)
//	prometheus.MustRegister(collector)
//
// Every registered pool is labeled with its name, and the descriptor_pools metrics sum
// every registered pool. Statistics are read from the pool at
// scrape time, so the collector takes the pool's mutex on each scrape unless the pool was
// created with vdp.PoolCreateExternallySynchronized, in which case scrapes must be
// serialized with the rest of the pool's use by the caller.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vkngwrapper/arsenal/vdp"
)

// StatisticsSource is implemented by *vdp.Pool
type StatisticsSource interface {
	Name() string
	Statistics() vdp.Statistics
}

// PoolCollector is a prometheus.Collector reporting the capacity and usage of a set of pools
type PoolCollector struct {
	mu    sync.RWMutex
	pools []StatisticsSource

	maxSets              *prometheus.Desc
	allocatedSets        *prometheus.Desc
	availableSets        *prometheus.Desc
	layouts              *prometheus.Desc
	allocationsTotal     *prometheus.Desc
	exhaustedAllocations *prometheus.Desc
	purgesTotal          *prometheus.Desc

	poolsMaxSets              *prometheus.Desc
	poolsAllocatedSets        *prometheus.Desc
	poolsExhaustedAllocations *prometheus.Desc
}

// NewPoolCollector creates a collector whose metrics are prefixed with namespace
func NewPoolCollector(namespace string) *PoolCollector {
	labels := []string{"pool"}
	name := func(metric string) string {
		return prometheus.BuildFQName(namespace, "descriptor_pool", metric)
	}
	totalName := func(metric string) string {
		return prometheus.BuildFQName(namespace, "descriptor_pools", metric)
	}

	return &PoolCollector{
		maxSets:              prometheus.NewDesc(name("max_sets"), "Number of descriptor sets the pool can allocate between purges", labels, nil),
		allocatedSets:        prometheus.NewDesc(name("allocated_sets"), "Number of descriptor sets allocated since the last purge", labels, nil),
		availableSets:        prometheus.NewDesc(name("available_sets"), "Number of descriptor sets that can be allocated before the pool is exhausted", labels, nil),
		layouts:              prometheus.NewDesc(name("layouts"), "Number of distinct layouts among the allocated descriptor sets", labels, nil),
		allocationsTotal:     prometheus.NewDesc(name("allocations_total"), "Total number of descriptor sets allocated", labels, nil),
		exhaustedAllocations: prometheus.NewDesc(name("exhausted_allocations_total"), "Total number of allocations that failed because the pool was exhausted", labels, nil),
		purgesTotal:          prometheus.NewDesc(name("purges_total"), "Total number of purges", labels, nil),

		poolsMaxSets:              prometheus.NewDesc(totalName("max_sets"), "Number of descriptor sets all registered pools can allocate between purges", nil, nil),
		poolsAllocatedSets:        prometheus.NewDesc(totalName("allocated_sets"), "Number of descriptor sets allocated across all registered pools", nil, nil),
		poolsExhaustedAllocations: prometheus.NewDesc(totalName("exhausted_allocations_total"), "Total number of allocations that failed because a registered pool was exhausted", nil, nil),
	}
}

// Add registers a pool with the collector. Pools must be removed before they are destroyed.
func (c *PoolCollector) Add(pool StatisticsSource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pools = append(c.pools, pool)
}

// Remove unregisters a pool from the collector
func (c *PoolCollector) Remove(pool StatisticsSource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, p := range c.pools {
		if p == pool {
			c.pools = append(c.pools[:i], c.pools[i+1:]...)
			return
		}
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.maxSets
	ch <- c.allocatedSets
	ch <- c.availableSets
	ch <- c.layouts
	ch <- c.allocationsTotal
	ch <- c.exhaustedAllocations
	ch <- c.purgesTotal
	ch <- c.poolsMaxSets
	ch <- c.poolsAllocatedSets
	ch <- c.poolsExhaustedAllocations
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total vdp.Statistics
	for _, pool := range c.pools {
		name := pool.Name()
		stats := pool.Statistics()
		total.AddStatistics(&stats)

		ch <- prometheus.MustNewConstMetric(c.maxSets, prometheus.GaugeValue, float64(stats.MaxSets), name)
		ch <- prometheus.MustNewConstMetric(c.allocatedSets, prometheus.GaugeValue, float64(stats.AllocatedSets), name)
		ch <- prometheus.MustNewConstMetric(c.availableSets, prometheus.GaugeValue, float64(stats.AvailableSets()), name)
		ch <- prometheus.MustNewConstMetric(c.layouts, prometheus.GaugeValue, float64(stats.LayoutCount), name)
		ch <- prometheus.MustNewConstMetric(c.allocationsTotal, prometheus.CounterValue, float64(stats.TotalAllocations), name)
		ch <- prometheus.MustNewConstMetric(c.exhaustedAllocations, prometheus.CounterValue, float64(stats.ExhaustedAllocations), name)
		ch <- prometheus.MustNewConstMetric(c.purgesTotal, prometheus.CounterValue, float64(stats.Purges), name)
	}

	ch <- prometheus.MustNewConstMetric(c.poolsMaxSets, prometheus.GaugeValue, float64(total.MaxSets))
	ch <- prometheus.MustNewConstMetric(c.poolsAllocatedSets, prometheus.GaugeValue, float64(total.AllocatedSets))
	ch <- prometheus.MustNewConstMetric(c.poolsExhaustedAllocations, prometheus.CounterValue, float64(total.ExhaustedAllocations))
}
