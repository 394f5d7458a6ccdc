// Package metrics exports the statistics of search engines to
// prometheus.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/operator-framework/searchkit/pkg/search"
)

const (
	namespace   = "searchkit"
	EngineLabel = "engine"
)

// StatisticsSource is anything that reports search statistics, usually a
// search.Engine.
type StatisticsSource interface {
	Statistics() search.Statistics
}

var (
	nodesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "nodes_total"),
		"Number of nodes explored",
		[]string{EngineLabel}, nil,
	)
	failsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "failures_total"),
		"Number of failed nodes",
		[]string{EngineLabel}, nil,
	)
	restartsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "restarts_total"),
		"Number of restarts",
		[]string{EngineLabel}, nil,
	)
	noGoodsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "nogoods_total"),
		"Number of nogoods posted",
		[]string{EngineLabel}, nil,
	)
	depthDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "depth"),
		"Maximum depth of the search stack",
		[]string{EngineLabel}, nil,
	)
	memoryDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "memory_bytes"),
		"Peak memory used by the search path",
		[]string{EngineLabel}, nil,
	)
)

// Collector is a prometheus.Collector reading the statistics of a set
// of named sources on every scrape.
type Collector struct {
	mu      sync.Mutex
	sources map[string]StatisticsSource
}

var _ prometheus.Collector = &Collector{}

func NewCollector() *Collector {
	return &Collector{sources: map[string]StatisticsSource{}}
}

// Add starts reporting the statistics of src under name.
func (c *Collector) Add(name string, src StatisticsSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[name] = src
}

// Remove stops reporting name.
func (c *Collector) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sources, name)
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- nodesDesc
	ch <- failsDesc
	ch <- restartsDesc
	ch <- noGoodsDesc
	ch <- depthDesc
	ch <- memoryDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, src := range c.sources {
		s := src.Statistics()
		ch <- prometheus.MustNewConstMetric(nodesDesc, prometheus.CounterValue, float64(s.Node), name)
		ch <- prometheus.MustNewConstMetric(failsDesc, prometheus.CounterValue, float64(s.Fail), name)
		ch <- prometheus.MustNewConstMetric(restartsDesc, prometheus.CounterValue, float64(s.Restart), name)
		ch <- prometheus.MustNewConstMetric(noGoodsDesc, prometheus.CounterValue, float64(s.NoGood), name)
		ch <- prometheus.MustNewConstMetric(depthDesc, prometheus.GaugeValue, float64(s.Depth), name)
		ch <- prometheus.MustNewConstMetric(memoryDesc, prometheus.GaugeValue, float64(s.Memory), name)
	}
}

// Snapshot is a StatisticsSource holding the last statistics it was
// updated with. Sequential engines must not be read while they search;
// callers update a Snapshot between calls to Next instead.
type Snapshot struct {
	mu sync.RWMutex
	s  search.Statistics
}

func (s *Snapshot) Update(st search.Statistics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s = st
}

func (s *Snapshot) Statistics() search.Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.s
}
