package metrics_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/searchkit/pkg/metrics"
	"github.com/operator-framework/searchkit/pkg/search"
)

func snapshot(s search.Statistics) *metrics.Snapshot {
	snap := &metrics.Snapshot{}
	snap.Update(s)
	return snap
}

func TestCollector(t *testing.T) {
	c := metrics.NewCollector()
	c.Add("dfs", snapshot(search.Statistics{Node: 10, Fail: 4, Depth: 3, Memory: 512}))
	c.Add("restart", snapshot(search.Statistics{Node: 7, Restart: 2, NoGood: 5}))

	assert.Equal(t, 12, testutil.CollectAndCount(c))
	assert.Equal(t, 2, testutil.CollectAndCount(c, "searchkit_nodes_total"))

	expected := `
# HELP searchkit_nodes_total Number of nodes explored
# TYPE searchkit_nodes_total counter
searchkit_nodes_total{engine="dfs"} 10
searchkit_nodes_total{engine="restart"} 7
# HELP searchkit_restarts_total Number of restarts
# TYPE searchkit_restarts_total counter
searchkit_restarts_total{engine="dfs"} 0
searchkit_restarts_total{engine="restart"} 2
# HELP searchkit_depth Maximum depth of the search stack
# TYPE searchkit_depth gauge
searchkit_depth{engine="dfs"} 3
searchkit_depth{engine="restart"} 0
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"searchkit_nodes_total", "searchkit_restarts_total", "searchkit_depth"))

	c.Remove("restart")
	assert.Equal(t, 6, testutil.CollectAndCount(c))
}

func TestCollectorRegistry(t *testing.T) {
	c := metrics.NewCollector()
	snap := snapshot(search.Statistics{Fail: 1})
	c.Add("bab", snap)

	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(c))

	snap.Update(search.Statistics{Fail: 9, NoGood: 2})
	families, err := registry.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			require.Len(t, m.GetLabel(), 1)
			assert.Equal(t, "bab", m.GetLabel()[0].GetValue())
			switch f.GetType() {
			case dto.MetricType_COUNTER:
				values[f.GetName()] = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				values[f.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, map[string]float64{
		"searchkit_nodes_total":    0,
		"searchkit_failures_total": 9,
		"searchkit_restarts_total": 0,
		"searchkit_nogoods_total":  2,
		"searchkit_depth":          0,
		"searchkit_memory_bytes":   0,
	}, values)
}
