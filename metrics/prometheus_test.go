// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useRegistry installs a prometheus backend over a private registry for the
// duration of the test.
func useRegistry(t *testing.T) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	prev := metrics
	metrics = newPrometheusMetrics(reg, reg)
	t.Cleanup(func() { metrics = prev })
	return reg
}

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestPromMetrics(t *testing.T) {
	reg := useRegistry(t)

	Counter("tx_total").Add(3)
	Counter("tx_total").Add(2)

	execs := HistogramVec("exec_ms", []string{"status"}, BucketExecution)
	gauge := Gauge("head_seq")
	gaugeVec := GaugeVec("pool_stakes", []string{"pool"})
	countVec := CounterVec("reverts", []string{"reason"})

	total := 0
	for i := range 10 {
		status := strconv.Itoa(i % 2)
		execs.ObserveWithLabels(int64(i), map[string]string{"status": status})
		countVec.AddWithLabel(1, map[string]string{"reason": status})
		gaugeVec.AddWithLabel(int64(i), map[string]string{"pool": status})
		total += i
	}
	gauge.Set(42)
	gaugeVec.SetWithLabel(7, map[string]string{"pool": "x"})

	fams := gather(t, reg)
	assert.Equal(t, float64(5), fams["rewardpool_tx_total"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(42), fams["rewardpool_head_seq"].Metric[0].GetGauge().GetValue())

	var sum float64
	for _, m := range fams["rewardpool_exec_ms"].Metric {
		sum += m.GetHistogram().GetSampleSum()
	}
	assert.Equal(t, float64(total), sum)

	require.Len(t, fams["rewardpool_pool_stakes"].Metric, 3)
	require.Len(t, fams["rewardpool_reverts"].Metric, 2)
	assert.Equal(t, float64(5), fams["rewardpool_reverts"].Metric[0].GetCounter().GetValue())
}

func TestHandler(t *testing.T) {
	useRegistry(t)
	Counter("served").Add(1)

	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "rewardpool_served 1")
}

func TestNoopMetrics(t *testing.T) {
	prev := metrics
	metrics = defaultNoopMetrics()
	t.Cleanup(func() { metrics = prev })

	assert.False(t, Enabled())
	Counter("c").Add(1)
	CounterVec("cv", []string{"a"}).AddWithLabel(1, map[string]string{"nonsense": "ok"})
	GaugeVec("gv", nil).SetWithLabel(1, nil)
	HistogramVec("hv", nil, nil).ObserveWithLabels(1, nil)

	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)
	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLazyLoading(t *testing.T) {
	prev := metrics
	metrics = defaultNoopMetrics()
	t.Cleanup(func() { metrics = prev })

	for _, m := range []any{
		Gauge("g"),
		GaugeVec("gv", nil),
		Counter("c"),
		CounterVec("cv", nil),
		Histogram("h", nil),
		HistogramVec("hv", nil, nil),
	} {
		require.IsType(t, &noopMeters{}, m)
	}

	lazyGauge := LazyLoadGauge("lazy_gauge")
	lazyGaugeVec := LazyLoadGaugeVec("lazy_gauge_vec", nil)
	lazyCounter := LazyLoadCounter("lazy_counter")
	lazyCounterVec := LazyLoadCounterVec("lazy_counter_vec", nil)
	lazyHistogram := LazyLoadHistogram("lazy_histogram", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazy_histogram_vec", nil, nil)

	reg := prometheus.NewRegistry()
	metrics = newPrometheusMetrics(reg, reg)
	assert.True(t, Enabled())

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())

	// cached
	assert.Same(t, lazyCounter(), lazyCounter())
}
