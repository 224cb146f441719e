package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNewRegistersAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SessionsOnline.Set(3)
	m.MessagesSent.Add(2)
	m.FanoutDropped.Inc()
	m.RefresherQueued.Set(1)

	assert.Equal(t, float64(3), gaugeValue(t, m.SessionsOnline))
	assert.Equal(t, float64(2), counterValue(t, m.MessagesSent))
	assert.Equal(t, float64(1), counterValue(t, m.FanoutDropped))
	assert.Equal(t, float64(1), gaugeValue(t, m.RefresherQueued))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)
}
