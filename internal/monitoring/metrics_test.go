package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsLifecycle(t *testing.T) {
	m := New()
	m.MarkRunStart(4)
	m.MessagesReceived.Inc()
	m.MessageLatency.Observe(0.01)
	m.MessagesSent.WithLabelValues("2").Inc()
	m.UpdateUptime()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"ipcsim_messages_sent_total",
		"ipcsim_messages_received_total",
		"ipcsim_message_latency_seconds",
		"ipcsim_workers_active",
		"ipcsim_runs_total",
		"ipcsim_run_uptime_seconds",
	} {
		assert.True(t, names[want], want)
	}
}

func TestIndependentRegistries(t *testing.T) {
	// Two collectors must not collide; each owns its registry.
	a, b := New(), New()
	a.MarkRunStart(2)
	b.MarkRunStart(3)

	_, err := a.Registry().Gather()
	assert.NoError(t, err)
	_, err = b.Registry().Gather()
	assert.NoError(t, err)
}
