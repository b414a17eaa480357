package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Sim.Procs)
	assert.Equal(t, "queue", cfg.Sim.Channel)
	assert.Equal(t, 10*time.Millisecond, cfg.Sim.Tick)
	assert.Equal(t, 100*time.Millisecond, cfg.Sim.ShmRecvWait)
	assert.Equal(t, 150*time.Millisecond, cfg.Sim.ContentionHold)
	assert.Equal(t, 2*time.Second, cfg.Sim.IdleThreshold)
	assert.Equal(t, ":8090", cfg.HTTP.Addr)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("IPCSIM_PROCS", "6")
	t.Setenv("IPCSIM_CHANNEL", "shm")
	t.Setenv("IPCSIM_TICK", "2ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Sim.Procs)
	assert.Equal(t, "shm", cfg.Sim.Channel)
	assert.Equal(t, 2*time.Millisecond, cfg.Sim.Tick)
}

func TestDefaultMatchesLoad(t *testing.T) {
	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
}
