package diagnostics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTwoCycleDetection(t *testing.T) {
	d := New()

	d.AddWait(2, 3)
	assert.Empty(t, d.Alert())

	d.AddWait(3, 2)
	alert := d.Alert()
	assert.Contains(t, alert, "DEADLOCK")
	assert.Contains(t, alert, "P2")
	assert.Contains(t, alert, "P3")

	// Removing either edge clears the alert on the next check.
	d.RemoveWait(3)
	assert.Empty(t, d.Alert())
}

func TestLongerCycle(t *testing.T) {
	d := New()
	d.AddWait(0, 1)
	d.AddWait(1, 2)
	assert.Empty(t, d.Alert())

	d.AddWait(2, 0)
	assert.Equal(t, "DEADLOCK: P0 → P1 → P2 → P0", d.Alert())
}

func TestNoCycleOnChain(t *testing.T) {
	d := New()
	d.AddWait(0, 1)
	d.AddWait(1, 2)
	d.AddWait(2, 3)
	assert.Empty(t, d.CheckDeadlock())
}

func TestAlertOverwrittenNotMerged(t *testing.T) {
	d := New()
	d.AddWait(2, 3)
	d.AddWait(3, 2)
	assert.NotEmpty(t, d.Alert())

	// The next evaluation replaces the finding entirely.
	d.RemoveWait(2)
	assert.Empty(t, d.CheckDeadlock())
}

func TestSelfWait(t *testing.T) {
	d := New()
	d.AddWait(5, 5)
	assert.Equal(t, "DEADLOCK: P5 → P5", d.Alert())
}

func TestBottlenecks(t *testing.T) {
	d := New()
	base := time.Now()
	d.now = func() time.Time { return base }

	d.UpdateAccess(0)
	d.UpdateAccess(1)
	assert.Empty(t, d.Bottlenecks())

	// Past the idle threshold both show up, sorted.
	d.now = func() time.Time { return base.Add(3 * time.Second) }
	assert.Equal(t, "Idle: P0, P1", d.Bottlenecks())

	// Touching a process resets its idle clock.
	d.UpdateAccess(1)
	assert.Equal(t, "Idle: P0", d.Bottlenecks())
}

func TestBottleneckThresholdBoundary(t *testing.T) {
	d := NewWithThreshold(time.Second)
	base := time.Now()
	d.now = func() time.Time { return base }
	d.UpdateAccess(7)

	// Exactly at the threshold is not yet idle.
	d.now = func() time.Time { return base.Add(time.Second) }
	assert.Empty(t, d.Bottlenecks())

	d.now = func() time.Time { return base.Add(time.Second + time.Millisecond) }
	assert.Equal(t, "Idle: P7", d.Bottlenecks())
}
