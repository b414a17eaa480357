package worker

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lakshith-P/ipc-debugging-tools/internal/diagnostics"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/ipc"
)

// scriptedChannel returns queued results from Recv and records sends.
type scriptedChannel struct {
	mu      sync.Mutex
	recvs   []recvResult
	sends   []string
	sendErr error
}

type recvResult struct {
	msg *ipc.Message
	err error
}

func (s *scriptedChannel) Send(src int, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, payload)
	return s.sendErr
}

func (s *scriptedChannel) Recv(dst int, obs ipc.Observer) (*ipc.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recvs) == 0 {
		return nil, nil
	}
	r := s.recvs[0]
	s.recvs = s.recvs[1:]
	return r.msg, r.err
}

func (s *scriptedChannel) Status() string { return "scripted" }
func (s *scriptedChannel) Kind() ipc.Kind { return ipc.Kind("Scripted") }
func (s *scriptedChannel) Close() error   { return nil }

func fastTimings() Timings {
	return Timings{
		Tick:          time.Millisecond,
		WorkMin:       time.Millisecond,
		WorkMax:       2 * time.Millisecond,
		SendMin:       10 * time.Millisecond,
		SendMax:       30 * time.Millisecond,
		DeadlockPause: 50 * time.Millisecond,
	}
}

func drain(logs chan string) []string {
	var lines []string
	for {
		select {
		case line := <-logs:
			lines = append(lines, line)
		default:
			return lines
		}
	}
}

func TestWorkerStartStop(t *testing.T) {
	logs := make(chan string, 256)
	w := New(Config{ID: 0, Count: 2, Channel: &scriptedChannel{}, Logs: logs, Timings: fastTimings()})

	done := make(chan struct{})
	go func() { w.Run(); close(done) }()

	time.Sleep(20 * time.Millisecond)
	w.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}

	lines := drain(logs)
	assert.Equal(t, "[P0] Started.", lines[0])
	assert.Equal(t, "[P0] Stopping.", lines[len(lines)-1])
}

func TestWorkerReceiveLogsLatency(t *testing.T) {
	logs := make(chan string, 256)
	ch := &scriptedChannel{recvs: []recvResult{{msg: &ipc.Message{
		Source:    1,
		Payload:   "Hello from P1",
		Timestamp: time.Now().Add(-10 * time.Millisecond),
	}}}}
	w := New(Config{ID: 0, Count: 2, Channel: ch, Logs: logs, Timings: fastTimings()})

	done := make(chan struct{})
	go func() { w.Run(); close(done) }()
	time.Sleep(30 * time.Millisecond)
	w.Stop()
	<-done

	joined := strings.Join(drain(logs), "\n")
	assert.Contains(t, joined, "[P0] Received 'Hello from P1' from P1, latency=0.0")
}

func TestWorkerChannelClosed(t *testing.T) {
	logs := make(chan string, 256)
	ch := &scriptedChannel{recvs: []recvResult{{err: ipc.ErrClosed}}}
	w := New(Config{ID: 3, Count: 4, Channel: ch, Logs: logs, Timings: fastTimings()})

	w.Run()

	lines := drain(logs)
	require.Len(t, lines, 2)
	assert.Equal(t, "[P3] Started.", lines[0])
	assert.Equal(t, "[P3] Channel closed. Exiting.", lines[1])
}

func TestWorkerTransientFailure(t *testing.T) {
	logs := make(chan string, 256)
	ch := &scriptedChannel{recvs: []recvResult{{err: errors.New("read failed")}}}
	w := New(Config{ID: 1, Count: 4, Channel: ch, Logs: logs, Timings: fastTimings()})

	w.Run()

	lines := drain(logs)
	require.Len(t, lines, 2)
	assert.Equal(t, "[P1] ERROR: read failed", lines[1])
}

func TestWorkerNeverSendsToSelf(t *testing.T) {
	logs := make(chan string, 4096)
	ch := &scriptedChannel{}
	w := New(Config{ID: 2, Count: 4, Channel: ch, Logs: logs, Timings: fastTimings()})

	done := make(chan struct{})
	go func() { w.Run(); close(done) }()
	time.Sleep(300 * time.Millisecond)
	w.Stop()
	<-done

	sent := false
	for _, line := range drain(logs) {
		if strings.Contains(line, "Sending") {
			sent = true
			assert.NotContains(t, line, "to P2")
		}
	}
	assert.True(t, sent, "expected at least one send in the run window")
}

func TestEndToEndQueueRun(t *testing.T) {
	const n = 4
	logs := make(chan string, 8192)
	ch := ipc.NewQueue()

	var workers []*Worker
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		w := New(Config{ID: i, Count: n, Channel: ch, Logs: logs, Timings: fastTimings()})
		workers = append(workers, w)
		wg.Add(1)
		go func() { defer wg.Done(); w.Run() }()
	}

	time.Sleep(500 * time.Millisecond)
	for _, w := range workers {
		w.Stop()
	}

	waited := make(chan struct{})
	go func() { wg.Wait(); close(waited) }()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop cleanly")
	}

	joined := strings.Join(drain(logs), "\n")
	for i := 0; i < n; i++ {
		assert.Contains(t, joined, fmt.Sprintf("[P%d] Started.", i))
		assert.Contains(t, joined, fmt.Sprintf("[P%d] Stopping.", i))
	}
	assert.NotContains(t, joined, "ERROR")
}

func TestEndToEndDeadlockDemo(t *testing.T) {
	const n = 4
	logs := make(chan string, 8192)
	ch := ipc.NewSharedMemTimings(5*time.Millisecond, 10*time.Millisecond)
	diag := diagnostics.New()
	var lockA, lockB sync.Mutex

	var workers []*Worker
	for i := 0; i < n; i++ {
		w := New(Config{
			ID: i, Count: n, Channel: ch, Diagnostics: diag, Logs: logs,
			Timings:      fastTimings(),
			DeadlockMode: true, LockA: &lockA, LockB: &lockB,
		})
		workers = append(workers, w)
		go w.Run()
	}

	// Both roles hold their first lock after the pause, then block on the
	// second forever. Workers 2 and 3 are deliberately leaked here; they
	// cannot observe a stop once frozen.
	time.Sleep(400 * time.Millisecond)
	for _, w := range workers {
		w.Stop()
	}
	time.Sleep(50 * time.Millisecond)

	joined := strings.Join(drain(logs), "\n")
	assert.Contains(t, joined, "[P2] DEADLOCK_MODE (P2): Trying to acquire Lock B...")
	assert.Contains(t, joined, "[P3] DEADLOCK_MODE (P3): Trying to acquire Lock A...")
	assert.NotContains(t, joined, "[P2] DEADLOCK_MODE (P2): Acquired Lock B.")
	assert.NotContains(t, joined, "[P3] DEADLOCK_MODE (P3): Acquired Lock A.")

	alert := diag.CheckDeadlock()
	assert.Contains(t, alert, "P2")
	assert.Contains(t, alert, "P3")
}
