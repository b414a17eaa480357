package worker

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Lakshith-P/ipc-debugging-tools/internal/ipc"
)

// Deadlock demo roles: the two workers that acquire the demo locks in
// conflicting order when deadlock mode is enabled.
const (
	RoleLockFirstA = 2
	RoleLockFirstB = 3
)

// Timings bounds the control loop's sleeps and intervals. The zero value
// is replaced with DefaultTimings by New.
type Timings struct {
	Tick          time.Duration // per-iteration sleep bounding busy-wait
	WorkMin       time.Duration // simulated processing after a receive
	WorkMax       time.Duration
	SendMin       time.Duration // randomized send interval bounds
	SendMax       time.Duration
	DeadlockPause time.Duration // widens the demo's contention window
}

// DefaultTimings returns the reference loop timings.
func DefaultTimings() Timings {
	return Timings{
		Tick:          10 * time.Millisecond,
		WorkMin:       50 * time.Millisecond,
		WorkMax:       200 * time.Millisecond,
		SendMin:       500 * time.Millisecond,
		SendMax:       2 * time.Second,
		DeadlockPause: time.Second,
	}
}

// Config carries everything a worker shares with the rest of the run.
type Config struct {
	ID          int
	Count       int
	Channel     ipc.Channel
	Diagnostics ipc.Observer // nil disables contention reporting
	Logs        chan<- string

	Timings Timings

	// Deadlock demo wiring; only RoleLockFirstA and RoleLockFirstB act on it.
	DeadlockMode bool
	LockA        *sync.Mutex
	LockB        *sync.Mutex
}

// Worker runs one simulated process.
type Worker struct {
	cfg  Config
	stop chan struct{}
}

// New creates a worker; Run must be called to start its loop.
func New(cfg Config) *Worker {
	if cfg.Timings == (Timings{}) {
		cfg.Timings = DefaultTimings()
	}
	return &Worker{cfg: cfg, stop: make(chan struct{}, 1)}
}

// ID returns the simulated process id.
func (w *Worker) ID() int {
	return w.cfg.ID
}

// Stop requests the worker to exit. The request is observed at the top of
// the next loop iteration; a worker frozen in the deadlock demo never sees
// it.
func (w *Worker) Stop() {
	select {
	case w.stop <- struct{}{}:
	default:
	}
}

// Run executes the control loop until stopped or the transport fails.
func (w *Worker) Run() {
	w.logf("Started.")

	if w.cfg.DeadlockMode && w.cfg.LockA != nil && w.cfg.LockB != nil {
		w.deadlockDemo()
	}

	lastSend := time.Now()
	sendAfter := randDur(w.cfg.Timings.SendMin, w.cfg.Timings.SendMax)

	for {
		select {
		case <-w.stop:
			w.logf("Stopping.")
			return
		default:
		}

		msg, err := w.cfg.Channel.Recv(w.cfg.ID, w.cfg.Diagnostics)
		if err != nil {
			w.fail(err)
			return
		}
		if msg != nil {
			w.logf("Received '%s' from P%d, latency=%.4fs",
				msg.Payload, msg.Source, msg.Latency().Seconds())
			time.Sleep(randDur(w.cfg.Timings.WorkMin, w.cfg.Timings.WorkMax))
		}

		if time.Since(lastSend) > sendAfter {
			dst := rand.Intn(w.cfg.Count)
			if dst == w.cfg.ID {
				dst = (w.cfg.ID + 1) % w.cfg.Count
			}
			payload := fmt.Sprintf("Hello from P%d", w.cfg.ID)
			w.logf("Sending '%s' to P%d", payload, dst)
			if err := w.cfg.Channel.Send(w.cfg.ID, payload); err != nil {
				w.fail(err)
				return
			}
			lastSend = time.Now()
			sendAfter = randDur(w.cfg.Timings.SendMin, w.cfg.Timings.SendMax)
		}

		time.Sleep(w.cfg.Timings.Tick)
	}
}

// deadlockDemo acquires the two demo locks in role-dependent order. The
// second acquisition never returns while the counterpart holds that lock;
// the wait edge registered just before lets the diagnostics engine see the
// resulting cycle.
func (w *Worker) deadlockDemo() {
	id := w.cfg.ID
	switch id {
	case RoleLockFirstA:
		w.logf("DEADLOCK_MODE (P%d): Acquiring Lock A...", id)
		w.cfg.LockA.Lock()
		w.logf("DEADLOCK_MODE (P%d): Acquired Lock A. Simulating work...", id)
		time.Sleep(w.cfg.Timings.DeadlockPause)
		w.logf("DEADLOCK_MODE (P%d): Trying to acquire Lock B...", id)
		w.addWait(id, RoleLockFirstB)
		w.cfg.LockB.Lock()
		w.logf("DEADLOCK_MODE (P%d): Acquired Lock B.", id)
		w.removeWait(id)
		w.cfg.LockB.Unlock()
		w.cfg.LockA.Unlock()

	case RoleLockFirstB:
		w.logf("DEADLOCK_MODE (P%d): Acquiring Lock B...", id)
		w.cfg.LockB.Lock()
		w.logf("DEADLOCK_MODE (P%d): Acquired Lock B. Simulating work...", id)
		time.Sleep(w.cfg.Timings.DeadlockPause)
		w.logf("DEADLOCK_MODE (P%d): Trying to acquire Lock A...", id)
		w.addWait(id, RoleLockFirstA)
		w.cfg.LockA.Lock()
		w.logf("DEADLOCK_MODE (P%d): Acquired Lock A.", id)
		w.removeWait(id)
		w.cfg.LockA.Unlock()
		w.cfg.LockB.Unlock()
	}
}

// fail logs the terminal condition. A torn-down transport is normal
// shutdown; anything else surfaces its message text. Either way the loop
// exits with no retry.
func (w *Worker) fail(err error) {
	if errors.Is(err, ipc.ErrClosed) {
		w.logf("Channel closed. Exiting.")
		return
	}
	w.logf("ERROR: %v", err)
}

func (w *Worker) addWait(waiter, owner int) {
	if w.cfg.Diagnostics != nil {
		w.cfg.Diagnostics.AddWait(waiter, owner)
	}
}

func (w *Worker) removeWait(waiter int) {
	if w.cfg.Diagnostics != nil {
		w.cfg.Diagnostics.RemoveWait(waiter)
	}
}

func (w *Worker) logf(format string, args ...any) {
	w.cfg.Logs <- fmt.Sprintf("[P%d] ", w.cfg.ID) + fmt.Sprintf(format, args...)
}

// randDur returns a uniform duration in [min, max).
func randDur(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
