package coordinator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Lakshith-P/ipc-debugging-tools/internal/config"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/diagnostics"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/ipc"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/logging"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/monitoring"
	"github.com/Lakshith-P/ipc-debugging-tools/internal/worker"
)

// ErrAlreadyRunning is returned by Start while a run is in progress.
var ErrAlreadyRunning = errors.New("coordinator: simulation already running")

// logBuffer bounds the shared worker log stream. Sized so a full drain
// interval of chatty workers never blocks a sender.
const logBuffer = 4096

// DataFlow records one observed send, parsed from the log stream.
type DataFlow struct {
	Src int       `json:"src"`
	Dst int       `json:"dst"`
	At  time.Time `json:"at"`
}

// Coordinator owns the lifecycle of one simulation at a time.
type Coordinator struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *monitoring.Metrics

	mu           sync.RWMutex
	running      bool
	stopping     bool
	status       string
	timeline     []string
	alert        string
	frozen       []int
	flows        []DataFlow
	msgCount     int
	totalLatency float64
	startTime    time.Time
	endTime      time.Time
	runID        string
	channelKind  ipc.Kind

	channel  ipc.Channel
	diag     *diagnostics.Diagnostics
	workers  []*worker.Worker
	logs     chan string
	done     chan struct{}
	workerWG *sync.WaitGroup
	loopWG   sync.WaitGroup

	subs    map[int]chan string
	nextSub int
}

// New creates an idle coordinator.
func New(cfg *config.Config, log *logging.Logger, metrics *monitoring.Metrics) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
		status:   "Idle",
		timeline: []string{"Welcome to IPCSync Debugger!"},
		subs:     make(map[int]chan string),
	}
}

// Start spawns n workers sharing one channel of the given kind. The
// deadlock demo requires the shared-memory channel and more than three
// workers; otherwise the flag is ignored, matching the original front end.
func (c *Coordinator) Start(n int, kind ipc.Kind, deadlockMode bool) error {
	if n < 1 {
		return fmt.Errorf("coordinator: need at least one worker, got %d", n)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrAlreadyRunning
	}

	sim := c.cfg.Sim
	var channel ipc.Channel
	if kind == ipc.KindSharedMem {
		channel = ipc.NewSharedMemTimings(sim.ShmRecvWait, sim.ContentionHold)
	} else {
		ch, err := ipc.New(kind)
		if err != nil {
			return err
		}
		channel = ch
	}

	// Diagnostics only observes the shared-memory variant; the other
	// channels produce no contention signals.
	var diag *diagnostics.Diagnostics
	var obs ipc.Observer
	if kind == ipc.KindSharedMem {
		diag = diagnostics.NewWithThreshold(sim.IdleThreshold)
		obs = diag
	}

	demo := deadlockMode && kind == ipc.KindSharedMem && n > 3
	var lockA, lockB *sync.Mutex
	if demo {
		lockA, lockB = &sync.Mutex{}, &sync.Mutex{}
	}

	timings := worker.Timings{
		Tick:          sim.Tick,
		WorkMin:       sim.WorkMin,
		WorkMax:       sim.WorkMax,
		SendMin:       sim.SendMin,
		SendMax:       sim.SendMax,
		DeadlockPause: sim.DeadlockPause,
	}

	c.channel = channel
	c.diag = diag
	c.channelKind = kind
	c.logs = make(chan string, logBuffer)
	c.done = make(chan struct{})
	c.workerWG = &sync.WaitGroup{}
	c.workers = nil
	c.frozen = nil
	c.flows = nil
	c.msgCount = 0
	c.totalLatency = 0
	c.startTime = time.Now()
	c.endTime = time.Time{}
	c.runID = uuid.New().String()

	c.timeline = append(c.timeline,
		fmt.Sprintf("--- Starting simulation with %d processes using %s ---", n, kind))
	if demo {
		c.timeline = append(c.timeline, "--- DEADLOCK DEMO MODE ENABLED ---")
	}

	for i := 0; i < n; i++ {
		w := worker.New(worker.Config{
			ID:          i,
			Count:       n,
			Channel:     channel,
			Diagnostics: obs,
			Logs:        c.logs,
			Timings:     timings,

			DeadlockMode: demo,
			LockA:        lockA,
			LockB:        lockB,
		})
		c.workers = append(c.workers, w)
		c.workerWG.Add(1)
		go func() {
			defer c.workerWG.Done()
			w.Run()
		}()
	}

	c.running = true
	c.status = "Running..."
	if demo {
		c.status = "Running in Deadlock Demo Mode..."
	}
	c.metrics.MarkRunStart(n)

	c.loopWG.Add(2)
	go c.drainLoop(c.done)
	go c.statsLoop(c.done)

	c.log.Info("simulation started",
		zap.String("run_id", c.runID),
		zap.Int("workers", n),
		zap.String("channel", string(kind)),
		zap.Bool("deadlock_demo", demo))
	return nil
}

// Stop sends every worker a stop token, joins them with a timeout, then
// tears the run down. Workers frozen in the deadlock demo cannot observe
// the token; they are reported and left blocked, since a goroutine cannot
// be terminated from outside.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running || c.stopping {
		c.mu.Unlock()
		return
	}
	c.stopping = true
	c.status = "Stopping..."
	workers := c.workers
	wg := c.workerWG
	done := c.done
	channel := c.channel
	c.mu.Unlock()

	for _, w := range workers {
		w.Stop()
	}

	joined := make(chan struct{})
	go func() {
		wg.Wait()
		close(joined)
	}()
	select {
	case <-joined:
	case <-time.After(c.cfg.Sim.JoinTimeout):
		c.log.Warn("workers still blocked after join timeout; leaving them frozen",
			zap.Ints("frozen", c.Frozen()))
	}

	close(done)
	c.loopWG.Wait()
	_ = channel.Close()

	c.mu.Lock()
	c.running = false
	c.stopping = false
	c.endTime = time.Now()
	c.status = "Idle"
	c.frozen = nil
	c.timeline = append(c.timeline, "--- Simulation Stopped ---")
	c.metrics.MarkRunStop()
	runID := c.runID
	c.mu.Unlock()

	c.log.Info("simulation stopped", zap.String("run_id", runID))
}

// drainLoop pulls worker log lines on the drain interval and a final time
// on shutdown.
func (c *Coordinator) drainLoop(done <-chan struct{}) {
	defer c.loopWG.Done()
	ticker := time.NewTicker(c.cfg.Sim.DrainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			c.drainOnce()
			return
		case <-ticker.C:
			c.drainOnce()
		}
	}
}

func (c *Coordinator) drainOnce() {
	for {
		select {
		case line := <-c.logs:
			c.ingest(line)
		default:
			return
		}
	}
}

// statsLoop refreshes channel status, uptime and the diagnostics alert on
// the stats interval.
func (c *Coordinator) statsLoop(done <-chan struct{}) {
	defer c.loopWG.Done()
	ticker := time.NewTicker(c.cfg.Sim.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.updateStats()
		}
	}
}

func (c *Coordinator) updateStats() {
	c.mu.Lock()
	if c.running && c.channel != nil {
		c.status = c.channel.Status()
	}
	diag := c.diag
	c.mu.Unlock()

	c.metrics.UpdateUptime()

	// Alert precedence matches the original: a deadlock finding wins over
	// the bottleneck report, and each evaluation overwrites the last.
	newAlert := ""
	if diag != nil {
		newAlert = diag.CheckDeadlock()
		if newAlert == "" {
			newAlert = diag.Bottlenecks()
		}
	}

	c.mu.Lock()
	c.alert = newAlert
	c.mu.Unlock()

	if strings.Contains(newAlert, "DEADLOCK") {
		c.metrics.DeadlockActive.Set(1)
	} else {
		c.metrics.DeadlockActive.Set(0)
	}
}

// ExportLog writes the newline-joined timeline to a timestamped file in
// the configured export directory and returns the path.
func (c *Coordinator) ExportLog() (string, error) {
	c.mu.RLock()
	content := strings.Join(c.timeline, "\n")
	c.mu.RUnlock()

	path := filepath.Join(c.cfg.Sim.ExportDir,
		fmt.Sprintf("ipcsync_log_%d.txt", time.Now().Unix()))
	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("export log: %w", err)
	}
	return path, nil
}

// Subscribe registers a listener for new timeline lines. The returned
// cancel function must be called to release the subscription. Slow
// listeners miss lines rather than stalling the drain loop.
func (c *Coordinator) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 256)
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
	return ch, cancel
}

// Running reports whether a simulation is in progress.
func (c *Coordinator) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Status returns the current status line (idle, running, or the channel's
// own summary once the stats loop has polled it).
func (c *Coordinator) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Alert returns the current diagnostics finding, empty when none.
func (c *Coordinator) Alert() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.alert
}

// Timeline returns the full newline-joined log timeline.
func (c *Coordinator) Timeline() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.Join(c.timeline, "\n")
}

// RunID returns the identifier of the current or most recent run.
func (c *Coordinator) RunID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runID
}

// ChannelKind returns the channel variant of the current or most recent run.
func (c *Coordinator) ChannelKind() ipc.Kind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channelKind
}

// Frozen returns the ids of workers observed entering the deadlock demo's
// blocking acquisition.
func (c *Coordinator) Frozen() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int, len(c.frozen))
	copy(out, c.frozen)
	return out
}

// Flows returns the recently observed data flows, oldest first.
func (c *Coordinator) Flows() []DataFlow {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]DataFlow, len(c.flows))
	copy(out, c.flows)
	return out
}

// Throughput renders the delivered-message rate of the current or most
// recent run.
func (c *Coordinator) Throughput() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.startTime.IsZero() {
		return "Throughput: 0.0 msg/s"
	}
	end := time.Now()
	if !c.running && !c.endTime.IsZero() {
		end = c.endTime
	}
	elapsed := end.Sub(c.startTime).Seconds()
	if elapsed <= 0 {
		return "Throughput: 0.0 msg/s"
	}
	return fmt.Sprintf("Throughput: %.1f msg/s", float64(c.msgCount)/elapsed)
}

// AvgLatency renders the mean send-to-receive latency of the current or
// most recent run. Counters reset only at the next Start.
func (c *Coordinator) AvgLatency() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.msgCount == 0 {
		return "Avg. Latency: 0.00 ms"
	}
	return fmt.Sprintf("Avg. Latency: %.2f ms", c.totalLatency/float64(c.msgCount)*1000)
}
