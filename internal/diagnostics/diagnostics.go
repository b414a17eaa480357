package diagnostics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultIdleThreshold is how long a process may go without a successful
// receive before it is reported as a bottleneck.
const DefaultIdleThreshold = 2 * time.Second

// Diagnostics tracks which processes are waiting on which owners and when
// each process last received a message. All methods are safe for concurrent
// use; a reader may observe a slightly stale graph but never a torn one.
type Diagnostics struct {
	mu         sync.RWMutex
	waitGraph  map[int]map[int]struct{}
	lastAccess map[int]time.Time
	alert      string

	idleThreshold time.Duration
	now           func() time.Time // injectable for tests
}

// New creates an empty diagnostics engine with the default idle threshold.
func New() *Diagnostics {
	return NewWithThreshold(DefaultIdleThreshold)
}

// NewWithThreshold creates an engine with an explicit idle threshold.
func NewWithThreshold(idle time.Duration) *Diagnostics {
	return &Diagnostics{
		waitGraph:     make(map[int]map[int]struct{}),
		lastAccess:    make(map[int]time.Time),
		idleThreshold: idle,
		now:           time.Now,
	}
}

// AddWait records that waiter is blocked on owner and re-evaluates the
// graph for cycles immediately.
func (d *Diagnostics) AddWait(waiter, owner int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	set, ok := d.waitGraph[waiter]
	if !ok {
		set = make(map[int]struct{})
		d.waitGraph[waiter] = set
	}
	set[owner] = struct{}{}
	d.checkDeadlockLocked()
}

// RemoveWait deletes all of waiter's outgoing edges and re-evaluates. Every
// wait exit path must call this, including timeouts; a stale edge would
// produce false-positive cycles.
func (d *Diagnostics) RemoveWait(waiter int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.waitGraph, waiter)
	d.checkDeadlockLocked()
}

// CheckDeadlock re-evaluates the wait graph and returns the current alert:
// a cycle description like "DEADLOCK: P2 → P3 → P2", or empty when the
// graph is acyclic.
func (d *Diagnostics) CheckDeadlock() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checkDeadlockLocked()
	return d.alert
}

// Alert returns the current finding without re-evaluating.
func (d *Diagnostics) Alert() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.alert
}

// UpdateAccess stamps the current time as pid's last successful receive.
func (d *Diagnostics) UpdateAccess(pid int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastAccess[pid] = d.now()
}

// Bottlenecks lists every process idle beyond the threshold, like
// "Idle: P0, P1". Empty when none qualify.
func (d *Diagnostics) Bottlenecks() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	now := d.now()
	var idle []int
	for pid, last := range d.lastAccess {
		if now.Sub(last) > d.idleThreshold {
			idle = append(idle, pid)
		}
	}
	if len(idle) == 0 {
		return ""
	}
	sort.Ints(idle)

	labels := make([]string, len(idle))
	for i, pid := range idle {
		labels[i] = label(pid)
	}
	return "Idle: " + strings.Join(labels, ", ")
}

// checkDeadlockLocked runs a depth-first search from every node, keeping
// the current recursion path. The first node revisited on its own path
// yields the reported cycle; the search stops there. Callers must hold
// d.mu for writing.
func (d *Diagnostics) checkDeadlockLocked() {
	d.alert = ""

	visited := make(map[int]bool)
	var path []int
	onPath := make(map[int]int) // node -> index in path

	var dfs func(node int) bool
	dfs = func(node int) bool {
		if at, ok := onPath[node]; ok {
			cycle := append(append([]int{}, path[at:]...), node)
			labels := make([]string, len(cycle))
			for i, pid := range cycle {
				labels[i] = label(pid)
			}
			d.alert = "DEADLOCK: " + strings.Join(labels, " → ")
			return true
		}
		if visited[node] {
			return false
		}
		visited[node] = true
		onPath[node] = len(path)
		path = append(path, node)
		for _, neigh := range sortedKeys(d.waitGraph[node]) {
			if dfs(neigh) {
				return true
			}
		}
		path = path[:len(path)-1]
		delete(onPath, node)
		return false
	}

	for _, n := range sortedGraphKeys(d.waitGraph) {
		if dfs(n) {
			return
		}
	}
}

func label(pid int) string {
	return fmt.Sprintf("P%d", pid)
}

// sortedKeys keeps traversal order deterministic across runs.
func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedGraphKeys(graph map[int]map[int]struct{}) []int {
	keys := make([]int, 0, len(graph))
	for k := range graph {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
