package ipc

import (
	"fmt"
	"sync"
	"time"
)

// Queue is an unbounded FIFO shared by multiple writers and readers.
// Messages are returned in arrival order at the queue; no ordering is
// guaranteed across writers beyond that.
type Queue struct {
	mu     sync.Mutex
	items  []slot
	closed bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Send appends the payload to the tail of the queue.
func (q *Queue) Send(src int, payload string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, slot{src: src, payload: payload, ts: time.Now()})
	return nil
}

// Recv pops the oldest message without blocking. Empty is not an error.
func (q *Queue) Recv(dst int, obs Observer) (*Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrClosed
	}
	if len(q.items) == 0 {
		return nil, nil
	}
	s := q.items[0]
	q.items = q.items[1:]
	return &Message{Source: s.src, Destination: dst, Payload: s.payload, Timestamp: s.ts}, nil
}

// Status reports the current queue depth.
func (q *Queue) Status() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return fmt.Sprintf("Queue: %d msg(s)", len(q.items))
}

// Kind returns KindQueue.
func (q *Queue) Kind() Kind {
	return KindQueue
}

// Close tears the queue down and drops any pending messages.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.items = nil
	return nil
}
