package ipc

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// shmBufSize is the fixed mailbox capacity. Payloads are truncated to
	// shmBufSize-1 bytes so the buffer always carries a NUL terminator.
	shmBufSize = 256

	defaultRecvWait       = 100 * time.Millisecond
	defaultContentionHold = 150 * time.Millisecond
)

// SharedMem is a fixed-capacity mailbox guarded by one mutex. At most one
// unread message resides in the buffer at a time; a second send before a
// receive overwrites the prior message silently. That data loss is accepted
// behavior, not a bug.
//
// SharedMem is the only variant that feeds the diagnostics wait graph: when
// the opportunistic lock probe in Recv fails, the caller registers a wait
// edge against the last writer, holds briefly to model the contention, then
// removes the edge.
type SharedMem struct {
	mu  sync.Mutex
	buf [shmBufSize]byte
	ts  time.Time // zero means no unread message

	src     atomic.Int32  // last writer, readable without the lock by the probe path
	updated chan struct{} // capacity 1, set on send, consumed by recv
	closed  atomic.Bool

	recvWait       time.Duration
	contentionHold time.Duration
}

// NewSharedMem creates an empty mailbox with the default timings: a 100ms
// bounded wait for an update and a 150ms contention hold.
func NewSharedMem() *SharedMem {
	return NewSharedMemTimings(defaultRecvWait, defaultContentionHold)
}

// NewSharedMemTimings creates a mailbox with explicit recv-wait and
// contention-hold durations.
func NewSharedMemTimings(recvWait, contentionHold time.Duration) *SharedMem {
	s := &SharedMem{
		updated:        make(chan struct{}, 1),
		recvWait:       recvWait,
		contentionHold: contentionHold,
	}
	s.src.Store(-1)
	return s
}

// Send writes the payload into the mailbox, overwriting any unread message,
// and signals waiting receivers.
func (s *SharedMem) Send(src int, payload string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.mu.Lock()
	b := []byte(payload)
	if len(b) > shmBufSize-1 {
		b = b[:shmBufSize-1]
	}
	copy(s.buf[:], b)
	s.buf[len(b)] = 0
	s.src.Store(int32(src))
	s.ts = time.Now()
	s.mu.Unlock()

	select {
	case s.updated <- struct{}{}:
	default:
	}
	return nil
}

// Recv waits up to the recv-wait bound for an update, then extracts the
// message under the lock if one is present. When the lock probe fails the
// wait is reported to obs as an edge from dst to the current buffer owner,
// held for the contention delay, then removed. Returns nil when no message
// could be claimed.
func (s *SharedMem) Recv(dst int, obs Observer) (*Message, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	timer := time.NewTimer(s.recvWait)
	select {
	case <-s.updated:
		timer.Stop()
		s.mu.Lock()
		if !s.ts.IsZero() {
			msg := &Message{
				Source:      int(s.src.Load()),
				Destination: dst,
				Payload:     string(s.buf[:s.occupied()]),
				Timestamp:   s.ts,
			}
			s.ts = time.Time{}
			s.mu.Unlock()
			if obs != nil {
				obs.UpdateAccess(dst)
			}
			return msg, nil
		}
		s.mu.Unlock()
	case <-timer.C:
	}

	// Opportunistic probe: a failed TryLock means another worker holds the
	// mailbox lock right now.
	if !s.mu.TryLock() {
		owner := int(s.src.Load())
		if owner >= 0 && obs != nil {
			obs.AddWait(dst, owner)
			time.Sleep(s.contentionHold)
			obs.RemoveWait(dst)
		}
		return nil, nil
	}
	s.mu.Unlock()
	return nil, nil
}

// Status reports the occupied byte count. It degrades to a placeholder
// instead of blocking when the mailbox lock is contended.
func (s *SharedMem) Status() string {
	if !s.mu.TryLock() {
		return "SharedMem: ? bytes"
	}
	n := s.occupied()
	s.mu.Unlock()
	return fmt.Sprintf("SharedMem: %d bytes", n)
}

// Kind returns KindSharedMem.
func (s *SharedMem) Kind() Kind {
	return KindSharedMem
}

// Close tears the mailbox down; subsequent operations return ErrClosed.
func (s *SharedMem) Close() error {
	s.closed.Store(true)
	return nil
}

// occupied returns the byte count up to the NUL terminator. Callers must
// hold s.mu.
func (s *SharedMem) occupied() int {
	if i := bytes.IndexByte(s.buf[:], 0); i >= 0 {
		return i
	}
	return len(s.buf)
}
