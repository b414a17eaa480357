package ipc

import (
	"sync"
	"time"
)

// slot is the in-transit form of a message before a receiver claims it.
type slot struct {
	src     int
	payload string
	ts      time.Time
}

// Pipe is a unidirectional transport with a single pending slot. A send
// overwrites any unread message and a message is consumed by at most one
// Recv call.
type Pipe struct {
	mu      sync.Mutex
	pending *slot
	closed  bool
}

// NewPipe creates an empty pipe.
func NewPipe() *Pipe {
	return &Pipe{}
}

// Send places the payload in the pending slot, replacing any unread one.
func (p *Pipe) Send(src int, payload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.pending = &slot{src: src, payload: payload, ts: time.Now()}
	return nil
}

// Recv polls the pending slot. It returns the pending message tagged with
// the caller's id, or nil when the pipe is empty.
func (p *Pipe) Recv(dst int, obs Observer) (*Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	if p.pending == nil {
		return nil, nil
	}
	s := p.pending
	p.pending = nil
	return &Message{Source: s.src, Destination: dst, Payload: s.payload, Timestamp: s.ts}, nil
}

// Status reports whether a message is pending.
func (p *Pipe) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending != nil {
		return "Pipe: ready"
	}
	return "Pipe: empty"
}

// Kind returns KindPipe.
func (p *Pipe) Kind() Kind {
	return KindPipe
}

// Close tears the pipe down; subsequent operations return ErrClosed.
func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.pending = nil
	return nil
}
