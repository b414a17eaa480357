package ipc

import (
	"errors"
	"fmt"
	"time"
)

// ErrClosed is returned by Send and Recv after the channel transport has
// been torn down. Workers treat it as a normal shutdown condition.
var ErrClosed = errors.New("ipc: channel closed")

// Message is one datagram exchanged between simulated processes. It is
// immutable once constructed and owned by whichever channel buffer holds
// it; Recv transfers ownership to the caller.
type Message struct {
	Source      int
	Destination int
	Payload     string
	Timestamp   time.Time
}

// Latency returns the time elapsed since the message was sent.
func (m *Message) Latency() time.Duration {
	return time.Since(m.Timestamp)
}

// Observer receives contention and access notifications from a channel.
// It is implemented by the diagnostics engine; a nil Observer disables
// reporting.
type Observer interface {
	AddWait(waiter, owner int)
	RemoveWait(waiter int)
	UpdateAccess(pid int)
}

// Kind identifies a channel variant. The set is closed: exactly three
// implementations exist and no open extensibility is expected.
type Kind string

const (
	KindPipe      Kind = "Pipe"
	KindQueue     Kind = "MsgQueue"
	KindSharedMem Kind = "SharedMem"
)

// Channel is the capability surface shared by the three IPC variants.
//
// Send records a payload with the current timestamp; it never fails under
// normal operation. Recv returns the next message for dst, or nil when
// nothing is pending; only the shared-memory variant blocks, and only for
// one short bounded wait. Status returns a short human-readable summary
// and never fails. Kind returns the variant identifier used for display.
type Channel interface {
	Send(src int, payload string) error
	Recv(dst int, obs Observer) (*Message, error)
	Status() string
	Kind() Kind
	Close() error
}

// ParseKind maps a user-facing channel name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "pipe":
		return KindPipe, nil
	case "queue", "msgqueue":
		return KindQueue, nil
	case "shm", "sharedmem":
		return KindSharedMem, nil
	default:
		return "", fmt.Errorf("ipc: unknown channel kind %q", name)
	}
}

// New constructs a channel of the given kind with default timings.
func New(kind Kind) (Channel, error) {
	switch kind {
	case KindPipe:
		return NewPipe(), nil
	case KindQueue:
		return NewQueue(), nil
	case KindSharedMem:
		return NewSharedMem(), nil
	default:
		return nil, fmt.Errorf("ipc: unknown channel kind %q", kind)
	}
}
