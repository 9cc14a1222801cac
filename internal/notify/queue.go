package notify

import (
	"context"
	"errors"
)

var ErrQueueFull = errors.New("notify: queue full")

// Queue buffers notifications between request handlers and workers.
type Queue interface {
	// Push must not block for long; handlers call it inline.
	Push(ctx context.Context, n Notification) error
	// Pop blocks until a notification is available or ctx is done.
	Pop(ctx context.Context) (Notification, error)
	Close() error
}

// MemoryQueue is a bounded in-process queue. Push fails fast with
// ErrQueueFull instead of blocking the caller.
type MemoryQueue struct {
	ch chan Notification
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{ch: make(chan Notification, size)}
}

func (q *MemoryQueue) Push(_ context.Context, n Notification) error {
	select {
	case q.ch <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Pop(ctx context.Context) (Notification, error) {
	select {
	case n := <-q.ch:
		return n, nil
	case <-ctx.Done():
		return Notification{}, ctx.Err()
	}
}

// Drain removes and returns whatever is still buffered.
func (q *MemoryQueue) Drain() []Notification {
	var out []Notification
	for {
		select {
		case n := <-q.ch:
			out = append(out, n)
		default:
			return out
		}
	}
}

func (q *MemoryQueue) Close() error { return nil }
