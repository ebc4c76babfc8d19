package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const sendTimeout = 30 * time.Second

// AsyncTransport queues messages for a single background worker so callers
// never wait on the relay. When the queue is full or the transport has been
// closed, Send delivers synchronously.
type AsyncTransport struct {
	next  Transport
	queue chan Message
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

var _ Transport = (*AsyncTransport)(nil)

// NewAsyncTransport starts the worker. size is the queue capacity.
func NewAsyncTransport(next Transport, size int) *AsyncTransport {
	if size <= 0 {
		size = 64
	}
	t := &AsyncTransport{
		next:  next,
		queue: make(chan Message, size),
		done:  make(chan struct{}),
	}
	go t.run()
	return t
}

// Send implements Transport. Delivery errors on the worker are logged.
func (t *AsyncTransport) Send(ctx context.Context, msg Message) error {
	t.mu.RLock()
	if !t.closed {
		select {
		case t.queue <- msg:
			t.mu.RUnlock()
			return nil
		default:
			slog.Warn("mail queue full, sending synchronously")
		}
	}
	t.mu.RUnlock()
	return t.next.Send(ctx, msg)
}

// Close stops accepting queued work and waits until the queue is drained
// or ctx is done.
func (t *AsyncTransport) Close(ctx context.Context) error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *AsyncTransport) run() {
	defer close(t.done)
	for msg := range t.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := t.next.Send(ctx, msg); err != nil {
			slog.Error("async mail delivery failed", "error", err, "subject", msg.Subject)
		}
		cancel()
	}
}
