package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

var (
	// ErrQueueFull is returned by Enqueue when no slot is free.
	ErrQueueFull = errors.New("mail queue full")
	// ErrClosed is returned by Enqueue after Close.
	ErrClosed = errors.New("mail dispatcher closed")
)

// Message is a queued email.
type Message struct {
	To       string
	Subject  string
	BodyHTML string
}

// Observer receives the outcome of each delivery attempt.
type Observer func(ok bool)

// Dispatcher sends queued messages from a fixed number of workers. Close
// stops intake and waits until the queue has been drained.
type Dispatcher struct {
	sender      Sender
	logger      logging.Logger
	queue       chan Message
	sendTimeout time.Duration
	observe     Observer

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, workers, queueSize int, l logging.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	d := &Dispatcher{
		sender:      sender,
		logger:      l.With("module", "mailer"),
		queue:       make(chan Message, queueSize),
		sendTimeout: 30 * time.Second,
		observe:     func(bool) {},
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker(i)
	}
	return d
}

// OnResult installs an outcome observer. Call before the first Enqueue.
func (d *Dispatcher) OnResult(o Observer) {
	if o != nil {
		d.observe = o
	}
}

// Enqueue queues msg without blocking.
func (d *Dispatcher) Enqueue(ctx context.Context, msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		d.logger.Warn(ctx, "mail queue full, dropping message", "to", msg.To)
		d.observe(false)
		return ErrQueueFull
	}
}

// Close stops accepting messages and blocks until queued ones are sent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		err := d.sender.Send(ctx, msg.To, msg.Subject, msg.BodyHTML)
		cancel()

		if err != nil {
			d.logger.Error(ctx, "mail delivery failed", "worker", id, "to", msg.To, "error", err)
			d.observe(false)
			continue
		}
		d.logger.Debug(ctx, "mail delivered", "worker", id, "to", msg.To)
		d.observe(true)
	}
}
