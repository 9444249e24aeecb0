package notify

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Sender delivers one notification to one address
type Sender interface {
	Send(ctx context.Context, to string, n Notification) error
}

// Notifier is what request handlers depend on
type Notifier interface {
	// Notify enqueues n for delivery and reports whether it was accepted. It never blocks.
	Notify(to string, n Notification) bool
}

// Config sizes the dispatcher
type Config struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

type message struct {
	to string
	n  Notification
}

// Stats counts dispatcher outcomes since start
type Stats struct {
	Sent    uint64 `json:"sent"`
	Failed  uint64 `json:"failed"`
	Dropped uint64 `json:"dropped"`
}

// Dispatcher fans queued notifications out to a fixed pool of workers.
// Each notification gets one delivery attempt.
type Dispatcher struct {
	cfg    Config
	sender Sender
	logger zerolog.Logger

	queue chan message
	wg    sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	started bool

	sent    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

// NewDispatcher creates a dispatcher; call Start to launch the workers
func NewDispatcher(cfg Config, sender Sender, logger zerolog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	return &Dispatcher{
		cfg:    cfg,
		sender: sender,
		logger: logger.With().Str("component", "notify").Logger(),
		queue:  make(chan message, cfg.QueueSize),
	}
}

// Start launches the worker pool
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
	d.logger.Info().Int("workers", d.cfg.Workers).Int("queueSize", d.cfg.QueueSize).Msg("Notification dispatcher started")
}

// Notify implements Notifier
func (d *Dispatcher) Notify(to string, n Notification) bool {
	if to == "" || n == nil {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return false
	}

	select {
	case d.queue <- message{to: to, n: n}:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn().Str("kind", string(n.Kind())).Str("to", to).Msg("Notification queue full, dropping")
		return false
	}
}

// Shutdown stops accepting notifications and waits for queued ones to drain
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info().Uint64("sent", d.sent.Load()).Uint64("failed", d.failed.Load()).Msg("Notification dispatcher drained")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification dispatcher shutdown: %w", ctx.Err())
	}
}

// Stats returns the delivery counters
func (d *Dispatcher) Stats() Stats {
	return Stats{Sent: d.sent.Load(), Failed: d.failed.Load(), Dropped: d.dropped.Load()}
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(id, msg)
	}
}

func (d *Dispatcher) deliver(worker int, msg message) {
	defer func() {
		if r := recover(); r != nil {
			d.failed.Add(1)
			d.logger.Error().Interface("panic", r).Int("worker", worker).Str("kind", string(msg.n.Kind())).Msg("Notification sender panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg.to, msg.n); err != nil {
		d.failed.Add(1)
		d.logger.Error().Err(err).Int("worker", worker).Str("kind", string(msg.n.Kind())).Str("to", msg.to).Msg("Failed to deliver notification")
		return
	}
	d.sent.Add(1)
	d.logger.Debug().Str("kind", string(msg.n.Kind())).Str("to", msg.to).Msg("Notification delivered")
}
