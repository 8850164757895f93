package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrQueueFull        = errors.New("notification queue is full")
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
)

type job struct {
	noticeType   NoticeType
	notification NotificationData
}

// Dispatcher delivers notices on background workers so that request handlers
// never wait on the mail server. A failed delivery is retried MaxRetries times
// with exponential backoff (base, 2*base, 4*base, ...) and then dropped with a log line.
type Dispatcher struct {
	sender      Sender
	maxRetries  int
	backoffBase time.Duration
	queueSize   int
	workers     int

	queue   chan job
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	started bool
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithMaxRetries sets how many times a failed delivery is retried.
func WithMaxRetries(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n >= 0 {
			d.maxRetries = n
		}
	}
}

// WithBackoffBase sets the delay before the first retry.
func WithBackoffBase(base time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if base > 0 {
			d.backoffBase = base
		}
	}
}

// WithQueueSize sets the number of notices that may wait for a worker.
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// WithWorkers sets the number of delivery goroutines.
func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// NewDispatcher creates a dispatcher. Call Start before enqueueing.
func NewDispatcher(sender Sender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sender:      sender,
		maxRetries:  3,
		backoffBase: 60 * time.Second,
		queueSize:   256,
		workers:     2,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.queue = make(chan job, d.queueSize)
	d.stop = make(chan struct{})
	return d
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	slog.Info("Notification dispatcher started", "workers", d.workers, "max_retries", d.maxRetries, "backoff_base", d.backoffBase)
}

// Enqueue hands a notice to the workers without blocking. It fails only when
// the queue is full or the dispatcher is closed.
func (d *Dispatcher) Enqueue(noticeType NoticeType, notification NotificationData) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- job{noticeType: noticeType, notification: notification}:
		return nil
	default:
		slog.Error("Dropping notification, queue full", "type", noticeType, "to", notification.To)
		return ErrQueueFull
	}
}

// Close stops accepting notices and waits for queued ones to be attempted.
// Pending backoff sleeps are cut short when ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
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
		return nil
	case <-ctx.Done():
		close(d.stop)
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx := context.Background()
	for attempt := 0; ; attempt++ {
		err := d.sender.Send(ctx, j.noticeType, j.notification)
		if err == nil {
			return
		}
		if attempt >= d.maxRetries {
			slog.Error("Giving up on notification", "type", j.noticeType, "to", j.notification.To, "attempts", attempt+1, "error", err)
			return
		}
		delay := d.backoff(attempt)
		slog.Warn("Notification failed, retrying", "type", j.noticeType, "to", j.notification.To, "attempt", attempt+1, "retry_in", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-d.stop:
			timer.Stop()
			slog.Error("Dispatcher stopped before retry", "type", j.noticeType, "to", j.notification.To)
			return
		}
	}
}

// backoff returns base * 2^attempt.
func (d *Dispatcher) backoff(attempt int) time.Duration {
	return d.backoffBase << uint(attempt)
}
