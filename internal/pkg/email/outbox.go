package email

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrOutboxFull   = errors.New("email outbox is full")
	ErrOutboxClosed = errors.New("email outbox is closed")
)

// Outbox queues mail for a single background worker, so Send calls return
// as soon as the message is queued. Delivery failures are logged by the
// worker.
type Outbox struct {
	next EmailService
	jobs chan outboxJob
	done chan struct{}

	mu     sync.RWMutex
	closed bool
}

type outboxJob struct {
	kind    string
	to      string
	deliver func(EmailService) error
}

// NewOutbox starts a worker that delivers through next. size bounds the
// number of queued messages.
func NewOutbox(next EmailService, size int) *Outbox {
	o := &Outbox{
		next: next,
		jobs: make(chan outboxJob, size),
		done: make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *Outbox) run() {
	defer close(o.done)
	for job := range o.jobs {
		if err := job.deliver(o.next); err != nil {
			slog.Warn("Failed to deliver email", "kind", job.kind, "to", job.to, "error", err)
		}
	}
}

func (o *Outbox) enqueue(job outboxJob) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return ErrOutboxClosed
	}
	select {
	case o.jobs <- job:
		return nil
	default:
		return ErrOutboxFull
	}
}

func (o *Outbox) SendEmployeeDecision(to, employeeName string, approved bool, loginURL string) error {
	return o.enqueue(outboxJob{kind: "employee_decision", to: to, deliver: func(s EmailService) error {
		return s.SendEmployeeDecision(to, employeeName, approved, loginURL)
	}})
}

func (o *Outbox) SendLeaveDecision(to string, data LeaveDecision) error {
	return o.enqueue(outboxJob{kind: "leave_decision", to: to, deliver: func(s EmailService) error {
		return s.SendLeaveDecision(to, data)
	}})
}

// Close stops accepting mail and waits for queued messages to be delivered
// or for ctx to end.
func (o *Outbox) Close(ctx context.Context) error {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.jobs)
	}
	o.mu.Unlock()

	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
