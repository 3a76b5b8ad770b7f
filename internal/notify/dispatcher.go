package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

// Sink delivers a notification over one channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, n appointment.Notification) error
}

const (
	DefaultBuffer = 256
	drainTimeout  = 5 * time.Second
)

// Dispatcher accepts notification intents without blocking the caller and
// hands each one to every sink from a single background goroutine.
type Dispatcher struct {
	queue  chan appointment.Notification
	sinks  []Sink
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(logger zerolog.Logger, buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Dispatcher{
		queue:  make(chan appointment.Notification, buffer),
		sinks:  sinks,
		logger: logger.With().Str("component", "notify_dispatcher").Logger(),
	}
}

// Notify queues n for delivery. When the queue is full or the dispatcher has
// stopped, n is dropped and logged.
func (d *Dispatcher) Notify(ctx context.Context, n appointment.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped(n, "dispatcher stopped")
		return
	}

	select {
	case d.queue <- n:
	default:
		d.dropped(n, "queue full")
	}
}

func (d *Dispatcher) dropped(n appointment.Notification, reason string) {
	d.logger.Warn().
		Str("appointment_id", n.AppointmentID.String()).
		Str("kind", string(n.Kind)).
		Str("reason", reason).
		Msg("notification dropped")
}

// Run delivers queued notifications until ctx is done, then delivers what is
// left in the queue before returning.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case n := <-d.queue:
			d.deliver(ctx, n)
		case <-ctx.Done():
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	d.mu.Lock()
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for n := range d.queue {
		d.deliver(ctx, n)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n appointment.Notification) {
	for _, sink := range d.sinks {
		if err := sink.Send(ctx, n); err != nil {
			d.logger.Error().Err(err).
				Str("sink", sink.Name()).
				Str("appointment_id", n.AppointmentID.String()).
				Str("kind", string(n.Kind)).
				Msg("notification delivery failed")
		}
	}
}

// LogSink writes notifications to the log. Used when no other channel is
// configured and in development.
type LogSink struct {
	Logger zerolog.Logger
}

func (LogSink) Name() string { return "log" }

func (s LogSink) Send(ctx context.Context, n appointment.Notification) error {
	evt := s.Logger.Info().
		Str("appointment_id", n.AppointmentID.String()).
		Str("kind", string(n.Kind)).
		Str("patient", n.PatientName)
	if n.ScheduledAt != nil {
		evt = evt.Time("scheduled_at", *n.ScheduledAt)
	}
	evt.Msg("notification")
	return nil
}
