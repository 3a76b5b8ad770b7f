package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

type recordingSink struct {
	mu   sync.Mutex
	name string
	err  error
	got  []appointment.Notification
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(ctx context.Context, n appointment.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func notification(kind appointment.NotificationKind) appointment.Notification {
	return appointment.Notification{AppointmentID: uuid.New(), Kind: kind, PatientName: "Maria", Email: "maria@example.com"}
}

func TestDispatcher_FansOutToEverySink(t *testing.T) {
	failing := &recordingSink{name: "failing", err: errors.New("smtp down")}
	ok := &recordingSink{name: "ok"}
	d := NewDispatcher(zerolog.Nop(), 8, failing, ok)

	d.Notify(context.Background(), notification(appointment.NotificationScheduled))
	d.Notify(context.Background(), notification(appointment.NotificationWaitlisted))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for ok.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if ok.count() != 2 || failing.count() != 2 {
		t.Fatalf("deliveries ok=%d failing=%d, want 2 each", ok.count(), failing.count())
	}
	if ok.got[0].Kind != appointment.NotificationScheduled || ok.got[1].Kind != appointment.NotificationWaitlisted {
		t.Fatalf("order not preserved: %v, %v", ok.got[0].Kind, ok.got[1].Kind)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{name: "sink"}
	d := NewDispatcher(zerolog.Nop(), 1, sink)

	d.Notify(context.Background(), notification(appointment.NotificationScheduled))
	d.Notify(context.Background(), notification(appointment.NotificationRescheduled))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	if sink.count() != 1 {
		t.Fatalf("delivered %d, want 1", sink.count())
	}
}

func TestDispatcher_DrainsOnShutdownAndRejectsAfter(t *testing.T) {
	sink := &recordingSink{name: "sink"}
	d := NewDispatcher(zerolog.Nop(), 4, sink)

	for i := 0; i < 3; i++ {
		d.Notify(context.Background(), notification(appointment.NotificationReminderOneDay))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	if sink.count() != 3 {
		t.Fatalf("drained %d, want 3", sink.count())
	}

	d.Notify(context.Background(), notification(appointment.NotificationReminderOneDay))
	if sink.count() != 3 {
		t.Fatal("notification accepted after shutdown")
	}
}
