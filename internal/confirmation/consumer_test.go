package confirmation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

type stubStreams struct {
	groupErr error
	batches  [][]redis.XStream
	readErr  error
	acked    []string
}

func (s *stubStreams) XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd {
	return redis.NewStatusResult("OK", s.groupErr)
}

func (s *stubStreams) XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	if s.readErr != nil {
		return redis.NewXStreamSliceCmdResult(nil, s.readErr)
	}
	if len(s.batches) == 0 {
		return redis.NewXStreamSliceCmdResult(nil, redis.Nil)
	}
	next := s.batches[0]
	s.batches = s.batches[1:]
	return redis.NewXStreamSliceCmdResult(next, nil)
}

func (s *stubStreams) XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd {
	s.acked = append(s.acked, ids...)
	return redis.NewIntResult(int64(len(ids)), nil)
}

type stubApplier struct {
	calls   []Message
	results map[uuid.UUID]error
}

func (a *stubApplier) ApplyConfirmation(ctx context.Context, id uuid.UUID, confirmed bool) (*appointment.Appointment, error) {
	a.calls = append(a.calls, Message{AppointmentID: id, Confirmed: confirmed})
	if err := a.results[id]; err != nil {
		return nil, err
	}
	status := appointment.StatusCancelled
	if confirmed {
		status = appointment.StatusConfirmed
	}
	return &appointment.Appointment{ID: id, Status: status}, nil
}

func TestParseMessage(t *testing.T) {
	id := uuid.New()

	got, err := ParseMessage(map[string]any{"appointment_id": id.String(), "confirmed": "true"})
	if err != nil || got.AppointmentID != id || !got.Confirmed {
		t.Fatalf("ParseMessage = %+v, %v", got, err)
	}

	bad := []map[string]any{
		{"confirmed": "true"},
		{"appointment_id": "not-a-uuid", "confirmed": "true"},
		{"appointment_id": id.String()},
		{"appointment_id": id.String(), "confirmed": "maybe"},
	}
	for _, values := range bad {
		if _, err := ParseMessage(values); err == nil {
			t.Fatalf("ParseMessage(%v) accepted", values)
		}
	}
}

func TestConsumer_Poll(t *testing.T) {
	confirmed, declined, unknown, flaky := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	streams := &stubStreams{batches: [][]redis.XStream{{{
		Stream: "appointment-confirmations",
		Messages: []redis.XMessage{
			{ID: "1-0", Values: map[string]any{"appointment_id": confirmed.String(), "confirmed": "true"}},
			{ID: "2-0", Values: map[string]any{"appointment_id": declined.String(), "confirmed": "false"}},
			{ID: "3-0", Values: map[string]any{"appointment_id": "garbage"}},
			{ID: "4-0", Values: map[string]any{"appointment_id": unknown.String(), "confirmed": "true"}},
			{ID: "5-0", Values: map[string]any{"appointment_id": flaky.String(), "confirmed": "true"}},
		},
	}}}}
	applier := &stubApplier{results: map[uuid.UUID]error{
		unknown: appointment.ErrAppointmentNotFound,
		flaky:   errors.New("connection reset"),
	}}

	c := NewConsumer(streams, applier, "appointment-confirmations", "scheduler", "worker-1", zerolog.Nop())

	acked, err := c.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if acked != 4 {
		t.Fatalf("acked = %d, want 4", acked)
	}
	want := []string{"1-0", "2-0", "3-0", "4-0"}
	for i, id := range want {
		if streams.acked[i] != id {
			t.Fatalf("acked ids = %v, want %v", streams.acked, want)
		}
	}
	if len(applier.calls) != 4 || applier.calls[1].Confirmed {
		t.Fatalf("applier calls = %+v", applier.calls)
	}

	// Nothing left: a blocked read times out with redis.Nil.
	if acked, err := c.Poll(context.Background()); err != nil || acked != 0 {
		t.Fatalf("empty poll = %d, %v", acked, err)
	}
}

func TestConsumer_EnsureGroup(t *testing.T) {
	c := NewConsumer(&stubStreams{groupErr: errors.New("BUSYGROUP Consumer Group name already exists")}, &stubApplier{}, "s", "g", "c", zerolog.Nop())
	if err := c.EnsureGroup(context.Background()); err != nil {
		t.Fatalf("existing group: %v", err)
	}

	c = NewConsumer(&stubStreams{groupErr: errors.New("NOAUTH")}, &stubApplier{}, "s", "g", "c", zerolog.Nop())
	if err := c.EnsureGroup(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestConsumer_ReadError(t *testing.T) {
	c := NewConsumer(&stubStreams{readErr: errors.New("LOADING")}, &stubApplier{}, "s", "g", "c", zerolog.Nop())
	if _, err := c.Poll(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
