package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

// StreamAdder is the subset of *redis.Client the stream sink needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStreamSink publishes notifications to a Redis stream for the
// messaging service to pick up.
type RedisStreamSink struct {
	client StreamAdder
	stream string
	maxLen int64
}

func NewRedisStreamSink(client StreamAdder, stream string, maxLen int64) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisStreamSink) Name() string { return "redis_stream" }

func (s *RedisStreamSink) Send(ctx context.Context, n appointment.Notification) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: streamValues(n),
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

func streamValues(n appointment.Notification) map[string]any {
	v := map[string]any{
		"appointment_id": n.AppointmentID.String(),
		"kind":           string(n.Kind),
		"patient_name":   n.PatientName,
		"email":          n.Email,
		"phone":          n.Phone,
		"doctor_name":    n.DoctorName,
		"location":       n.Location,
		"scheduled_at":   "",
	}
	if n.ScheduledAt != nil {
		v["scheduled_at"] = n.ScheduledAt.UTC().Format(time.RFC3339)
	}
	return v
}
