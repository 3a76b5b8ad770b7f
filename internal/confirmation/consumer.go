package confirmation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

// Applier records a patient's answer. *appointment.Service satisfies it.
type Applier interface {
	ApplyConfirmation(ctx context.Context, id uuid.UUID, confirmed bool) (*appointment.Appointment, error)
}

// StreamClient is the subset of *redis.Client the consumer uses.
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// Message is one confirmation answer read from the stream.
type Message struct {
	AppointmentID uuid.UUID
	Confirmed     bool
}

// Consumer reads patient confirmations from a Redis stream consumer group.
type Consumer struct {
	client   StreamClient
	applier  Applier
	stream   string
	group    string
	consumer string
	block    time.Duration
	logger   zerolog.Logger
}

func NewConsumer(client StreamClient, applier Applier, stream, group, consumer string, logger zerolog.Logger) *Consumer {
	return &Consumer{
		client:   client,
		applier:  applier,
		stream:   stream,
		group:    group,
		consumer: consumer,
		block:    5 * time.Second,
		logger:   logger.With().Str("component", "confirmation_consumer").Str("stream", stream).Logger(),
	}
}

// EnsureGroup creates the consumer group, and the stream with it, unless it
// already exists.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s: %w", c.group, err)
	}
	return nil
}

// Run reads and applies confirmations until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.EnsureGroup(ctx); err != nil {
		return err
	}
	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := c.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error().Err(err).Msg("read confirmations failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
	}
}

// Poll reads one batch and returns how many entries it acknowledged.
// Entries that cannot be parsed or refer to unknown appointments are
// acknowledged and dropped; other failures stay pending for redelivery.
func (c *Consumer) Poll(ctx context.Context) (int, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, ">"},
		Count:    50,
		Block:    c.block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("xreadgroup: %w", err)
	}

	acked := 0
	for _, s := range streams {
		for _, msg := range s.Messages {
			if !c.handle(ctx, msg) {
				continue
			}
			if err := c.client.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
				c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("ack failed")
				continue
			}
			acked++
		}
	}
	return acked, nil
}

// handle applies one entry and reports whether it should be acknowledged.
func (c *Consumer) handle(ctx context.Context, msg redis.XMessage) bool {
	m, err := ParseMessage(msg.Values)
	if err != nil {
		c.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("discarding malformed confirmation")
		return true
	}

	log := c.logger.With().Str("message_id", msg.ID).Str("appointment_id", m.AppointmentID.String()).Logger()

	appt, err := c.applier.ApplyConfirmation(ctx, m.AppointmentID, m.Confirmed)
	switch {
	case err == nil:
		log.Info().Str("status", appt.Status.String()).Msg("confirmation applied")
		return true
	case errors.Is(err, appointment.ErrAppointmentNotFound), errors.Is(err, appointment.ErrInvalidStatusTransition):
		log.Warn().Err(err).Msg("confirmation rejected")
		return true
	default:
		log.Error().Err(err).Msg("failed to apply confirmation")
		return false
	}
}

// ParseMessage reads the appointment_id and confirmed fields of a stream
// entry.
func ParseMessage(values map[string]any) (Message, error) {
	rawID, ok := values["appointment_id"].(string)
	if !ok || rawID == "" {
		return Message{}, errors.New("missing appointment_id")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Message{}, fmt.Errorf("invalid appointment_id: %w", err)
	}

	rawConfirmed, ok := values["confirmed"].(string)
	if !ok {
		return Message{}, errors.New("missing confirmed")
	}
	confirmed, err := strconv.ParseBool(rawConfirmed)
	if err != nil {
		return Message{}, fmt.Errorf("invalid confirmed: %w", err)
	}

	return Message{AppointmentID: id, Confirmed: confirmed}, nil
}
