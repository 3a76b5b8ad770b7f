package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

const twoWeeks = 14 * 24 * time.Hour

// Deduper remembers which reminders were already sent. *redisclient.Marker
// satisfies it.
type Deduper interface {
	MarkOnce(ctx context.Context, key string) (bool, error)
}

// Service sends confirmation requests and day-before reminders. It never
// changes appointments.
type Service struct {
	store    appointment.Store
	patients appointment.PatientDirectory
	notifier appointment.Notifier
	dedupe   Deduper
	now      func() time.Time
	logger   zerolog.Logger
}

// NewService builds the reminder service. dedupe may be nil, in which case a
// reminder goes out on every run that selects its appointment.
func NewService(
	store appointment.Store,
	patients appointment.PatientDirectory,
	notifier appointment.Notifier,
	dedupe Deduper,
	now func() time.Time,
	logger zerolog.Logger,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    store,
		patients: patients,
		notifier: notifier,
		dedupe:   dedupe,
		now:      now,
		logger:   logger.With().Str("component", "reminder_service").Logger(),
	}
}

// SendTwoWeekReminders asks patients of scheduled appointments in the next
// two weeks to confirm. It returns how many reminders were sent.
func (s *Service) SendTwoWeekReminders(ctx context.Context) (int, error) {
	now := s.now()
	until := now.Add(twoWeeks)

	return s.send(ctx, appointment.StatusScheduled, appointment.NotificationReminderTwoWeeks, func(at time.Time) bool {
		return at.After(now) && !at.After(until)
	})
}

// SendDayBeforeReminders reminds patients of confirmed appointments on the
// next calendar day.
func (s *Service) SendDayBeforeReminders(ctx context.Context) (int, error) {
	now := s.now()
	ty, tm, td := now.AddDate(0, 0, 1).Date()

	return s.send(ctx, appointment.StatusConfirmed, appointment.NotificationReminderOneDay, func(at time.Time) bool {
		y, m, d := at.In(now.Location()).Date()
		return y == ty && m == tm && d == td
	})
}

func (s *Service) send(ctx context.Context, status appointment.Status, kind appointment.NotificationKind, due func(time.Time) bool) (int, error) {
	appts, err := s.store.FindByStatus(ctx, status)
	if err != nil {
		return 0, fmt.Errorf("load %s appointments: %w", status, err)
	}

	sent := 0
	for i := range appts {
		appt := &appts[i]
		if appt.ScheduledAt == nil || !due(*appt.ScheduledAt) {
			continue
		}

		patient, err := s.patients.FindByIdentifier(ctx, appt.PatientID)
		if err != nil {
			s.logger.Error().Err(err).
				Str("appointment_id", appt.ID.String()).
				Str("kind", string(kind)).
				Msg("failed to load patient for reminder")
			continue
		}

		if s.dedupe != nil {
			first, err := s.dedupe.MarkOnce(ctx, dedupeKey(kind, appt))
			if err != nil {
				s.logger.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("reminder dedupe failed")
				continue
			}
			if !first {
				continue
			}
		}

		s.notifier.Notify(ctx, appointment.NewNotification(kind, appt, patient))
		sent++
	}

	if sent > 0 {
		s.logger.Info().Str("kind", string(kind)).Int("sent", sent).Msg("reminders sent")
	}
	return sent, nil
}

// dedupeKey includes the appointment time so a rescheduled appointment is
// reminded again.
func dedupeKey(kind appointment.NotificationKind, appt *appointment.Appointment) string {
	return fmt.Sprintf("%s:%s:%d", kind, appt.ID, appt.ScheduledAt.Unix())
}

// Run sends both kinds of reminder immediately and then on every tick until
// ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reminder job stopping")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	if _, err := s.SendTwoWeekReminders(ctx); err != nil {
		s.logger.Error().Err(err).Msg("two week reminders failed")
	}
	if _, err := s.SendDayBeforeReminders(ctx); err != nil {
		s.logger.Error().Err(err).Msg("day before reminders failed")
	}
}
