package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	EventAppointmentRequested = "APPOINTMENT_REQUESTED"
	EventAppointmentConfirmed = "APPOINTMENT_CONFIRMED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
)

type Service struct {
	repo   Repository
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(repo Repository, now func() time.Time, logger zerolog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   repo,
		now:    now,
		logger: logger.With().Str("component", "appointment_service").Logger(),
	}
}

type RequestInput struct {
	PatientID string
	Specialty string
	City      string
	Priority  Priority
}

func (in RequestInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.PatientID) == "" {
		missing = append(missing, "patient_id")
	}
	if strings.TrimSpace(in.Specialty) == "" {
		missing = append(missing, "specialty")
	}
	if strings.TrimSpace(in.City) == "" {
		missing = append(missing, "city")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	if _, ok := priorityNames[in.Priority]; !ok {
		return fmt.Errorf("%w: unknown priority", ErrInvalidRequest)
	}
	return nil
}

// RequestAppointment records a new request awaiting scheduling. The scheduling
// engine picks it up on its next run.
func (s *Service) RequestAppointment(ctx context.Context, in RequestInput) (*Appointment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	appt := Appointment{
		ID:        uuid.New(),
		PatientID: strings.TrimSpace(in.PatientID),
		Specialty: strings.TrimSpace(in.Specialty),
		City:      strings.TrimSpace(in.City),
		Priority:  in.Priority,
		Status:    StatusPendingScheduling,
		CreatedAt: now,
		UpdatedAt: now,
	}

	saved, err := s.repo.Save(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("create appointment request: %w", err)
	}

	s.logEvent(ctx, saved.ID, EventAppointmentRequested, map[string]any{
		"patient_id": saved.PatientID,
		"specialty":  saved.Specialty,
		"city":       saved.City,
		"priority":   saved.Priority.String(),
	})

	return saved, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// ApplyConfirmation records the patient's answer for a scheduled appointment:
// confirmed moves it to CONFIRMED, anything else cancels it.
func (s *Service) ApplyConfirmation(ctx context.Context, id uuid.UUID, confirmed bool) (*Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	now := s.now()
	event := EventAppointmentConfirmed
	if confirmed {
		err = appt.Confirm(now)
	} else {
		event = EventAppointmentCancelled
		err = appt.Cancel(now)
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Save(ctx, *appt)
	if err != nil {
		return nil, fmt.Errorf("apply confirmation: %w", err)
	}

	s.logEvent(ctx, updated.ID, event, map[string]any{"confirmed": confirmed})

	return updated, nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Error().Err(err).
			Str("event_type", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("failed to insert event log")
	}
}
