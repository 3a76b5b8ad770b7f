package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrPatientNotFound         = errors.New("patient not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidRequest          = errors.New("invalid appointment request")
)

// Store is the durable appointment storage used by the scheduling engine.
type Store interface {
	Save(ctx context.Context, appt Appointment) (*Appointment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	FindByStatus(ctx context.Context, status Status) ([]Appointment, error)
	FindPendingScheduling(ctx context.Context) ([]Appointment, error)

	// Only SCHEDULED and CONFIRMED appointments occupy a doctor's time.
	ExistsAtDoctorTime(ctx context.Context, doctorID string, at time.Time) (bool, error)
	// Appointments of a doctor starting in [start, end), whatever their status.
	// Cancelled rows still count towards the doctor's load.
	FindByDoctorAndRange(ctx context.Context, doctorID string, start, end time.Time) ([]Appointment, error)
	// SCHEDULED, non-urgent appointments for a specialty and city, earliest first.
	FindReschedulable(ctx context.Context, specialty, city string) ([]Appointment, error)

	// WithTx runs fn against a Store whose writes commit together. Writes are
	// discarded when fn returns an error.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// Repository is the Store plus the audit trail used by the request service.
type Repository interface {
	Store
	InsertEvent(ctx context.Context, ev EventLog) error
}

type RosterProvider interface {
	FindDoctors(ctx context.Context, specialty, city string) ([]Doctor, error)
}

type PatientDirectory interface {
	FindByIdentifier(ctx context.Context, identifier string) (*Patient, error)
}

// Notifier accepts notification intents for asynchronous delivery. Delivery
// outcome is not reported back.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
