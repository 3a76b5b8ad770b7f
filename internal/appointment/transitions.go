package appointment

import (
	"fmt"
	"time"
)

// Schedule places a pending appointment with a doctor at a time.
func (a *Appointment) Schedule(doctorID string, at time.Time, location string, now time.Time) error {
	if a.Status != StatusPendingScheduling {
		return a.transitionError(StatusScheduled)
	}
	a.place(doctorID, at, location)
	a.Status = StatusScheduled
	a.UpdatedAt = now
	return nil
}

// Reschedule moves a scheduled appointment to another slot. The doctor may
// change when the new slot belongs to a different doctor.
func (a *Appointment) Reschedule(doctorID string, at time.Time, location string, now time.Time) error {
	if a.Status != StatusScheduled {
		return a.transitionError(StatusScheduled)
	}
	a.place(doctorID, at, location)
	a.UpdatedAt = now
	return nil
}

// Demote returns a bumped appointment to the scheduling queue. Doctor, time
// and location are cleared so that only pending appointments lack them.
func (a *Appointment) Demote(now time.Time) error {
	if a.Status != StatusScheduled {
		return a.transitionError(StatusPendingScheduling)
	}
	a.DoctorID = nil
	a.ScheduledAt = nil
	a.Location = nil
	a.Status = StatusPendingScheduling
	a.UpdatedAt = now
	return nil
}

func (a *Appointment) Confirm(now time.Time) error {
	if a.Status != StatusScheduled {
		return a.transitionError(StatusConfirmed)
	}
	a.Status = StatusConfirmed
	a.UpdatedAt = now
	return nil
}

func (a *Appointment) Cancel(now time.Time) error {
	if a.Status == StatusCancelled {
		return a.transitionError(StatusCancelled)
	}
	a.Status = StatusCancelled
	a.UpdatedAt = now
	return nil
}

func (a *Appointment) place(doctorID string, at time.Time, location string) {
	a.DoctorID = &doctorID
	a.ScheduledAt = &at
	a.Location = &location
}

func (a *Appointment) transitionError(to Status) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, a.Status, to)
}
