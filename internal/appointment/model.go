package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status int

const (
	StatusPendingScheduling Status = iota + 1
	StatusScheduled
	StatusConfirmed
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusPendingScheduling: "PENDING_SCHEDULING",
	StatusScheduled:         "SCHEDULED",
	StatusConfirmed:         "CONFIRMED",
	StatusCancelled:         "CANCELLED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func ParseStatus(raw string) (Status, error) {
	for s, name := range statusNames {
		if strings.EqualFold(raw, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown appointment status %q", raw)
}

// Priority is ordered: a higher value is served first.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

var priorityNames = map[Priority]string{
	PriorityLow:    "LOW",
	PriorityMedium: "MEDIUM",
	PriorityHigh:   "HIGH",
	PriorityUrgent: "URGENT",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

func ParsePriority(raw string) (Priority, error) {
	for p, name := range priorityNames {
		if strings.EqualFold(raw, name) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown appointment priority %q", raw)
}

type Appointment struct {
	ID          uuid.UUID
	PatientID   string
	DoctorID    *string
	Specialty   string
	City        string
	ScheduledAt *time.Time
	Location    *string
	Priority    Priority
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Appointment) IsUrgent() bool {
	return a.Priority == PriorityUrgent
}

// Reschedulable reports whether the engine may displace this appointment.
// Confirmed appointments are never touched.
func (a *Appointment) Reschedulable() bool {
	return a.Status == StatusScheduled
}

// WorkingHours is one weekly window in which a doctor sees patients.
type WorkingHours struct {
	Day   time.Weekday
	Start ClockTime
	End   ClockTime
}

// ClockTime is a time of day expressed in minutes since midnight.
type ClockTime int

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime accepts "HH:MM" and "HH:MM:SS".
func ParseClockTime(raw string) (ClockTime, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return NewClockTime(t.Hour(), t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", raw)
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On returns the instant at this time of day on the calendar date of day.
func (c ClockTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, day.Location())
}

type Doctor struct {
	ID           string
	Name         string
	Specialty    string
	City         string
	WorkingHours []WorkingHours
}

// Location is the label patients see for where the appointment happens.
func (d Doctor) Location() string {
	return "Office " + d.Name
}

type Patient struct {
	Identifier string
	Name       string
	Email      string
	Phone      string
	City       string
}

type NotificationKind string

const (
	NotificationScheduled        NotificationKind = "SCHEDULED"
	NotificationRescheduled      NotificationKind = "RESCHEDULED"
	NotificationWaitlisted       NotificationKind = "WAITLISTED"
	NotificationReminderTwoWeeks NotificationKind = "REMINDER_TWO_WEEKS"
	NotificationReminderOneDay   NotificationKind = "REMINDER_ONE_DAY"
	NotificationConfirmed        NotificationKind = "CONFIRMED"
	NotificationCancelled        NotificationKind = "CANCELLED"
)

// Notification is an intent handed to the Notifier. Optional fields are
// empty or nil when they do not apply to the kind.
type Notification struct {
	AppointmentID uuid.UUID
	PatientName   string
	Email         string
	Phone         string
	DoctorName    string
	Location      string
	ScheduledAt   *time.Time
	Kind          NotificationKind
}

// NewNotification fills the patient contact fields and, when the appointment
// has been placed, its location and time.
func NewNotification(kind NotificationKind, appt *Appointment, patient *Patient) Notification {
	n := Notification{
		AppointmentID: appt.ID,
		Kind:          kind,
	}
	if patient != nil {
		n.PatientName = patient.Name
		n.Email = patient.Email
		n.Phone = patient.Phone
	}
	if appt.Location != nil {
		n.Location = *appt.Location
	}
	if appt.ScheduledAt != nil {
		at := *appt.ScheduledAt
		n.ScheduledAt = &at
	}
	return n
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
