package appointment

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for s, name := range statusNames {
		got, err := ParseStatus(name)
		if err != nil || got != s {
			t.Fatalf("ParseStatus(%q) = %v, %v", name, got, err)
		}
	}
	if got, err := ParseStatus("confirmed"); err != nil || got != StatusConfirmed {
		t.Fatalf("ParseStatus(confirmed) = %v, %v", got, err)
	}
	if _, err := ParseStatus("BOOKED"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	if got, err := ParsePriority("urgent"); err != nil || got != PriorityUrgent {
		t.Fatalf("ParsePriority(urgent) = %v, %v", got, err)
	}
	if _, err := ParsePriority("CRITICAL"); err == nil {
		t.Fatal("expected error for unknown priority")
	}
	if !(PriorityUrgent > PriorityHigh && PriorityHigh > PriorityMedium && PriorityMedium > PriorityLow) {
		t.Fatal("priorities are not ordered")
	}
	if s := Priority(9).String(); s != "Priority(9)" {
		t.Fatalf("unknown priority prints %q", s)
	}
}

func TestParseClockTime(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "09:00", want: "09:00", ok: true},
		{raw: "17:30:00", want: "17:30", ok: true},
		{raw: "9am", ok: false},
		{raw: "25:00", ok: false},
	}
	for _, tc := range cases {
		got, err := ParseClockTime(tc.raw)
		if tc.ok != (err == nil) {
			t.Fatalf("ParseClockTime(%q) err = %v", tc.raw, err)
		}
		if tc.ok && got.String() != tc.want {
			t.Fatalf("ParseClockTime(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestClockTime_On(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("BRT", -3*3600)
	day := time.Date(2026, time.October, 20, 23, 59, 0, 0, loc)
	got := NewClockTime(9, 30).On(day)
	want := time.Date(2026, time.October, 20, 9, 30, 0, 0, loc)
	if !got.Equal(want) || got.Location() != loc {
		t.Fatalf("On = %s, want %s", got, want)
	}
}

func TestNewNotification(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.October, 20, 9, 30, 0, 0, time.UTC)
	loc := "Office Dr. Ana"
	apptAt := at
	appt := &Appointment{ID: uuid.New(), ScheduledAt: &apptAt, Location: &loc}
	patient := &Patient{Name: "Maria", Email: "maria@example.com", Phone: "+55 19 90000-0000"}

	n := NewNotification(NotificationScheduled, appt, patient)
	if n.AppointmentID != appt.ID || n.Email != patient.Email || n.PatientName != "Maria" {
		t.Fatalf("contact fields not copied: %+v", n)
	}
	if n.Location != loc || n.ScheduledAt == nil || !n.ScheduledAt.Equal(at) {
		t.Fatalf("placement not copied: %+v", n)
	}

	// Later changes to the appointment must not leak into the notification.
	*appt.ScheduledAt = at.Add(time.Hour)
	if !n.ScheduledAt.Equal(at) {
		t.Fatal("notification shares time with appointment")
	}

	pending := NewNotification(NotificationWaitlisted, &Appointment{ID: uuid.New()}, nil)
	if pending.ScheduledAt != nil || pending.Location != "" || pending.Email != "" {
		t.Fatalf("pending notification carries placement: %+v", pending)
	}
}

func TestTransitions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	at := now.Add(49 * time.Hour)

	t.Run("schedule then confirm", func(t *testing.T) {
		a := Appointment{Status: StatusPendingScheduling}
		if err := a.Schedule("d1", at, "Office Dr. Ana", now); err != nil {
			t.Fatalf("Schedule: %v", err)
		}
		if a.Status != StatusScheduled || *a.DoctorID != "d1" || !a.ScheduledAt.Equal(at) || !a.UpdatedAt.Equal(now) {
			t.Fatalf("unexpected state %+v", a)
		}
		if err := a.Confirm(now); err != nil || a.Status != StatusConfirmed {
			t.Fatalf("Confirm: %v, status %s", err, a.Status)
		}
		if a.Reschedulable() {
			t.Fatal("confirmed appointment is reschedulable")
		}
	})

	t.Run("reschedule keeps status and may change doctor", func(t *testing.T) {
		a := Appointment{Status: StatusPendingScheduling}
		_ = a.Schedule("d1", at, "Office Dr. Ana", now)
		later := at.Add(72 * time.Hour)
		if err := a.Reschedule("d2", later, "Office Dr. Bia", now); err != nil {
			t.Fatalf("Reschedule: %v", err)
		}
		if a.Status != StatusScheduled || *a.DoctorID != "d2" || !a.ScheduledAt.Equal(later) || *a.Location != "Office Dr. Bia" {
			t.Fatalf("unexpected state %+v", a)
		}
	})

	t.Run("demote clears placement", func(t *testing.T) {
		a := Appointment{Status: StatusPendingScheduling}
		_ = a.Schedule("d1", at, "Office Dr. Ana", now)
		if err := a.Demote(now); err != nil {
			t.Fatalf("Demote: %v", err)
		}
		if a.Status != StatusPendingScheduling || a.DoctorID != nil || a.ScheduledAt != nil || a.Location != nil {
			t.Fatalf("unexpected state %+v", a)
		}
	})

	t.Run("cancel from any live state", func(t *testing.T) {
		for _, s := range []Status{StatusPendingScheduling, StatusScheduled, StatusConfirmed} {
			a := Appointment{Status: s}
			if err := a.Cancel(now); err != nil || a.Status != StatusCancelled {
				t.Fatalf("Cancel from %s: %v", s, err)
			}
		}
	})

	invalid := []struct {
		name string
		from Status
		op   func(*Appointment) error
	}{
		{"schedule scheduled", StatusScheduled, func(a *Appointment) error { return a.Schedule("d1", at, "x", now) }},
		{"reschedule pending", StatusPendingScheduling, func(a *Appointment) error { return a.Reschedule("d1", at, "x", now) }},
		{"reschedule confirmed", StatusConfirmed, func(a *Appointment) error { return a.Reschedule("d1", at, "x", now) }},
		{"demote confirmed", StatusConfirmed, func(a *Appointment) error { return a.Demote(now) }},
		{"confirm pending", StatusPendingScheduling, func(a *Appointment) error { return a.Confirm(now) }},
		{"confirm cancelled", StatusCancelled, func(a *Appointment) error { return a.Confirm(now) }},
		{"cancel cancelled", StatusCancelled, func(a *Appointment) error { return a.Cancel(now) }},
	}
	for _, tc := range invalid {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			a := Appointment{Status: tc.from}
			err := tc.op(&a)
			if !errors.Is(err, ErrInvalidStatusTransition) {
				t.Fatalf("error = %v, want ErrInvalidStatusTransition", err)
			}
			if a.Status != tc.from {
				t.Fatalf("status changed to %s on rejected transition", a.Status)
			}
		})
	}
}
