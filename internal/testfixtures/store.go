package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

// MemoryStore is an in-memory appointment.Repository. Saves are counted so
// tests can assert on write volume.
type MemoryStore struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]appointment.Appointment
	order  []uuid.UUID
	saves  []appointment.Appointment
	events []appointment.EventLog

	// SaveErr, when set, fails every Save.
	SaveErr error
}

func NewMemoryStore(appts ...appointment.Appointment) *MemoryStore {
	s := &MemoryStore{byID: make(map[uuid.UUID]appointment.Appointment)}
	for _, a := range appts {
		s.put(a)
	}
	return s
}

func (s *MemoryStore) put(a appointment.Appointment) {
	if _, ok := s.byID[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.byID[a.ID] = clone(a)
}

// Saves returns every appointment passed to Save, in call order.
func (s *MemoryStore) Saves() []appointment.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]appointment.Appointment, len(s.saves))
	copy(out, s.saves)
	return out
}

func (s *MemoryStore) Events() []appointment.EventLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]appointment.EventLog, len(s.events))
	copy(out, s.events)
	return out
}

// Get returns the stored copy of an appointment.
func (s *MemoryStore) Get(id uuid.UUID) (appointment.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	return clone(a), ok
}

// All returns every stored appointment in insertion order.
func (s *MemoryStore) All() []appointment.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(appointment.Appointment) bool { return true })
}

func (s *MemoryStore) filter(keep func(appointment.Appointment) bool) []appointment.Appointment {
	var out []appointment.Appointment
	for _, id := range s.order {
		a := s.byID[id]
		if keep(a) {
			out = append(out, clone(a))
		}
	}
	return out
}

func (s *MemoryStore) Save(ctx context.Context, appt appointment.Appointment) (*appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return nil, s.SaveErr
	}
	s.put(appt)
	s.saves = append(s.saves, clone(appt))
	saved := clone(appt)
	return &saved, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	out := clone(a)
	return &out, nil
}

func (s *MemoryStore) FindByStatus(ctx context.Context, status appointment.Status) ([]appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(a appointment.Appointment) bool { return a.Status == status }), nil
}

func (s *MemoryStore) FindPendingScheduling(ctx context.Context) ([]appointment.Appointment, error) {
	return s.FindByStatus(ctx, appointment.StatusPendingScheduling)
}

func (s *MemoryStore) ExistsAtDoctorTime(ctx context.Context, doctorID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := s.filter(func(a appointment.Appointment) bool {
		return booked(a) && *a.DoctorID == doctorID && a.ScheduledAt.Equal(at)
	})
	return len(found) > 0, nil
}

func (s *MemoryStore) FindByDoctorAndRange(ctx context.Context, doctorID string, start, end time.Time) ([]appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(a appointment.Appointment) bool {
		return a.DoctorID != nil && a.ScheduledAt != nil && *a.DoctorID == doctorID &&
			!a.ScheduledAt.Before(start) && a.ScheduledAt.Before(end)
	}), nil
}

func (s *MemoryStore) FindReschedulable(ctx context.Context, specialty, city string) ([]appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.filter(func(a appointment.Appointment) bool {
		return a.Status == appointment.StatusScheduled && a.Priority != appointment.PriorityUrgent &&
			a.Specialty == specialty && a.City == city
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.Before(*out[j].ScheduledAt) })
	return out, nil
}

// WithTx snapshots the store and restores it when fn fails.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(appointment.Store) error) error {
	s.mu.Lock()
	snapshot := make(map[uuid.UUID]appointment.Appointment, len(s.byID))
	for id, a := range s.byID {
		snapshot[id] = a
	}
	order := append([]uuid.UUID(nil), s.order...)
	saves := len(s.saves)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.byID = snapshot
		s.order = order
		s.saves = s.saves[:saves]
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) InsertEvent(ctx context.Context, ev appointment.EventLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func booked(a appointment.Appointment) bool {
	return (a.Status == appointment.StatusScheduled || a.Status == appointment.StatusConfirmed) &&
		a.DoctorID != nil && a.ScheduledAt != nil
}

func clone(a appointment.Appointment) appointment.Appointment {
	if a.DoctorID != nil {
		v := *a.DoctorID
		a.DoctorID = &v
	}
	if a.ScheduledAt != nil {
		v := *a.ScheduledAt
		a.ScheduledAt = &v
	}
	if a.Location != nil {
		v := *a.Location
		a.Location = &v
	}
	return a
}
