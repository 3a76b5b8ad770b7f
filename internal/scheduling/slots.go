package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

const (
	// SlotDuration is the fixed length of every appointment.
	SlotDuration = 30 * time.Minute
	// HorizonDays is how many calendar days ahead the finder searches.
	HorizonDays = 30
)

// Slot is a doctor's free start time.
type Slot struct {
	Doctor appointment.Doctor
	At     time.Time
}

// SlotFinder computes open slots from doctors' weekly windows and the
// bookings already in the store.
type SlotFinder struct {
	store appointment.Store
	now   func() time.Time
}

func NewSlotFinder(store appointment.Store, now func() time.Time) *SlotFinder {
	return &SlotFinder{store: store, now: now}
}

// HorizonStart is the earliest instant a slot may be offered: the current
// time plus one hour, truncated to the hour.
func HorizonStart(now time.Time) time.Time {
	t := now.Add(time.Hour)
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}

// FindEarliest returns the earliest free slot across doctors within the
// horizon. Ties at the same instant go to the first doctor in the list.
func (f *SlotFinder) FindEarliest(ctx context.Context, doctors []appointment.Doctor) (Slot, bool, error) {
	if len(doctors) == 0 {
		return Slot{}, false, nil
	}

	start := HorizonStart(f.now())

	for day := 0; day < HorizonDays; day++ {
		date := start.AddDate(0, 0, day)

		var best Slot
		found := false
		for _, doctor := range doctors {
			slots, err := f.doctorSlots(ctx, doctor, date, start)
			if err != nil {
				return Slot{}, false, err
			}
			for _, at := range slots {
				if !found || at.Before(best.At) {
					best = Slot{Doctor: doctor, At: at}
					found = true
				}
			}
		}
		// Days are disjoint and ascending, so nothing later can beat this.
		if found {
			return best, true, nil
		}
	}

	return Slot{}, false, nil
}

// FreeDoctors returns, in input order, the doctors able to take an
// appointment at exactly at.
func (f *SlotFinder) FreeDoctors(ctx context.Context, doctors []appointment.Doctor, at time.Time) ([]appointment.Doctor, error) {
	var free []appointment.Doctor
	for _, doctor := range doctors {
		ok, err := f.IsAvailable(ctx, doctor, at)
		if err != nil {
			return nil, err
		}
		if ok {
			free = append(free, doctor)
		}
	}
	return free, nil
}

// IsAvailable reports whether doctor works at at and has no booking then.
func (f *SlotFinder) IsAvailable(ctx context.Context, doctor appointment.Doctor, at time.Time) (bool, error) {
	// Working hours are wall-clock times in the scheduler's zone.
	if !withinWorkingHours(doctor, at.In(f.now().Location())) {
		return false, nil
	}
	taken, err := f.store.ExistsAtDoctorTime(ctx, doctor.ID, at)
	if err != nil {
		return false, fmt.Errorf("check availability of doctor %s: %w", doctor.ID, err)
	}
	return !taken, nil
}

// doctorSlots lists the free slots of one doctor on date's calendar day that
// start no earlier than notBefore.
func (f *SlotFinder) doctorSlots(ctx context.Context, doctor appointment.Doctor, date, notBefore time.Time) ([]time.Time, error) {
	var slots []time.Time
	for _, wh := range doctor.WorkingHours {
		if wh.Day != date.Weekday() {
			continue
		}
		windowEnd := wh.End.On(date)
		for at := wh.Start.On(date); !at.Add(SlotDuration).After(windowEnd); at = at.Add(SlotDuration) {
			if at.Before(notBefore) {
				continue
			}
			ok, err := f.IsAvailable(ctx, doctor, at)
			if err != nil {
				return nil, err
			}
			if ok {
				slots = append(slots, at)
			}
		}
	}
	return slots, nil
}

// withinWorkingHours applies the strict window test: a slot must start after
// the window opens and before the window end minus one slot duration.
func withinWorkingHours(doctor appointment.Doctor, at time.Time) bool {
	for _, wh := range doctor.WorkingHours {
		if wh.Day != at.Weekday() {
			continue
		}
		start := wh.Start.On(at)
		lastStart := wh.End.On(at).Add(-SlotDuration)
		if at.After(start) && at.Before(lastStart) {
			return true
		}
	}
	return false
}
