package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

var errNoDoctors = errors.New("no doctors to choose from")

// LoadBalancer spreads appointments across doctors free at the same slot.
type LoadBalancer struct {
	store appointment.Store
}

func NewLoadBalancer(store appointment.Store) *LoadBalancer {
	return &LoadBalancer{store: store}
}

// PickLeastLoaded returns the doctor with the fewest bookings on the calendar
// day of at. The first doctor wins ties.
func (b *LoadBalancer) PickLeastLoaded(ctx context.Context, doctors []appointment.Doctor, at time.Time) (appointment.Doctor, error) {
	switch len(doctors) {
	case 0:
		return appointment.Doctor{}, errNoDoctors
	case 1:
		return doctors[0], nil
	}

	y, m, d := at.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, at.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	best := doctors[0]
	bestLoad := -1
	for _, doctor := range doctors {
		booked, err := b.store.FindByDoctorAndRange(ctx, doctor.ID, dayStart, dayEnd)
		if err != nil {
			return appointment.Doctor{}, fmt.Errorf("load of doctor %s: %w", doctor.ID, err)
		}
		if bestLoad < 0 || len(booked) < bestLoad {
			best = doctor
			bestLoad = len(booked)
		}
	}
	return best, nil
}
