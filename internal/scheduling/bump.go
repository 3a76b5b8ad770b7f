package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

// BumpFinder lists scheduled, unconfirmed appointments an urgent request may
// displace.
type BumpFinder struct {
	store appointment.Store
	now   func() time.Time
}

func NewBumpFinder(store appointment.Store, now func() time.Time) *BumpFinder {
	return &BumpFinder{store: store, now: now}
}

// FindBumpable returns reschedulable appointments for specialty and city,
// earliest first. Only urgent requests may bump, so any other priority gets
// an empty list. Appointments starting before the horizon are left alone.
func (f *BumpFinder) FindBumpable(ctx context.Context, specialty, city string, priority appointment.Priority) ([]appointment.Appointment, error) {
	if priority != appointment.PriorityUrgent {
		return nil, nil
	}

	found, err := f.store.FindReschedulable(ctx, specialty, city)
	if err != nil {
		return nil, fmt.Errorf("find reschedulable appointments: %w", err)
	}

	notBefore := HorizonStart(f.now())
	candidates := make([]appointment.Appointment, 0, len(found))
	for _, a := range found {
		if !a.Reschedulable() || a.ScheduledAt == nil || a.DoctorID == nil {
			continue
		}
		if a.ScheduledAt.Before(notBefore) {
			continue
		}
		candidates = append(candidates, a)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ScheduledAt.Before(*candidates[j].ScheduledAt)
	})
	return candidates, nil
}
