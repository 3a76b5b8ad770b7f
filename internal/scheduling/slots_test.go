package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
	"github.com/hackgods/consultation-scheduling/internal/testfixtures"
)

// oct returns an instant in October 2026, UTC. The 19th is a Monday.
func oct(day, hour, minute int) time.Time {
	return time.Date(2026, time.October, day, hour, minute, 0, 0, time.UTC)
}

func TestHorizonStart(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "on the hour", now: oct(19, 8, 0), want: oct(19, 9, 0)},
		{name: "mid hour", now: oct(19, 8, 40), want: oct(19, 9, 0)},
		{name: "late evening crosses midnight", now: oct(19, 23, 15), want: oct(20, 0, 0)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := HorizonStart(tc.now); !got.Equal(tc.want) {
				t.Fatalf("HorizonStart(%s) = %s, want %s", tc.now, got, tc.want)
			}
		})
	}
}

func TestSlotFinder_FindEarliest(t *testing.T) {
	t.Parallel()

	clock := testfixtures.NewClock(time.Time{})
	ctx := context.Background()

	t.Run("no doctors yields no slot", func(t *testing.T) {
		finder := NewSlotFinder(testfixtures.NewMemoryStore(), clock.Now)
		if _, ok, err := finder.FindEarliest(ctx, nil); err != nil || ok {
			t.Fatalf("expected no slot, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("window boundaries are exclusive", func(t *testing.T) {
		doctor := testfixtures.Doctor("d1", "Dr. Ana", testfixtures.Window(time.Tuesday, 9, 0, 11, 0))
		finder := NewSlotFinder(testfixtures.NewMemoryStore(), clock.Now)

		slot, ok, err := finder.FindEarliest(ctx, []appointment.Doctor{doctor})
		if err != nil || !ok {
			t.Fatalf("expected a slot, got ok=%v err=%v", ok, err)
		}
		if want := oct(20, 9, 30); !slot.At.Equal(want) {
			t.Fatalf("earliest slot = %s, want %s", slot.At, want)
		}
	})

	t.Run("last slot before window end minus duration is excluded", func(t *testing.T) {
		doctor := testfixtures.Doctor("d1", "Dr. Ana", testfixtures.Window(time.Tuesday, 9, 0, 11, 0))
		store := testfixtures.NewMemoryStore(
			testfixtures.Booked("p1", doctor, oct(20, 9, 30), appointment.StatusScheduled),
			testfixtures.Booked("p2", doctor, oct(20, 10, 0), appointment.StatusConfirmed),
		)
		finder := NewSlotFinder(store, clock.Now)

		slot, ok, err := finder.FindEarliest(ctx, []appointment.Doctor{doctor})
		if err != nil || !ok {
			t.Fatalf("expected a slot, got ok=%v err=%v", ok, err)
		}
		// 10:30 would end at 11:00 but is not strictly before 10:30.
		if want := oct(27, 9, 30); !slot.At.Equal(want) {
			t.Fatalf("earliest slot = %s, want %s", slot.At, want)
		}
	})

	t.Run("a one hour window never yields a slot", func(t *testing.T) {
		doctor := testfixtures.Doctor("d1", "Dr. Ana", testfixtures.Window(time.Tuesday, 9, 0, 10, 0))
		finder := NewSlotFinder(testfixtures.NewMemoryStore(), clock.Now)

		if _, ok, err := finder.FindEarliest(ctx, []appointment.Doctor{doctor}); err != nil || ok {
			t.Fatalf("expected no slot, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("hours before the horizon start are skipped", func(t *testing.T) {
		doctor := testfixtures.Doctor("d1", "Dr. Ana", testfixtures.Window(time.Monday, 7, 0, 12, 0))
		finder := NewSlotFinder(testfixtures.NewMemoryStore(), clock.Now)

		slot, ok, err := finder.FindEarliest(ctx, []appointment.Doctor{doctor})
		if err != nil || !ok {
			t.Fatalf("expected a slot, got ok=%v err=%v", ok, err)
		}
		if want := oct(19, 9, 0); !slot.At.Equal(want) {
			t.Fatalf("earliest slot = %s, want %s", slot.At, want)
		}
	})

	t.Run("earliest across doctors wins", func(t *testing.T) {
		late := testfixtures.Doctor("late", "Dr. Late", testfixtures.Window(time.Thursday, 9, 0, 12, 0))
		early := testfixtures.Doctor("early", "Dr. Early", testfixtures.Window(time.Wednesday, 14, 0, 17, 0))
		finder := NewSlotFinder(testfixtures.NewMemoryStore(), clock.Now)

		slot, ok, err := finder.FindEarliest(ctx, []appointment.Doctor{late, early})
		if err != nil || !ok {
			t.Fatalf("expected a slot, got ok=%v err=%v", ok, err)
		}
		if slot.Doctor.ID != "early" || !slot.At.Equal(oct(21, 14, 30)) {
			t.Fatalf("got doctor %s at %s, want early at %s", slot.Doctor.ID, slot.At, oct(21, 14, 30))
		}
	})

	t.Run("ties go to the first doctor", func(t *testing.T) {
		first := testfixtures.Doctor("first", "Dr. First", testfixtures.Window(time.Tuesday, 9, 0, 12, 0))
		second := testfixtures.Doctor("second", "Dr. Second", testfixtures.Window(time.Tuesday, 9, 0, 12, 0))
		finder := NewSlotFinder(testfixtures.NewMemoryStore(), clock.Now)

		slot, ok, err := finder.FindEarliest(ctx, []appointment.Doctor{first, second})
		if err != nil || !ok {
			t.Fatalf("expected a slot, got ok=%v err=%v", ok, err)
		}
		if slot.Doctor.ID != "first" {
			t.Fatalf("tie went to %s, want first", slot.Doctor.ID)
		}
	})

	t.Run("cancelled and pending appointments do not block", func(t *testing.T) {
		doctor := testfixtures.Doctor("d1", "Dr. Ana", testfixtures.Window(time.Tuesday, 9, 0, 11, 0))
		store := testfixtures.NewMemoryStore(
			testfixtures.Booked("p1", doctor, oct(20, 9, 30), appointment.StatusCancelled),
		)
		finder := NewSlotFinder(store, clock.Now)

		slot, ok, err := finder.FindEarliest(ctx, []appointment.Doctor{doctor})
		if err != nil || !ok {
			t.Fatalf("expected a slot, got ok=%v err=%v", ok, err)
		}
		if !slot.At.Equal(oct(20, 9, 30)) {
			t.Fatalf("earliest slot = %s, want %s", slot.At, oct(20, 9, 30))
		}
	})
}

func TestSlotFinder_FreeDoctors(t *testing.T) {
	t.Parallel()

	clock := testfixtures.NewClock(time.Time{})
	busy := testfixtures.Doctor("busy", "Dr. Busy", testfixtures.Window(time.Tuesday, 9, 0, 12, 0))
	idle := testfixtures.Doctor("idle", "Dr. Idle", testfixtures.Window(time.Tuesday, 9, 0, 12, 0))
	offDuty := testfixtures.Doctor("off", "Dr. Off", testfixtures.Window(time.Friday, 9, 0, 12, 0))

	store := testfixtures.NewMemoryStore(
		testfixtures.Booked("p1", busy, oct(20, 10, 0), appointment.StatusConfirmed),
	)
	finder := NewSlotFinder(store, clock.Now)

	free, err := finder.FreeDoctors(context.Background(), []appointment.Doctor{busy, idle, offDuty}, oct(20, 10, 0))
	if err != nil {
		t.Fatalf("FreeDoctors: %v", err)
	}
	if len(free) != 1 || free[0].ID != "idle" {
		t.Fatalf("free doctors = %+v, want only idle", free)
	}
}
