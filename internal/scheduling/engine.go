package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

// ErrBumpDoctorMissing means a bump candidate names a doctor that is absent
// from the roster fetched for the same specialty and city.
var ErrBumpDoctorMissing = errors.New("doctor of bump candidate not in roster")

type Outcome string

const (
	OutcomeScheduled  Outcome = "scheduled"
	OutcomeBumped     Outcome = "bumped"
	OutcomeWaitlisted Outcome = "waitlisted"
	OutcomeFailed     Outcome = "failed"
)

// Summary counts the outcomes of one ProcessPending run.
type Summary struct {
	Processed  int
	Scheduled  int
	Bumped     int
	Waitlisted int
	Failed     int
}

func (s *Summary) record(o Outcome) {
	s.Processed++
	switch o {
	case OutcomeScheduled:
		s.Scheduled++
	case OutcomeBumped:
		s.Bumped++
	case OutcomeWaitlisted:
		s.Waitlisted++
	case OutcomeFailed:
		s.Failed++
	}
}

// Engine assigns doctors and slots to pending appointment requests.
type Engine struct {
	store    appointment.Store
	roster   appointment.RosterProvider
	patients appointment.PatientDirectory
	notifier appointment.Notifier
	now      func() time.Time
	logger   zerolog.Logger
}

func NewEngine(
	store appointment.Store,
	roster appointment.RosterProvider,
	patients appointment.PatientDirectory,
	notifier appointment.Notifier,
	now func() time.Time,
	logger zerolog.Logger,
) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:    store,
		roster:   roster,
		patients: patients,
		notifier: notifier,
		now:      now,
		logger:   logger.With().Str("component", "scheduling_engine").Logger(),
	}
}

// ProcessPending schedules every pending request, most urgent and oldest
// first. Requests are handled one at a time; a failure is logged and the
// request stays as it was.
func (e *Engine) ProcessPending(ctx context.Context) {
	pending, err := e.store.FindPendingScheduling(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to load pending appointments")
		return
	}
	if len(pending) == 0 {
		return
	}

	OrderPending(pending)

	var summary Summary
	for _, appt := range pending {
		if ctx.Err() != nil {
			e.logger.Warn().Err(ctx.Err()).Int("remaining", len(pending)-summary.Processed).Msg("scheduling run interrupted")
			break
		}

		outcome, err := e.process(ctx, appt)
		if err != nil {
			e.logger.Error().Err(err).
				Str("appointment_id", appt.ID.String()).
				Str("priority", appt.Priority.String()).
				Msg("failed to process appointment")
			outcome = OutcomeFailed
		}
		summary.record(outcome)
	}

	e.logger.Info().
		Int("processed", summary.Processed).
		Int("scheduled", summary.Scheduled).
		Int("bumped", summary.Bumped).
		Int("waitlisted", summary.Waitlisted).
		Int("failed", summary.Failed).
		Msg("scheduling run complete")
}

// OrderPending sorts by priority, highest first, then by creation time,
// oldest first. The sort is stable.
func OrderPending(appts []appointment.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Priority != appts[j].Priority {
			return appts[i].Priority > appts[j].Priority
		}
		return appts[i].CreatedAt.Before(appts[j].CreatedAt)
	})
}

// decision is what processing one request produced. Notifications are sent
// only after its writes commit.
type decision struct {
	outcome       Outcome
	notifications []appointment.Notification
}

func (e *Engine) process(ctx context.Context, appt appointment.Appointment) (Outcome, error) {
	var d decision
	err := e.store.WithTx(ctx, func(tx appointment.Store) error {
		p := e.newPass(tx)

		var err error
		if appt.IsUrgent() {
			d, err = p.urgent(ctx, appt)
		} else {
			d, err = p.normal(ctx, appt)
		}
		return err
	})
	if err != nil {
		return OutcomeFailed, err
	}

	for _, n := range d.notifications {
		e.notifier.Notify(ctx, n)
	}
	return d.outcome, nil
}

// pass binds the engine's helpers to the store of one request's transaction.
type pass struct {
	store    appointment.Store
	slots    *SlotFinder
	bumps    *BumpFinder
	balancer *LoadBalancer
	roster   appointment.RosterProvider
	patients appointment.PatientDirectory
	now      func() time.Time
	logger   zerolog.Logger
}

func (e *Engine) newPass(tx appointment.Store) *pass {
	return &pass{
		store:    tx,
		slots:    NewSlotFinder(tx, e.now),
		bumps:    NewBumpFinder(tx, e.now),
		balancer: NewLoadBalancer(tx),
		roster:   e.roster,
		patients: e.patients,
		now:      e.now,
		logger:   e.logger,
	}
}

// candidates loads the patient and the doctors of the requested specialty in
// the patient's city, falling back to the city on the request.
func (p *pass) candidates(ctx context.Context, appt appointment.Appointment) (*appointment.Patient, string, []appointment.Doctor, error) {
	patient, err := p.patients.FindByIdentifier(ctx, appt.PatientID)
	if err != nil {
		return nil, "", nil, fmt.Errorf("load patient %s: %w", appt.PatientID, err)
	}

	city := patient.City
	if city == "" {
		city = appt.City
	}

	doctors, err := p.roster.FindDoctors(ctx, appt.Specialty, city)
	if err != nil {
		return nil, "", nil, fmt.Errorf("load doctors for %s in %s: %w", appt.Specialty, city, err)
	}
	return patient, city, doctors, nil
}

func (p *pass) normal(ctx context.Context, appt appointment.Appointment) (decision, error) {
	patient, _, doctors, err := p.candidates(ctx, appt)
	if err != nil {
		return decision{}, err
	}
	if len(doctors) == 0 {
		return p.waitlist(appt, patient, "no doctors for specialty and city"), nil
	}

	slot, ok, err := p.slots.FindEarliest(ctx, doctors)
	if err != nil {
		return decision{}, err
	}
	if !ok {
		return p.waitlist(appt, patient, "no free slot in horizon"), nil
	}

	return p.assignVacant(ctx, appt, patient, doctors, slot.At)
}

func (p *pass) urgent(ctx context.Context, appt appointment.Appointment) (decision, error) {
	patient, city, doctors, err := p.candidates(ctx, appt)
	if err != nil {
		return decision{}, err
	}
	if len(doctors) == 0 {
		return p.waitlist(appt, patient, "no doctors for specialty and city"), nil
	}

	vacant, hasVacant, err := p.slots.FindEarliest(ctx, doctors)
	if err != nil {
		return decision{}, err
	}

	bumpable, err := p.bumps.FindBumpable(ctx, appt.Specialty, city, appt.Priority)
	if err != nil {
		return decision{}, err
	}

	if len(bumpable) > 0 {
		nearest := bumpable[0]
		if !hasVacant || nearest.ScheduledAt.Before(vacant.At) {
			return p.bump(ctx, appt, patient, nearest, doctors)
		}
	}

	if hasVacant {
		return p.assignVacant(ctx, appt, patient, doctors, vacant.At)
	}
	return p.waitlist(appt, patient, "no free slot and nothing to bump"), nil
}

// assignVacant books appt at a vacant instant with the least loaded of the
// doctors free then.
func (p *pass) assignVacant(ctx context.Context, appt appointment.Appointment, patient *appointment.Patient, doctors []appointment.Doctor, at time.Time) (decision, error) {
	free, err := p.slots.FreeDoctors(ctx, doctors, at)
	if err != nil {
		return decision{}, err
	}
	if len(free) == 0 {
		return p.waitlist(appt, patient, "slot taken before assignment"), nil
	}

	doctor, err := p.balancer.PickLeastLoaded(ctx, free, at)
	if err != nil {
		return decision{}, err
	}

	if err := appt.Schedule(doctor.ID, at, doctor.Location(), p.now()); err != nil {
		return decision{}, err
	}
	if _, err := p.store.Save(ctx, appt); err != nil {
		return decision{}, fmt.Errorf("save scheduled appointment: %w", err)
	}

	p.logger.Info().
		Str("appointment_id", appt.ID.String()).
		Str("doctor_id", doctor.ID).
		Time("scheduled_at", at).
		Msg("appointment scheduled")

	return decision{
		outcome:       OutcomeScheduled,
		notifications: []appointment.Notification{scheduledNotification(&appt, patient, doctor)},
	}, nil
}

// bump gives urgent the doctor and time of bumped, then moves bumped to the
// next free slot or back to the queue when there is none.
func (p *pass) bump(ctx context.Context, urgent appointment.Appointment, patient *appointment.Patient, bumped appointment.Appointment, doctors []appointment.Doctor) (decision, error) {
	doctor, ok := findDoctor(doctors, *bumped.DoctorID)
	if !ok {
		return decision{}, fmt.Errorf("%w: doctor %s of appointment %s", ErrBumpDoctorMissing, *bumped.DoctorID, bumped.ID)
	}

	bumpedPatient, err := p.patients.FindByIdentifier(ctx, bumped.PatientID)
	if err != nil {
		return decision{}, fmt.Errorf("load patient %s of bumped appointment %s: %w", bumped.PatientID, bumped.ID, err)
	}

	now := p.now()
	location := doctor.Location()
	if bumped.Location != nil {
		location = *bumped.Location
	}

	if err := urgent.Schedule(doctor.ID, *bumped.ScheduledAt, location, now); err != nil {
		return decision{}, err
	}
	if _, err := p.store.Save(ctx, urgent); err != nil {
		return decision{}, fmt.Errorf("save urgent appointment: %w", err)
	}

	d := decision{
		outcome:       OutcomeBumped,
		notifications: []appointment.Notification{scheduledNotification(&urgent, patient, doctor)},
	}

	p.logger.Info().
		Str("appointment_id", urgent.ID.String()).
		Str("bumped_appointment_id", bumped.ID.String()).
		Str("doctor_id", doctor.ID).
		Time("scheduled_at", *urgent.ScheduledAt).
		Msg("urgent appointment took a scheduled slot")

	next, found, err := p.slots.FindEarliest(ctx, doctors)
	if err != nil {
		return decision{}, err
	}

	if !found {
		if err := bumped.Demote(now); err != nil {
			return decision{}, err
		}
		if _, err := p.store.Save(ctx, bumped); err != nil {
			return decision{}, fmt.Errorf("save demoted appointment: %w", err)
		}
		d.notifications = append(d.notifications,
			appointment.NewNotification(appointment.NotificationWaitlisted, &bumped, bumpedPatient))

		p.logger.Warn().Str("appointment_id", bumped.ID.String()).Msg("bumped appointment returned to queue")
		return d, nil
	}

	target, err := p.rescheduleTarget(ctx, doctors, doctor, next)
	if err != nil {
		return decision{}, err
	}
	if err := bumped.Reschedule(target.ID, next.At, target.Location(), now); err != nil {
		return decision{}, err
	}
	if _, err := p.store.Save(ctx, bumped); err != nil {
		return decision{}, fmt.Errorf("save rescheduled appointment: %w", err)
	}

	n := appointment.NewNotification(appointment.NotificationRescheduled, &bumped, bumpedPatient)
	n.DoctorName = target.Name
	d.notifications = append(d.notifications, n)

	p.logger.Info().
		Str("appointment_id", bumped.ID.String()).
		Str("doctor_id", target.ID).
		Time("scheduled_at", next.At).
		Msg("bumped appointment rescheduled")

	return d, nil
}

// rescheduleTarget keeps a bumped appointment with its doctor when that
// doctor is free at the new slot; otherwise the slot goes to the least loaded
// free doctor.
func (p *pass) rescheduleTarget(ctx context.Context, doctors []appointment.Doctor, current appointment.Doctor, slot Slot) (appointment.Doctor, error) {
	free, err := p.slots.FreeDoctors(ctx, doctors, slot.At)
	if err != nil {
		return appointment.Doctor{}, err
	}
	if _, ok := findDoctor(free, current.ID); ok {
		return current, nil
	}
	if len(free) == 0 {
		return slot.Doctor, nil
	}
	return p.balancer.PickLeastLoaded(ctx, free, slot.At)
}

func (p *pass) waitlist(appt appointment.Appointment, patient *appointment.Patient, reason string) decision {
	p.logger.Warn().
		Str("appointment_id", appt.ID.String()).
		Str("reason", reason).
		Msg("appointment waitlisted")

	return decision{
		outcome:       OutcomeWaitlisted,
		notifications: []appointment.Notification{appointment.NewNotification(appointment.NotificationWaitlisted, &appt, patient)},
	}
}

func scheduledNotification(appt *appointment.Appointment, patient *appointment.Patient, doctor appointment.Doctor) appointment.Notification {
	n := appointment.NewNotification(appointment.NotificationScheduled, appt, patient)
	n.DoctorName = doctor.Name
	return n
}

func findDoctor(doctors []appointment.Doctor, id string) (appointment.Doctor, bool) {
	for _, d := range doctors {
		if d.ID == id {
			return d, true
		}
	}
	return appointment.Doctor{}, false
}
