package testfixtures

import (
	"context"
	"fmt"
	"sync"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

// Roster serves a fixed doctor list per specialty and city.
type Roster struct {
	Doctors []appointment.Doctor
	Err     error
	Calls   int
}

func (r *Roster) FindDoctors(ctx context.Context, specialty, city string) ([]appointment.Doctor, error) {
	r.Calls++
	if r.Err != nil {
		return nil, r.Err
	}
	var out []appointment.Doctor
	for _, d := range r.Doctors {
		if d.Specialty == specialty && d.City == city {
			out = append(out, d)
		}
	}
	return out, nil
}

// Patients is a PatientDirectory keyed by identifier.
type Patients struct {
	ByID    map[string]appointment.Patient
	Failing map[string]error
}

func NewPatients(patients ...appointment.Patient) *Patients {
	p := &Patients{ByID: make(map[string]appointment.Patient), Failing: make(map[string]error)}
	for _, pt := range patients {
		p.ByID[pt.Identifier] = pt
	}
	return p
}

func (p *Patients) FindByIdentifier(ctx context.Context, identifier string) (*appointment.Patient, error) {
	if err, ok := p.Failing[identifier]; ok {
		return nil, err
	}
	pt, ok := p.ByID[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", appointment.ErrPatientNotFound, identifier)
	}
	return &pt, nil
}

// Notifier records every notification it is handed.
type Notifier struct {
	mu   sync.Mutex
	sent []appointment.Notification
}

func (n *Notifier) Notify(ctx context.Context, notification appointment.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

func (n *Notifier) Sent() []appointment.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]appointment.Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

// Kinds lists the kinds of the recorded notifications in order.
func (n *Notifier) Kinds() []appointment.NotificationKind {
	var kinds []appointment.NotificationKind
	for _, s := range n.Sent() {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}
