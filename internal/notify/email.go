package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

// Mailer sends prepared messages. *gomail.Dialer satisfies it.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSink struct {
	mailer Mailer
	from   string
}

func NewEmailSink(mailer Mailer, from string) *EmailSink {
	return &EmailSink{mailer: mailer, from: from}
}

// NewSMTPEmailSink dials host:port with the given credentials for every send.
func NewSMTPEmailSink(host string, port int, username, password, from string) *EmailSink {
	return NewEmailSink(gomail.NewDialer(host, port, username, password), from)
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Send(ctx context.Context, n appointment.Notification) error {
	if n.Email == "" {
		return errors.New("patient has no email address")
	}

	subject, body := renderEmail(n)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", n.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func renderEmail(n appointment.Notification) (subject, body string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", n.PatientName)

	when := ""
	if n.ScheduledAt != nil {
		when = n.ScheduledAt.Format("Monday, 02 January 2006 at 15:04")
	}

	switch n.Kind {
	case appointment.NotificationScheduled:
		subject = "Your appointment has been scheduled"
		fmt.Fprintf(&b, "Your appointment with %s is scheduled for %s at %s.\n", n.DoctorName, when, n.Location)
		b.WriteString("Please confirm your attendance.\n")
	case appointment.NotificationRescheduled:
		subject = "Your appointment has been rescheduled"
		b.WriteString("Your appointment was moved to make room for an urgent case.\n")
		fmt.Fprintf(&b, "It is now with %s on %s at %s.\n", n.DoctorName, when, n.Location)
	case appointment.NotificationWaitlisted:
		subject = "Your appointment request is on the waiting list"
		b.WriteString("There is no available slot for your request right now.\n")
		b.WriteString("We will contact you as soon as one opens up.\n")
	case appointment.NotificationReminderTwoWeeks:
		subject = "Reminder: upcoming appointment"
		fmt.Fprintf(&b, "You have an appointment on %s at %s.\n", when, n.Location)
		b.WriteString("Please confirm or cancel it.\n")
	case appointment.NotificationReminderOneDay:
		subject = "Reminder: your appointment is tomorrow"
		fmt.Fprintf(&b, "Your confirmed appointment is on %s at %s.\n", when, n.Location)
	case appointment.NotificationConfirmed:
		subject = "Appointment confirmed"
		fmt.Fprintf(&b, "Thank you for confirming your appointment on %s.\n", when)
	case appointment.NotificationCancelled:
		subject = "Appointment cancelled"
		b.WriteString("Your appointment has been cancelled.\n")
	default:
		subject = "Appointment update"
		fmt.Fprintf(&b, "Your appointment status changed: %s.\n", n.Kind)
	}

	b.WriteString("\nConsultation Scheduling\n")
	return subject, b.String()
}
