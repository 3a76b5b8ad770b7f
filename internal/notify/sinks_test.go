package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/gomail.v2"

	"github.com/hackgods/consultation-scheduling/internal/appointment"
)

type stubStream struct {
	args []*redis.XAddArgs
	err  error
}

func (s *stubStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	s.args = append(s.args, a)
	return redis.NewStringResult("1700000000000-0", s.err)
}

func TestRedisStreamSink_Send(t *testing.T) {
	stream := &stubStream{}
	sink := NewRedisStreamSink(stream, "notifications", 10000)

	at := time.Date(2026, time.October, 21, 9, 30, 0, 0, time.UTC)
	n := notification(appointment.NotificationRescheduled)
	n.DoctorName = "Dr. Ana"
	n.ScheduledAt = &at

	if err := sink.Send(context.Background(), n); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(stream.args) != 1 {
		t.Fatalf("xadd calls = %d", len(stream.args))
	}
	args := stream.args[0]
	if args.Stream != "notifications" || args.MaxLen != 10000 || !args.Approx {
		t.Fatalf("unexpected args %+v", args)
	}
	values := args.Values.(map[string]any)
	if values["kind"] != "RESCHEDULED" || values["doctor_name"] != "Dr. Ana" || values["scheduled_at"] != "2026-10-21T09:30:00Z" {
		t.Fatalf("values = %v", values)
	}
	if values["appointment_id"] != n.AppointmentID.String() {
		t.Fatalf("appointment id = %v", values["appointment_id"])
	}
}

func TestRedisStreamSink_Error(t *testing.T) {
	sink := NewRedisStreamSink(&stubStream{err: errors.New("READONLY")}, "notifications", 0)
	if err := sink.Send(context.Background(), notification(appointment.NotificationWaitlisted)); err == nil {
		t.Fatal("expected error")
	}
}

type stubMailer struct {
	sent []*gomail.Message
	err  error
}

func (m *stubMailer) DialAndSend(msgs ...*gomail.Message) error {
	m.sent = append(m.sent, msgs...)
	return m.err
}

func TestEmailSink_Send(t *testing.T) {
	mailer := &stubMailer{}
	sink := NewEmailSink(mailer, "clinic@example.com")

	at := time.Date(2026, time.October, 20, 9, 30, 0, 0, time.UTC)
	n := notification(appointment.NotificationScheduled)
	n.DoctorName = "Dr. Ana"
	n.Location = "Office Dr. Ana"
	n.ScheduledAt = &at

	if err := sink.Send(context.Background(), n); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d messages", len(mailer.sent))
	}
	msg := mailer.sent[0]
	if to := msg.GetHeader("To"); len(to) != 1 || to[0] != "maria@example.com" {
		t.Fatalf("To = %v", to)
	}
	if subj := msg.GetHeader("Subject"); len(subj) != 1 || subj[0] != "Your appointment has been scheduled" {
		t.Fatalf("Subject = %v", subj)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !strings.Contains(buf.String(), "From: clinic@example.com") {
		t.Fatalf("message missing sender:\n%s", buf.String())
	}

	_, body := renderEmail(n)
	if !strings.Contains(body, "Dr. Ana") || !strings.Contains(body, "Tuesday, 20 October 2026 at 09:30") {
		t.Fatalf("body missing details:\n%s", body)
	}
}

func TestEmailSink_RequiresAddress(t *testing.T) {
	mailer := &stubMailer{}
	n := notification(appointment.NotificationWaitlisted)
	n.Email = ""
	if err := NewEmailSink(mailer, "clinic@example.com").Send(context.Background(), n); err == nil {
		t.Fatal("expected error without email")
	}
	if len(mailer.sent) != 0 {
		t.Fatal("message sent without address")
	}
}

func TestRenderEmail_CoversEveryKind(t *testing.T) {
	kinds := []appointment.NotificationKind{
		appointment.NotificationScheduled, appointment.NotificationRescheduled,
		appointment.NotificationWaitlisted, appointment.NotificationReminderTwoWeeks,
		appointment.NotificationReminderOneDay, appointment.NotificationConfirmed,
		appointment.NotificationCancelled,
	}
	seen := make(map[string]bool)
	for _, k := range kinds {
		subject, body := renderEmail(notification(k))
		if subject == "Appointment update" {
			t.Fatalf("kind %s fell through to the default template", k)
		}
		if seen[subject] {
			t.Fatalf("subject %q reused", subject)
		}
		seen[subject] = true
		if !strings.HasPrefix(body, "Hello Maria") {
			t.Fatalf("body for %s = %q", k, body)
		}
	}
}
