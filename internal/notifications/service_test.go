package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hanSiey/pppa-management-backend/internal/reservations"
)

type fakeProducer struct {
	published []*EmailNotification
	closed    bool
}

func (f *fakeProducer) Publish(ctx context.Context, notification *EmailNotification) error {
	f.published = append(f.published, notification)
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func (f *fakeProducer) HealthCheck(ctx context.Context) error { return nil }

type fakeEmailService struct {
	sent []*EmailNotification
	err  error
}

func (f *fakeEmailService) SendNotification(ctx context.Context, notification *EmailNotification) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, notification)
	return "Dear " + notification.RecipientName, nil
}

type fakeLogRepo struct {
	logs []NotificationLog
}

func (f *fakeLogRepo) CreateLog(ctx context.Context, entry *NotificationLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeLogRepo) GetLogsByReservation(ctx context.Context, reservationID uuid.UUID) ([]NotificationLog, error) {
	var out []NotificationLog
	for _, entry := range f.logs {
		if entry.ReservationID == reservationID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeLogRepo) ListLogs(ctx context.Context, page, limit int) ([]NotificationLog, int64, error) {
	return f.logs, int64(len(f.logs)), nil
}

func confirmationNotice() reservations.Notice {
	return reservations.Notice{
		Type:           string(TypeReservationConfirmation),
		ReservationID:  uuid.New(),
		ReferenceCode:  "A1B2C3D4E5F6",
		RecipientEmail: "thandi@example.com",
		RecipientName:  "Thandi Nkosi",
		EventTitle:     "Spring Tasting Dinner",
		Quantity:       2,
		TotalAmount:    1700,
		AmountPaid:     500,
	}
}

func TestNotifyValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(&fakeProducer{}, nil, &fakeLogRepo{}, "")

	notice := confirmationNotice()
	notice.Type = "carrier_pigeon"
	if err := svc.Notify(ctx, notice); err == nil {
		t.Fatalf("expected error for unknown notification type")
	}

	notice = confirmationNotice()
	notice.RecipientEmail = ""
	if err := svc.Notify(ctx, notice); err == nil {
		t.Fatalf("expected error for missing recipient email")
	}
}

func TestNotifyPrefersProducer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	producer := &fakeProducer{}
	email := &fakeEmailService{}
	svc := NewService(producer, email, &fakeLogRepo{}, "")

	if err := svc.Notify(ctx, confirmationNotice()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(producer.published) != 1 {
		t.Fatalf("published = %d, want 1", len(producer.published))
	}
	if len(email.sent) != 0 {
		t.Fatalf("direct SMTP used while a producer is configured")
	}

	published := producer.published[0]
	if published.Type != TypeReservationConfirmation {
		t.Fatalf("type = %s, want reservation_confirmation", published.Type)
	}
	if published.Subject != "Reservation A1B2C3D4E5F6 received" {
		t.Fatalf("subject = %q", published.Subject)
	}
	if published.TemplateData["Currency"] != "ZAR" {
		t.Fatalf("currency = %v, want ZAR default", published.TemplateData["Currency"])
	}
}

func TestNotifyDirectSMTP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success logs a sent entry", func(t *testing.T) {
		t.Parallel()
		email := &fakeEmailService{}
		logRepo := &fakeLogRepo{}
		svc := NewService(nil, email, logRepo, "ZAR")

		notice := confirmationNotice()
		if err := svc.Notify(ctx, notice); err != nil {
			t.Fatalf("Notify: %v", err)
		}
		if len(email.sent) != 1 {
			t.Fatalf("sent = %d, want 1", len(email.sent))
		}
		if len(logRepo.logs) != 1 {
			t.Fatalf("logs = %d, want 1", len(logRepo.logs))
		}
		entry := logRepo.logs[0]
		if entry.Status != StatusSent || entry.Channel != "email" {
			t.Fatalf("log entry = %+v, want sent via email", entry)
		}
		if entry.ReservationID != notice.ReservationID {
			t.Fatalf("log not tied to the reservation")
		}
		if !strings.Contains(entry.Content, "Thandi Nkosi") {
			t.Fatalf("rendered content not captured: %q", entry.Content)
		}
	})

	t.Run("failure still logs and surfaces the error", func(t *testing.T) {
		t.Parallel()
		email := &fakeEmailService{err: errors.New("smtp connect refused")}
		logRepo := &fakeLogRepo{}
		svc := NewService(nil, email, logRepo, "ZAR")

		if err := svc.Notify(ctx, confirmationNotice()); err == nil {
			t.Fatalf("expected SMTP error to surface")
		}
		if len(logRepo.logs) != 1 {
			t.Fatalf("failed sends must still be logged")
		}
		entry := logRepo.logs[0]
		if entry.Status != StatusFailed || entry.Error == "" {
			t.Fatalf("log entry = %+v, want failed with an error", entry)
		}
	})
}

func TestNotifyNoTransport(t *testing.T) {
	t.Parallel()
	svc := NewService(nil, nil, &fakeLogRepo{}, "")
	// Nothing configured: notices are dropped silently rather than failing
	// the reservation flow that raised them.
	if err := svc.Notify(context.Background(), confirmationNotice()); err != nil {
		t.Fatalf("Notify without transports: %v", err)
	}
}

func TestSubjects(t *testing.T) {
	t.Parallel()
	cases := []struct {
		noticeType NotificationType
		want       string
	}{
		{TypeReservationConfirmation, "Reservation A1B2C3D4E5F6 received"},
		{TypePaymentReceived, "Payment received for reservation A1B2C3D4E5F6"},
		{TypePaymentReminder, "Payment reminder for reservation A1B2C3D4E5F6"},
	}
	for _, tc := range cases {
		if got := subjectFor(tc.noticeType, "A1B2C3D4E5F6"); got != tc.want {
			t.Errorf("subjectFor(%s) = %q, want %q", tc.noticeType, got, tc.want)
		}
	}
}

func TestRecipientNameDefault(t *testing.T) {
	t.Parallel()
	notice := confirmationNotice()
	notice.RecipientName = ""
	if got := recipientName(notice); got != "Guest" {
		t.Fatalf("recipientName = %q, want Guest", got)
	}
}

func TestClose(t *testing.T) {
	t.Parallel()
	producer := &fakeProducer{}
	svc := NewService(producer, nil, &fakeLogRepo{}, "")
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !producer.closed {
		t.Fatalf("producer not closed")
	}
}
