package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hanSiey/pppa-management-backend/internal/reservations"
)

// Service accepts reservation notices and routes them through the delivery
// pipeline: Kafka when configured, direct SMTP otherwise, no-op when neither
// is available. It satisfies the reservations.Notifier interface.
type Service interface {
	Notify(ctx context.Context, notice reservations.Notice) error
	GetLogsByReservation(ctx context.Context, reservationID uuid.UUID) ([]NotificationLog, error)
	ListLogs(ctx context.Context, page, limit int) ([]NotificationLog, int64, error)
	Close() error
}

type service struct {
	producer     Producer
	emailService EmailService
	logRepo      Repository
	currency     string
}

func NewService(producer Producer, emailService EmailService, logRepo Repository, currency string) Service {
	if currency == "" {
		currency = "ZAR"
	}
	return &service{
		producer:     producer,
		emailService: emailService,
		logRepo:      logRepo,
		currency:     currency,
	}
}

func (s *service) Notify(ctx context.Context, notice reservations.Notice) error {
	notificationType := NotificationType(notice.Type)
	if !notificationType.IsValid() {
		return fmt.Errorf("unknown notification type: %s", notice.Type)
	}
	if notice.RecipientEmail == "" {
		return fmt.Errorf("notice has no recipient email")
	}

	notification := &EmailNotification{
		ID:             uuid.New(),
		Type:           notificationType,
		ReservationID:  notice.ReservationID,
		ReferenceCode:  notice.ReferenceCode,
		RecipientEmail: notice.RecipientEmail,
		RecipientName:  recipientName(notice),
		Subject:        subjectFor(notificationType, notice.ReferenceCode),
		TemplateData: map[string]interface{}{
			"RecipientName":      recipientName(notice),
			"ReferenceCode":      notice.ReferenceCode,
			"EventTitle":         notice.EventTitle,
			"Quantity":           notice.Quantity,
			"TotalAmount":        notice.TotalAmount,
			"AmountPaid":         notice.AmountPaid,
			"OutstandingBalance": notice.OutstandingBalance,
			"Status":             notice.Status,
			"Currency":           s.currency,
		},
		MaxRetries: 3,
		CreatedAt:  time.Now(),
	}

	switch {
	case s.producer != nil:
		return s.producer.Publish(ctx, notification)
	case s.emailService != nil:
		return s.sendDirect(ctx, notification)
	default:
		// Neither Kafka nor SMTP configured; notifications are disabled
		return nil
	}
}

// sendDirect bypasses Kafka. Used when only SMTP is configured.
func (s *service) sendDirect(ctx context.Context, notification *EmailNotification) error {
	notification.Status = StatusSending
	content, err := s.emailService.SendNotification(ctx, notification)
	if err != nil {
		notification.MarkFailed(err)
	} else {
		notification.MarkSent()
	}

	entry := &NotificationLog{
		ReservationID:  notification.ReservationID,
		RecipientEmail: notification.RecipientEmail,
		Type:           notification.Type,
		Channel:        "email",
		Subject:        notification.Subject,
		Content:        content,
		Status:         notification.Status,
		Error:          notification.LastError,
	}
	if logErr := s.logRepo.CreateLog(ctx, entry); logErr != nil {
		log.Printf("Failed to write notification log: %v", logErr)
	}

	return err
}

func (s *service) GetLogsByReservation(ctx context.Context, reservationID uuid.UUID) ([]NotificationLog, error) {
	return s.logRepo.GetLogsByReservation(ctx, reservationID)
}

func (s *service) ListLogs(ctx context.Context, page, limit int) ([]NotificationLog, int64, error) {
	return s.logRepo.ListLogs(ctx, page, limit)
}

func (s *service) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}

func recipientName(notice reservations.Notice) string {
	if notice.RecipientName != "" {
		return notice.RecipientName
	}
	return "Guest"
}

func subjectFor(t NotificationType, referenceCode string) string {
	switch t {
	case TypeReservationConfirmation:
		return fmt.Sprintf("Reservation %s received", referenceCode)
	case TypePaymentReceived:
		return fmt.Sprintf("Payment received for reservation %s", referenceCode)
	case TypePaymentReminder:
		return fmt.Sprintf("Payment reminder for reservation %s", referenceCode)
	default:
		return fmt.Sprintf("Update on reservation %s", referenceCode)
	}
}
