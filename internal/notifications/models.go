package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeReservationConfirmation NotificationType = "reservation_confirmation"
	TypePaymentReceived         NotificationType = "payment_received"
	TypePaymentReminder         NotificationType = "payment_reminder"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case TypeReservationConfirmation, TypePaymentReceived, TypePaymentReminder:
		return true
	}
	return false
}

type NotificationStatus string

const (
	StatusQueued  NotificationStatus = "queued"
	StatusSending NotificationStatus = "sending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
)

// EmailNotification is the message published to Kafka and consumed by the
// email workers. It carries everything needed to render and send the email
// so workers never read back from the reservation store.
type EmailNotification struct {
	ID            uuid.UUID        `json:"id"`
	Type          NotificationType `json:"type"`
	ReservationID uuid.UUID        `json:"reservation_id"`
	ReferenceCode string           `json:"reference_code"`

	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`

	Subject      string                 `json:"subject"`
	TemplateData map[string]interface{} `json:"template_data"`

	Status     NotificationStatus `json:"status"`
	RetryCount int                `json:"retry_count"`
	MaxRetries int                `json:"max_retries"`
	LastError  string             `json:"last_error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	SentAt     *time.Time         `json:"sent_at,omitempty"`
}

// GetPartitionKey routes all notifications for one reservation to the same
// partition, preserving their order.
func (n *EmailNotification) GetPartitionKey() string {
	return n.ReservationID.String()
}

func (n *EmailNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func (n *EmailNotification) MarkSent() {
	now := time.Now()
	n.Status = StatusSent
	n.SentAt = &now
}

func (n *EmailNotification) MarkFailed(err error) {
	n.Status = StatusFailed
	n.LastError = err.Error()
}

// NotificationLog is the persistent audit record of every delivery attempt.
type NotificationLog struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReservationID  uuid.UUID          `gorm:"type:uuid;index;not null" json:"reservation_id"`
	RecipientEmail string             `gorm:"size:255;not null" json:"recipient_email"`
	Type           NotificationType   `gorm:"type:varchar(50);not null" json:"type"`
	Channel        string             `gorm:"type:varchar(20);default:'email'" json:"channel"`
	Subject        string             `gorm:"size:255" json:"subject"`
	Content        string             `gorm:"type:text" json:"content,omitempty"`
	Status         NotificationStatus `gorm:"type:varchar(20);not null" json:"status"`
	Error          string             `gorm:"type:text" json:"error,omitempty"`
	CreatedAt      time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for NotificationLog
func (NotificationLog) TableName() string {
	return "notification_logs"
}
