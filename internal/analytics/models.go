package analytics

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventPageView           EventType = "page_view"
	EventReservationAttempt EventType = "reservation_attempt"
	EventPaymentUpload      EventType = "payment_upload"
	EventUserRegistration   EventType = "user_registration"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventPageView, EventReservationAttempt, EventPaymentUpload, EventUserRegistration:
		return true
	}
	return false
}

// AnalyticsEvent is a lightweight tracking record written from the public
// tracking endpoint and from internal flows.
type AnalyticsEvent struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventType EventType  `gorm:"type:varchar(50);index;not null" json:"event_type"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	SessionID string     `gorm:"size:100" json:"session_id,omitempty"`
	Path      string     `gorm:"size:500" json:"path,omitempty"`
	Metadata  string     `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName sets the table name for AnalyticsEvent
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}
