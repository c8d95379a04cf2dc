package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is a plated dinner or function guests can reserve tickets for.
type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:200"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null;size:220"`
	Description string    `json:"description" gorm:"type:text"`
	Location    string    `json:"location" gorm:"not null;size:255"`
	Address     string    `json:"address" gorm:"type:text"`
	Capacity    int       `json:"capacity" gorm:"not null;check:capacity > 0"`
	StartsAt    time.Time `json:"starts_at" gorm:"not null"`
	EndsAt      time.Time `json:"ends_at" gorm:"not null"`
	Currency    string    `json:"currency" gorm:"type:varchar(3);default:'ZAR'"`
	Published   bool      `json:"published" gorm:"default:false"`

	SubEvents   []SubEvent   `json:"sub_events,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`
	TicketTypes []TicketType `json:"ticket_types,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// SubEvent is an optional session within an event (e.g. a tasting sitting).
type SubEvent struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID  uuid.UUID `json:"event_id" gorm:"type:uuid;index;not null"`
	Title    string    `json:"title" gorm:"not null;size:200"`
	StartsAt time.Time `json:"starts_at" gorm:"not null"`
	EndsAt   time.Time `json:"ends_at" gorm:"not null"`
	Capacity int       `json:"capacity" gorm:"not null;check:capacity > 0"`
}

// TicketType is the unit guests actually reserve. The reservation fee is the
// per-ticket deposit considered sufficient to secure a spot before full payment.
type TicketType struct {
	ID                uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID           uuid.UUID  `json:"event_id" gorm:"type:uuid;index;not null"`
	SubEventID        *uuid.UUID `json:"sub_event_id,omitempty" gorm:"type:uuid;index"`
	Name              string     `json:"name" gorm:"not null;size:100"`
	Price             float64    `json:"price" gorm:"not null;check:price >= 0"`
	ReservationFee    float64    `json:"reservation_fee" gorm:"default:0;check:reservation_fee >= 0"`
	QuantityAvailable int        `json:"quantity_available" gorm:"not null;check:quantity_available >= 0"`

	Event *Event `json:"event,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Event) TableName() string {
	return "events"
}

func (SubEvent) TableName() string {
	return "sub_events"
}

func (TicketType) TableName() string {
	return "ticket_types"
}
