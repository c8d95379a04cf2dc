package reservations

import (
	"time"

	"github.com/google/uuid"

	"github.com/hanSiey/pppa-management-backend/internal/events"
	"github.com/hanSiey/pppa-management-backend/internal/payments"
)

// Reservation is a guest's hold on tickets. AmountPaid and Status are derived
// from the payment ledger by reconciliation and must never be adjusted ad hoc.
type Reservation struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReferenceCode string     `gorm:"type:varchar(12);unique;not null" json:"reference_code"`
	UserID        *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	GuestName     string     `gorm:"size:200" json:"guest_name,omitempty"`
	GuestEmail    string     `gorm:"size:255;not null" json:"guest_email"`
	GuestPhone    string     `gorm:"size:30" json:"guest_phone,omitempty"`
	EventID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"event_id"`
	TicketTypeID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"ticket_type_id"`
	Quantity      int        `gorm:"not null;check:quantity >= 1" json:"quantity"`
	TotalAmount   float64    `gorm:"not null" json:"total_amount"`
	AmountPaid    float64    `gorm:"not null;default:0" json:"amount_paid"`
	Status        Status     `gorm:"type:varchar(20);check:status IN ('reserved', 'pending', 'confirmed', 'completed', 'cancelled', 'attended');default:'reserved'" json:"status"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	ReservedAt    time.Time  `gorm:"autoCreateTime" json:"reserved_at"`
	ExpiresAt     time.Time  `gorm:"not null;index" json:"expires_at"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Event      *events.Event      `json:"event,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:RESTRICT;"`
	TicketType *events.TicketType `json:"ticket_type,omitempty" gorm:"foreignKey:TicketTypeID;constraint:OnDelete:RESTRICT;"`
	Payments   []payments.Payment `json:"payments,omitempty" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE;"`
	Proofs     []PaymentProof     `json:"proofs,omitempty" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE;"`
}

// OutstandingBalance is computed on demand and never persisted.
func (r *Reservation) OutstandingBalance() float64 {
	balance := r.TotalAmount - r.AmountPaid
	if balance < 0 {
		return 0
	}
	return balance
}

// IsExpired reports whether the unpaid hold window has lapsed.
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.Status == StatusReserved && r.AmountPaid == 0 && now.After(r.ExpiresAt)
}

// PaymentProof is an uploaded proof-of-payment document awaiting staff review.
type PaymentProof struct {
	ID               uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReservationID    uuid.UUID   `gorm:"type:uuid;index;not null" json:"reservation_id"`
	UploadedBy       *uuid.UUID  `gorm:"type:uuid" json:"uploaded_by,omitempty"`
	FilePath         string      `gorm:"not null;size:500" json:"file_path"`
	OriginalFilename string      `gorm:"size:255" json:"original_filename,omitempty"`
	ContentType      string      `gorm:"size:100" json:"content_type,omitempty"`
	SizeBytes        int64       `json:"size_bytes,omitempty"`
	DeclaredAmount   float64     `gorm:"not null;check:declared_amount > 0" json:"declared_amount"`
	Status           ProofStatus `gorm:"type:varchar(20);check:status IN ('pending', 'approved', 'rejected');default:'pending'" json:"status"`
	ReviewNotes      string      `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedBy       *uuid.UUID  `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Reservation *Reservation `json:"reservation,omitempty" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE;"`
}

// TableName sets the table name for Reservation
func (Reservation) TableName() string {
	return "reservations"
}

// TableName sets the table name for PaymentProof
func (PaymentProof) TableName() string {
	return "payment_proofs"
}
