package payments

import (
	"time"

	"github.com/google/uuid"
)

// Payment is a ledger entry against a reservation. The ledger is the source
// of truth for how much a guest has paid; reservation amounts are always
// recomputed from it, never adjusted in place.
type Payment struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReservationID uuid.UUID  `gorm:"type:uuid;index;not null" json:"reservation_id"`
	Amount        float64    `gorm:"not null;check:amount > 0" json:"amount"`
	Currency      string     `gorm:"type:varchar(3);default:'ZAR'" json:"currency"`
	Status        Status     `gorm:"type:varchar(20);check:status IN ('pending', 'completed', 'failed', 'refunded');default:'pending'" json:"status"`
	Method        Method     `gorm:"type:varchar(50);default:'bank_transfer'" json:"method"`
	TransactionID string     `gorm:"size:100" json:"transaction_id,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	RecordedBy    *uuid.UUID `gorm:"type:uuid" json:"recorded_by,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Refunds []Refund `json:"refunds,omitempty" gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE;"`
}

// Refund tracks money going back to a guest. Refund rows do not feed the
// reservation's amount paid; only the underlying payment's status does.
type Refund struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PaymentID   uuid.UUID    `gorm:"type:uuid;index;not null" json:"payment_id"`
	Amount      float64      `gorm:"not null;check:amount > 0" json:"amount"`
	Reason      string       `gorm:"type:text" json:"reason,omitempty"`
	Status      RefundStatus `gorm:"type:varchar(20);check:status IN ('requested', 'approved', 'processed', 'rejected');default:'requested'" json:"status"`
	RequestedBy *uuid.UUID   `gorm:"type:uuid" json:"requested_by,omitempty"`
	ReviewedBy  *uuid.UUID   `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	Notes       string       `gorm:"type:text" json:"notes,omitempty"`
	ProcessedAt *time.Time   `json:"processed_at,omitempty"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Payment *Payment `json:"payment,omitempty" gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE;"`
}

// BankingDetail is a bank account shown to guests for EFT payments.
type BankingDetail struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BankName      string    `gorm:"not null;size:100" json:"bank_name"`
	AccountName   string    `gorm:"not null;size:100" json:"account_name"`
	AccountNumber string    `gorm:"not null;size:50" json:"account_number"`
	BranchCode    string    `gorm:"size:20" json:"branch_code,omitempty"`
	AccountType   string    `gorm:"size:50" json:"account_type,omitempty"`
	Reference     string    `gorm:"size:100" json:"reference,omitempty"`
	Active        bool      `gorm:"default:true" json:"active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// TableName sets the table name for Refund
func (Refund) TableName() string {
	return "refunds"
}

// TableName sets the table name for BankingDetail
func (BankingDetail) TableName() string {
	return "banking_details"
}
