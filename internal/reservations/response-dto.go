package reservations

import (
	"time"

	"github.com/google/uuid"
)

type ReservationResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ReferenceCode      string     `json:"reference_code"`
	UserID             *uuid.UUID `json:"user_id,omitempty"`
	GuestName          string     `json:"guest_name,omitempty"`
	GuestEmail         string     `json:"guest_email"`
	GuestPhone         string     `json:"guest_phone,omitempty"`
	EventID            uuid.UUID  `json:"event_id"`
	EventTitle         string     `json:"event_title,omitempty"`
	TicketTypeID       uuid.UUID  `json:"ticket_type_id"`
	TicketTypeName     string     `json:"ticket_type_name,omitempty"`
	Quantity           int        `json:"quantity"`
	TotalAmount        float64    `json:"total_amount"`
	AmountPaid         float64    `json:"amount_paid"`
	OutstandingBalance float64    `json:"outstanding_balance"`
	DepositRequired    float64    `json:"deposit_required"`
	DepositMet         bool       `json:"deposit_met"`
	Status             Status     `json:"status"`
	Notes              string     `json:"notes,omitempty"`
	ReservedAt         time.Time  `json:"reserved_at"`
	ExpiresAt          time.Time  `json:"expires_at"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
}

type ProofResponse struct {
	ID               uuid.UUID   `json:"id"`
	ReservationID    uuid.UUID   `json:"reservation_id"`
	OriginalFilename string      `json:"original_filename,omitempty"`
	DeclaredAmount   float64     `json:"declared_amount"`
	Status           ProofStatus `json:"status"`
	ReviewNotes      string      `json:"review_notes,omitempty"`
	ReviewedAt       *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

type PaginatedReservations struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalCount   int64                 `json:"total_count"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"total_pages"`
}

// CalendarLinksResponse carries add-to-calendar links for a reservation.
type CalendarLinksResponse struct {
	Google  string `json:"google"`
	Outlook string `json:"outlook"`
	ICS     string `json:"ics"`
}

func (r *Reservation) ToResponse() ReservationResponse {
	resp := ReservationResponse{
		ID:                 r.ID,
		ReferenceCode:      r.ReferenceCode,
		UserID:             r.UserID,
		GuestName:          r.GuestName,
		GuestEmail:         r.GuestEmail,
		GuestPhone:         r.GuestPhone,
		EventID:            r.EventID,
		TicketTypeID:       r.TicketTypeID,
		Quantity:           r.Quantity,
		TotalAmount:        r.TotalAmount,
		AmountPaid:         r.AmountPaid,
		OutstandingBalance: r.OutstandingBalance(),
		Status:             r.Status,
		Notes:              r.Notes,
		ReservedAt:         r.ReservedAt,
		ExpiresAt:          r.ExpiresAt,
		CancelledAt:        r.CancelledAt,
	}
	if r.Event != nil {
		resp.EventTitle = r.Event.Title
	}
	if r.TicketType != nil {
		resp.TicketTypeName = r.TicketType.Name
		resp.DepositRequired = DepositRequirement(r.TicketType.ReservationFee, r.Quantity)
		resp.DepositMet = DepositMet(r.AmountPaid, r.TicketType.ReservationFee, r.Quantity)
	}
	return resp
}

func (p *PaymentProof) ToResponse() ProofResponse {
	return ProofResponse{
		ID:               p.ID,
		ReservationID:    p.ReservationID,
		OriginalFilename: p.OriginalFilename,
		DeclaredAmount:   p.DeclaredAmount,
		Status:           p.Status,
		ReviewNotes:      p.ReviewNotes,
		ReviewedAt:       p.ReviewedAt,
		CreatedAt:        p.CreatedAt,
	}
}
