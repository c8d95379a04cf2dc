package reservations

type CreateReservationRequest struct {
	TicketTypeID string `json:"ticket_type_id" binding:"required,uuid"`
	Quantity     int    `json:"quantity" binding:"required,min=1,max=50"`
	GuestName    string `json:"guest_name" binding:"omitempty,max=200"`
	GuestEmail   string `json:"guest_email" binding:"omitempty,email"`
	GuestPhone   string `json:"guest_phone" binding:"omitempty,max=30"`
	Notes        string `json:"notes" binding:"omitempty,max=2000"`
}

// SubmitProofRequest carries the multipart form fields alongside the file.
type SubmitProofRequest struct {
	DeclaredAmount float64 `form:"declared_amount" binding:"required,gt=0"`
}

type RejectProofRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=2000"`
}

type ReservationListQuery struct {
	Page    int    `form:"page" binding:"omitempty,min=1"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status  string `form:"status"`
	EventID string `form:"event_id" binding:"omitempty,uuid"`
	Search  string `form:"search"`
}
