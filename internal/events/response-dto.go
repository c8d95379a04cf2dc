package events

import "time"

type TicketTypeResponse struct {
	ID                string  `json:"id"`
	EventID           string  `json:"event_id"`
	SubEventID        string  `json:"sub_event_id,omitempty"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	ReservationFee    float64 `json:"reservation_fee"`
	QuantityAvailable int     `json:"quantity_available"`
}

type EventResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Slug        string               `json:"slug"`
	Description string               `json:"description"`
	Location    string               `json:"location"`
	Address     string               `json:"address"`
	Capacity    int                  `json:"capacity"`
	StartsAt    time.Time            `json:"starts_at"`
	EndsAt      time.Time            `json:"ends_at"`
	Currency    string               `json:"currency"`
	Published   bool                 `json:"published"`
	SubEvents   []SubEvent           `json:"sub_events,omitempty"`
	TicketTypes []TicketTypeResponse `json:"ticket_types,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

func (t *TicketType) ToResponse() TicketTypeResponse {
	resp := TicketTypeResponse{
		ID:                t.ID.String(),
		EventID:           t.EventID.String(),
		Name:              t.Name,
		Price:             t.Price,
		ReservationFee:    t.ReservationFee,
		QuantityAvailable: t.QuantityAvailable,
	}
	if t.SubEventID != nil {
		resp.SubEventID = t.SubEventID.String()
	}
	return resp
}

func (e *Event) ToResponse() EventResponse {
	resp := EventResponse{
		ID:          e.ID.String(),
		Title:       e.Title,
		Slug:        e.Slug,
		Description: e.Description,
		Location:    e.Location,
		Address:     e.Address,
		Capacity:    e.Capacity,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		Currency:    e.Currency,
		Published:   e.Published,
		SubEvents:   e.SubEvents,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	for i := range e.TicketTypes {
		resp.TicketTypes = append(resp.TicketTypes, e.TicketTypes[i].ToResponse())
	}
	return resp
}
