package events

import "time"

type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=3,max=200"`
	Description string    `json:"description" binding:"max=2000"`
	Location    string    `json:"location" binding:"required,min=3,max=255"`
	Address     string    `json:"address" binding:"max=1000"`
	Capacity    int       `json:"capacity" binding:"required,min=1,max=100000"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required"`
	Currency    string    `json:"currency" binding:"omitempty,len=3"`
	Published   bool      `json:"published"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=3,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	Location    *string    `json:"location" binding:"omitempty,min=3,max=255"`
	Address     *string    `json:"address" binding:"omitempty,max=1000"`
	Capacity    *int       `json:"capacity" binding:"omitempty,min=1,max=100000"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Currency    *string    `json:"currency" binding:"omitempty,len=3"`
	Published   *bool      `json:"published"`
}

type CreateSubEventRequest struct {
	Title    string    `json:"title" binding:"required,min=3,max=200"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at" binding:"required"`
	Capacity int       `json:"capacity" binding:"required,min=1,max=100000"`
}

type CreateTicketTypeRequest struct {
	SubEventID        string  `json:"sub_event_id" binding:"omitempty,uuid"`
	Name              string  `json:"name" binding:"required,min=2,max=100"`
	Price             float64 `json:"price" binding:"min=0"`
	ReservationFee    float64 `json:"reservation_fee" binding:"min=0"`
	QuantityAvailable int     `json:"quantity_available" binding:"required,min=1"`
}

type UpdateTicketTypeRequest struct {
	Name              *string  `json:"name" binding:"omitempty,min=2,max=100"`
	Price             *float64 `json:"price" binding:"omitempty,min=0"`
	ReservationFee    *float64 `json:"reservation_fee" binding:"omitempty,min=0"`
	QuantityAvailable *int     `json:"quantity_available" binding:"omitempty,min=0"`
}

type EventListQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search    string `form:"search"`
	Location  string `form:"location"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}
