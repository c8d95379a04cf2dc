package events

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hanSiey/pppa-management-backend/internal/shared/constants"
	"github.com/hanSiey/pppa-management-backend/pkg/cache"

	"github.com/google/uuid"
)

var ErrInvalidSchedule = errors.New("event must end after it starts")

type Service interface {
	SetCacheService(cacheService cache.Service)

	// Event management (staff)
	CreateEvent(ctx context.Context, userID uuid.UUID, req CreateEventRequest) (*EventResponse, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	// Public browse
	GetEventBySlug(ctx context.Context, slug string, includeUnpublished bool) (*EventResponse, error)
	ListEvents(ctx context.Context, query EventListQuery, includeUnpublished bool) (*PaginatedEvents, error)

	// SubEvent management (staff)
	CreateSubEvent(ctx context.Context, eventID uuid.UUID, req CreateSubEventRequest) (*SubEvent, error)
	DeleteSubEvent(ctx context.Context, id uuid.UUID) error

	// TicketType management (staff)
	CreateTicketType(ctx context.Context, eventID uuid.UUID, req CreateTicketTypeRequest) (*TicketTypeResponse, error)
	UpdateTicketType(ctx context.Context, id uuid.UUID, req UpdateTicketTypeRequest) (*TicketTypeResponse, error)
	DeleteTicketType(ctx context.Context, id uuid.UUID) error
	ListTicketTypes(ctx context.Context, eventID uuid.UUID) ([]TicketTypeResponse, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	cacheTTL     time.Duration
}

func NewService(repo Repository) Service {
	return &service{
		repo:     repo,
		cacheTTL: constants.TTL_EVENT_DETAIL,
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) CreateEvent(ctx context.Context, userID uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, ErrInvalidSchedule
	}

	slug, err := s.uniqueSlug(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "ZAR"
	}

	event := &Event{
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		Location:    req.Location,
		Address:     req.Address,
		Capacity:    req.Capacity,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Currency:    currency,
		Published:   req.Published,
		CreatedBy:   userID,
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.invalidateEventCache(ctx)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Address != nil {
		event.Address = *req.Address
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = *req.EndsAt
	}
	if req.Currency != nil {
		event.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Published != nil {
		event.Published = *req.Published
	}

	if !event.EndsAt.After(event.StartsAt) {
		return nil, ErrInvalidSchedule
	}

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.invalidateEventCache(ctx)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.invalidateEventCache(ctx)
	return nil
}

func (s *service) GetEventBySlug(ctx context.Context, slug string, includeUnpublished bool) (*EventResponse, error) {
	// Cache-aside on the public read path only
	if s.cacheService != nil && !includeUnpublished {
		var cached EventResponse
		key := constants.BuildEventSlugKey(slug)
		err := s.cacheService.GetOrSet(ctx, key, s.cacheTTL, func() (interface{}, error) {
			event, err := s.repo.GetEventBySlug(ctx, slug)
			if err != nil {
				return nil, err
			}
			if !event.Published {
				return nil, ErrEventNotFound
			}
			return event.ToResponse(), nil
		}, &cached)
		if err != nil {
			return nil, err
		}
		return &cached, nil
	}

	event, err := s.repo.GetEventBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !event.Published && !includeUnpublished {
		return nil, ErrEventNotFound
	}

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) ListEvents(ctx context.Context, query EventListQuery, includeUnpublished bool) (*PaginatedEvents, error) {
	eventList, totalCount, err := s.repo.ListEvents(ctx, query, !includeUnpublished)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	responses := make([]EventResponse, 0, len(eventList))
	for i := range eventList {
		responses = append(responses, eventList[i].ToResponse())
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	return &PaginatedEvents{
		Events:     responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(totalCount, query.Limit),
	}, nil
}

func (s *service) CreateSubEvent(ctx context.Context, eventID uuid.UUID, req CreateSubEventRequest) (*SubEvent, error) {
	if _, err := s.repo.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, ErrInvalidSchedule
	}

	subEvent := &SubEvent{
		EventID:  eventID,
		Title:    req.Title,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Capacity: req.Capacity,
	}
	if err := s.repo.CreateSubEvent(ctx, subEvent); err != nil {
		return nil, fmt.Errorf("failed to create sub event: %w", err)
	}

	s.invalidateEventCache(ctx)
	return subEvent, nil
}

func (s *service) DeleteSubEvent(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteSubEvent(ctx, id); err != nil {
		return err
	}
	s.invalidateEventCache(ctx)
	return nil
}

func (s *service) CreateTicketType(ctx context.Context, eventID uuid.UUID, req CreateTicketTypeRequest) (*TicketTypeResponse, error) {
	if _, err := s.repo.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}

	tt := &TicketType{
		EventID:           eventID,
		Name:              req.Name,
		Price:             req.Price,
		ReservationFee:    req.ReservationFee,
		QuantityAvailable: req.QuantityAvailable,
	}
	if req.SubEventID != "" {
		subEventID, err := uuid.Parse(req.SubEventID)
		if err != nil {
			return nil, fmt.Errorf("invalid sub event id: %w", err)
		}
		tt.SubEventID = &subEventID
	}

	if err := s.repo.CreateTicketType(ctx, tt); err != nil {
		return nil, fmt.Errorf("failed to create ticket type: %w", err)
	}

	s.invalidateEventCache(ctx)

	resp := tt.ToResponse()
	return &resp, nil
}

func (s *service) UpdateTicketType(ctx context.Context, id uuid.UUID, req UpdateTicketTypeRequest) (*TicketTypeResponse, error) {
	tt, err := s.repo.GetTicketTypeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tt.Name = *req.Name
	}
	if req.Price != nil {
		tt.Price = *req.Price
	}
	if req.ReservationFee != nil {
		tt.ReservationFee = *req.ReservationFee
	}
	if req.QuantityAvailable != nil {
		tt.QuantityAvailable = *req.QuantityAvailable
	}

	if err := s.repo.UpdateTicketType(ctx, tt); err != nil {
		return nil, fmt.Errorf("failed to update ticket type: %w", err)
	}

	s.invalidateEventCache(ctx)

	resp := tt.ToResponse()
	return &resp, nil
}

func (s *service) DeleteTicketType(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteTicketType(ctx, id); err != nil {
		return err
	}
	s.invalidateEventCache(ctx)
	return nil
}

func (s *service) ListTicketTypes(ctx context.Context, eventID uuid.UUID) ([]TicketTypeResponse, error) {
	ticketTypes, err := s.repo.ListTicketTypesByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket types: %w", err)
	}

	responses := make([]TicketTypeResponse, 0, len(ticketTypes))
	for i := range ticketTypes {
		responses = append(responses, ticketTypes[i].ToResponse())
	}
	return responses, nil
}

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title to a URL-safe slug
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStripPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// uniqueSlug appends a short suffix when the natural slug is taken
func (s *service) uniqueSlug(ctx context.Context, title string) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		slug = "event"
	}

	taken, err := s.repo.SlugExists(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("failed to check slug: %w", err)
	}
	if !taken {
		return slug, nil
	}

	suffixed := fmt.Sprintf("%s-%s", slug, uuid.New().String()[:8])
	return suffixed, nil
}

// invalidateEventCache drops cached public event reads after any mutation
func (s *service) invalidateEventCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENTS_ALL); err != nil {
		fmt.Printf("Cache invalidation error (non-blocking): %v\n", err)
	}
}
