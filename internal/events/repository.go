package events

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrSubEventNotFound   = errors.New("sub event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrSlugTaken          = errors.New("event slug already in use")
)

type Repository interface {
	// Event operations
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	UpdateEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	ListEvents(ctx context.Context, query EventListQuery, publishedOnly bool) ([]Event, int64, error)
	SlugExists(ctx context.Context, slug string) (bool, error)

	// SubEvent operations
	CreateSubEvent(ctx context.Context, subEvent *SubEvent) error
	DeleteSubEvent(ctx context.Context, id uuid.UUID) error

	// TicketType operations
	CreateTicketType(ctx context.Context, tt *TicketType) error
	GetTicketTypeByID(ctx context.Context, id uuid.UUID) (*TicketType, error)
	UpdateTicketType(ctx context.Context, tt *TicketType) error
	DeleteTicketType(ctx context.Context, id uuid.UUID) error
	ListTicketTypesByEvent(ctx context.Context, eventID uuid.UUID) ([]TicketType, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEvent(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).
		Preload("SubEvents").
		Preload("TicketTypes").
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetEventBySlug(ctx context.Context, slug string) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).
		Preload("SubEvents").
		Preload("TicketTypes").
		Where("slug = ?", slug).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) UpdateEvent(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *repository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Event{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repository) ListEvents(ctx context.Context, query EventListQuery, publishedOnly bool) ([]Event, int64, error) {
	var eventList []Event
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).Model(&Event{})
	if publishedOnly {
		baseQuery = baseQuery.Where("published = ?", true)
	}
	baseQuery = applyEventFilters(baseQuery, query)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("TicketTypes").
		Order("starts_at ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&eventList).Error

	return eventList, totalCount, err
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Event{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreateSubEvent(ctx context.Context, subEvent *SubEvent) error {
	return r.db.WithContext(ctx).Create(subEvent).Error
}

func (r *repository) DeleteSubEvent(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&SubEvent{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubEventNotFound
	}
	return nil
}

func (r *repository) CreateTicketType(ctx context.Context, tt *TicketType) error {
	return r.db.WithContext(ctx).Create(tt).Error
}

func (r *repository) GetTicketTypeByID(ctx context.Context, id uuid.UUID) (*TicketType, error) {
	var tt TicketType
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("id = ?", id).
		First(&tt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketTypeNotFound
		}
		return nil, err
	}
	return &tt, nil
}

func (r *repository) UpdateTicketType(ctx context.Context, tt *TicketType) error {
	return r.db.WithContext(ctx).Save(tt).Error
}

func (r *repository) DeleteTicketType(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&TicketType{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketTypeNotFound
	}
	return nil
}

func (r *repository) ListTicketTypesByEvent(ctx context.Context, eventID uuid.UUID) ([]TicketType, error) {
	var ticketTypes []TicketType
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("price ASC").
		Find(&ticketTypes).Error
	return ticketTypes, err
}

// applyEventFilters applies query filters to the GORM query
func applyEventFilters(query *gorm.DB, filters EventListQuery) *gorm.DB {
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	if filters.Location != "" {
		query = query.Where("location ILIKE ?", "%"+filters.Location+"%")
	}

	if filters.StartDate != "" {
		if startDate, err := time.Parse("2006-01-02", filters.StartDate); err == nil {
			query = query.Where("starts_at >= ?", startDate)
		}
	}

	if filters.EndDate != "" {
		if endDate, err := time.Parse("2006-01-02", filters.EndDate); err == nil {
			endDate = endDate.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
			query = query.Where("ends_at <= ?", endDate)
		}
	}

	return query
}

// CalculateTotalPages returns the page count for a paginated result set
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
