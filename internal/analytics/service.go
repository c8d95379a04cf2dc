package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/hanSiey/pppa-management-backend/internal/shared/constants"
	"github.com/hanSiey/pppa-management-backend/pkg/cache"

	"github.com/google/uuid"
)

// Dashboard is the staff overview of reservations, revenue and tracking.
type Dashboard struct {
	TotalReservations    int64            `json:"total_reservations"`
	ReservationsByStatus map[string]int64 `json:"reservations_by_status"`
	TotalRevenue         float64          `json:"total_revenue"`
	OutstandingBalance   float64          `json:"outstanding_balance"`
	RevenueByDay         []RevenueBucket  `json:"revenue_by_day"`
	TrackingCounts       map[string]int64 `json:"tracking_counts"`
	PendingProofs        int64            `json:"pending_proofs"`
}

type RevenueBucket struct {
	Day   time.Time `json:"day"`
	Total float64   `json:"total"`
	Count int64     `json:"count"`
}

type Service interface {
	Track(ctx context.Context, userID *uuid.UUID, req TrackRequest) error
	GetDashboard(ctx context.Context) (*Dashboard, error)
	SetCacheService(cacheService cache.Service)
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) Track(ctx context.Context, userID *uuid.UUID, req TrackRequest) error {
	eventType := EventType(req.EventType)
	if !eventType.IsValid() {
		return fmt.Errorf("invalid analytics event type: %s", req.EventType)
	}

	return s.repo.CreateEvent(ctx, &AnalyticsEvent{
		EventType: eventType,
		UserID:    userID,
		SessionID: req.SessionID,
		Path:      req.Path,
		Metadata:  req.Metadata,
	})
}

func (s *service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	if s.cacheService != nil {
		var cached Dashboard
		err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_ANALYTICS_DASHBOARD, constants.TTL_ANALYTICS_DASHBOARD, func() (interface{}, error) {
			return s.repo.GetDashboard(ctx)
		}, &cached)
		if err != nil {
			return nil, err
		}
		return &cached, nil
	}

	return s.repo.GetDashboard(ctx)
}
