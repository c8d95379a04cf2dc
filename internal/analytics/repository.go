package analytics

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateEvent(ctx context.Context, event *AnalyticsEvent) error
	GetDashboard(ctx context.Context) (*Dashboard, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEvent(ctx context.Context, event *AnalyticsEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create analytics event: %w", err)
	}
	return nil
}

func (r *repository) GetDashboard(ctx context.Context) (*Dashboard, error) {
	dashboard := &Dashboard{
		ReservationsByStatus: make(map[string]int64),
		TrackingCounts:       make(map[string]int64),
	}

	// Reservations grouped by status
	var statusRows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Table("reservations").
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statusRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reservations: %w", err)
	}
	for _, row := range statusRows {
		dashboard.ReservationsByStatus[row.Status] = row.Count
		dashboard.TotalReservations += row.Count
	}

	// Completed revenue, total and per day over the last 30 days
	err = r.db.WithContext(ctx).Table("payments").
		Where("status = ?", "completed").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&dashboard.TotalRevenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	since := time.Now().UTC().AddDate(0, 0, -30)
	var revenueRows []RevenueBucket
	err = r.db.WithContext(ctx).Table("payments").
		Select("DATE(paid_at) AS day, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("status = ? AND paid_at >= ?", "completed", since).
		Group("DATE(paid_at)").
		Order("day ASC").
		Scan(&revenueRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to bucket revenue: %w", err)
	}
	dashboard.RevenueByDay = revenueRows

	// Outstanding balance across active reservations
	err = r.db.WithContext(ctx).Table("reservations").
		Where("status NOT IN ?", []string{"cancelled"}).
		Select("COALESCE(SUM(total_amount - amount_paid), 0)").
		Scan(&dashboard.OutstandingBalance).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate outstanding balance: %w", err)
	}

	// Tracking event counts over the last 30 days
	var trackingRows []struct {
		EventType string
		Count     int64
	}
	err = r.db.WithContext(ctx).Table("analytics_events").
		Select("event_type, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("event_type").
		Scan(&trackingRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tracking events: %w", err)
	}
	for _, row := range trackingRows {
		dashboard.TrackingCounts[row.EventType] = row.Count
	}

	// Proofs awaiting review
	err = r.db.WithContext(ctx).Table("payment_proofs").
		Where("status = ?", "pending").
		Select("COUNT(*)").
		Scan(&dashboard.PendingProofs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending proofs: %w", err)
	}

	return dashboard, nil
}
