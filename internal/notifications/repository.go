package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateLog(ctx context.Context, log *NotificationLog) error
	GetLogsByReservation(ctx context.Context, reservationID uuid.UUID) ([]NotificationLog, error)
	ListLogs(ctx context.Context, page, limit int) ([]NotificationLog, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateLog(ctx context.Context, log *NotificationLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create notification log: %w", err)
	}
	return nil
}

func (r *repository) GetLogsByReservation(ctx context.Context, reservationID uuid.UUID) ([]NotificationLog, error) {
	var logs []NotificationLog
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification logs: %w", err)
	}
	return logs, nil
}

func (r *repository) ListLogs(ctx context.Context, page, limit int) ([]NotificationLog, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var logs []NotificationLog
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&NotificationLog{})
	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notification logs: %w", err)
	}

	err := db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notification logs: %w", err)
	}

	return logs, totalCount, nil
}
