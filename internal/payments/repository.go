package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrRefundNotFound        = errors.New("refund not found")
	ErrBankingDetailNotFound = errors.New("banking detail not found")
)

type Repository interface {
	// Transaction runs fn inside a single database transaction. Ledger
	// mutations and the reconciliation they trigger always share one.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Ledger entries
	CreatePaymentTx(tx *gorm.DB, payment *Payment) error
	UpdatePaymentTx(tx *gorm.DB, payment *Payment) error
	DeletePaymentTx(tx *gorm.DB, id uuid.UUID) error
	GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetPaymentsByReservation(ctx context.Context, reservationID uuid.UUID) ([]Payment, error)
	ListPayments(ctx context.Context, query PaymentListQuery) ([]Payment, int64, error)

	// Refunds
	CreateRefund(ctx context.Context, refund *Refund) error
	GetRefundByID(ctx context.Context, id uuid.UUID) (*Refund, error)
	UpdateRefund(ctx context.Context, refund *Refund) error
	ListRefunds(ctx context.Context, status RefundStatus) ([]Refund, error)

	// Banking details
	CreateBankingDetail(ctx context.Context, detail *BankingDetail) error
	UpdateBankingDetail(ctx context.Context, detail *BankingDetail) error
	DeleteBankingDetail(ctx context.Context, id uuid.UUID) error
	GetBankingDetailByID(ctx context.Context, id uuid.UUID) (*BankingDetail, error)
	ListBankingDetails(ctx context.Context, activeOnly bool) ([]BankingDetail, error)

	// Aggregations
	GetPaymentStats(ctx context.Context) (*PaymentStats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) CreatePaymentTx(tx *gorm.DB, payment *Payment) error {
	if err := tx.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *repository) UpdatePaymentTx(tx *gorm.DB, payment *Payment) error {
	if err := tx.Save(payment).Error; err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

func (r *repository) DeletePaymentTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Where("id = ?", id).Delete(&Payment{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *repository) GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetPaymentsByReservation(ctx context.Context, reservationID uuid.UUID) ([]Payment, error) {
	var ledger []Payment
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at ASC").
		Find(&ledger).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ledger: %w", err)
	}
	return ledger, nil
}

func (r *repository) ListPayments(ctx context.Context, query PaymentListQuery) ([]Payment, int64, error) {
	var entries []Payment
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Payment{})
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Method != "" {
		db = db.Where("method = ?", query.Method)
	}
	if query.ReservationID != "" {
		db = db.Where("reservation_id = ?", query.ReservationID)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	err := db.Order("created_at DESC").Offset(offset).Limit(query.Limit).Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}

	return entries, totalCount, nil
}

func (r *repository) CreateRefund(ctx context.Context, refund *Refund) error {
	if err := r.db.WithContext(ctx).Create(refund).Error; err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}
	return nil
}

func (r *repository) GetRefundByID(ctx context.Context, id uuid.UUID) (*Refund, error) {
	var refund Refund
	err := r.db.WithContext(ctx).Preload("Payment").Where("id = ?", id).First(&refund).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, err
	}
	return &refund, nil
}

func (r *repository) UpdateRefund(ctx context.Context, refund *Refund) error {
	if err := r.db.WithContext(ctx).Save(refund).Error; err != nil {
		return fmt.Errorf("failed to update refund: %w", err)
	}
	return nil
}

func (r *repository) ListRefunds(ctx context.Context, status RefundStatus) ([]Refund, error) {
	var refunds []Refund
	db := r.db.WithContext(ctx).Preload("Payment")
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("created_at DESC").Find(&refunds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch refunds: %w", err)
	}
	return refunds, nil
}

func (r *repository) CreateBankingDetail(ctx context.Context, detail *BankingDetail) error {
	if err := r.db.WithContext(ctx).Create(detail).Error; err != nil {
		return fmt.Errorf("failed to create banking detail: %w", err)
	}
	return nil
}

func (r *repository) UpdateBankingDetail(ctx context.Context, detail *BankingDetail) error {
	if err := r.db.WithContext(ctx).Save(detail).Error; err != nil {
		return fmt.Errorf("failed to update banking detail: %w", err)
	}
	return nil
}

func (r *repository) DeleteBankingDetail(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BankingDetail{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete banking detail: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrBankingDetailNotFound
	}
	return nil
}

func (r *repository) GetBankingDetailByID(ctx context.Context, id uuid.UUID) (*BankingDetail, error) {
	var detail BankingDetail
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankingDetailNotFound
		}
		return nil, err
	}
	return &detail, nil
}

func (r *repository) ListBankingDetails(ctx context.Context, activeOnly bool) ([]BankingDetail, error) {
	var details []BankingDetail
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("active = ?", true)
	}
	err := db.Order("bank_name ASC").Find(&details).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch banking details: %w", err)
	}
	return details, nil
}

// GetPaymentStats aggregates completed payments for the staff dashboard.
func (r *repository) GetPaymentStats(ctx context.Context) (*PaymentStats, error) {
	stats := &PaymentStats{ByMethod: make(map[string]MethodStats)}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	windows := []struct {
		since time.Time
		count *int64
		total *float64
	}{
		{today, &stats.TodayCount, &stats.TodayTotal},
		{now.AddDate(0, 0, -7), &stats.WeekCount, &stats.WeekTotal},
		{now.AddDate(0, 0, -30), &stats.MonthCount, &stats.MonthTotal},
	}

	for _, w := range windows {
		var row struct {
			Count int64
			Total float64
		}
		err := r.db.WithContext(ctx).
			Model(&Payment{}).
			Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
			Where("status = ? AND paid_at >= ?", StatusCompleted, w.since).
			Scan(&row).Error
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate payments: %w", err)
		}
		*w.count = row.Count
		*w.total = row.Total
	}

	var methodRows []struct {
		Method string
		Count  int64
		Total  float64
	}
	err := r.db.WithContext(ctx).
		Model(&Payment{}).
		Select("method, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("status = ?", StatusCompleted).
		Group("method").
		Scan(&methodRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payment methods: %w", err)
	}
	for _, row := range methodRows {
		stats.ByMethod[row.Method] = MethodStats{Count: row.Count, Total: row.Total}
	}

	return stats, nil
}
