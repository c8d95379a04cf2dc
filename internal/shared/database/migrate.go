package database

import (
	"github.com/hanSiey/pppa-management-backend/internal/analytics"
	"github.com/hanSiey/pppa-management-backend/internal/events"
	"github.com/hanSiey/pppa-management-backend/internal/notifications"
	"github.com/hanSiey/pppa-management-backend/internal/payments"
	"github.com/hanSiey/pppa-management-backend/internal/reservations"
	"github.com/hanSiey/pppa-management-backend/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&events.SubEvent{},
		&events.TicketType{},
		&reservations.Reservation{},
		&reservations.PaymentProof{},
		&payments.Payment{},
		&payments.Refund{},
		&payments.BankingDetail{},
		&notifications.NotificationLog{},
		&analytics.AnalyticsEvent{},
	)
}
