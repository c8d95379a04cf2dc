package reservations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanSiey/pppa-management-backend/internal/payments"
)

// reconcilerAdapter exposes the repository's reconciliation to the payments
// service without the payments package importing this one.
type reconcilerAdapter struct {
	repo Repository
}

func NewReconciler(repo Repository) payments.Reconciler {
	return &reconcilerAdapter{repo: repo}
}

func (a *reconcilerAdapter) Reconcile(ctx context.Context, tx *gorm.DB, reservationID uuid.UUID) error {
	return a.repo.ReconcileTx(ctx, tx, reservationID)
}
