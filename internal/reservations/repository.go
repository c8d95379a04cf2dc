package reservations

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanSiey/pppa-management-backend/internal/events"
	"github.com/hanSiey/pppa-management-backend/internal/payments"
)

var (
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrProofNotFound         = errors.New("payment proof not found")
	ErrTicketTypeNotFound    = errors.New("ticket type not found")
	ErrInsufficientInventory = errors.New("not enough tickets available")
)

type Repository interface {
	// Core reservation operations
	CreateWithCapacityCheck(ctx context.Context, reservation *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*Reservation, error)
	GetByReferenceCode(ctx context.Context, referenceCode string) (*Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, cancelledAt *time.Time) error

	// Listing
	GetUserReservations(ctx context.Context, userID uuid.UUID, query ReservationListQuery) ([]Reservation, int64, error)
	GetAllReservations(ctx context.Context, query ReservationListQuery) ([]Reservation, int64, error)

	// Proof workflow, each step atomic with its ledger and status writes
	CreateProof(ctx context.Context, proof *PaymentProof) error
	GetProofByID(ctx context.Context, id uuid.UUID) (*PaymentProof, error)
	GetProofsByReservation(ctx context.Context, reservationID uuid.UUID) ([]PaymentProof, error)
	ApproveProofTx(ctx context.Context, proofID uuid.UUID, reviewerID uuid.UUID, entry *payments.Payment) (*Reservation, error)
	RejectProofTx(ctx context.Context, proofID uuid.UUID, reviewerID uuid.UUID, notes string) (*Reservation, error)

	// Reconciliation against the ledger
	ReconcileTx(ctx context.Context, tx *gorm.DB, reservationID uuid.UUID) error
	VerifyLedger(ctx context.Context, batchSize int) ([]LedgerInconsistency, error)

	// Expiry sweep
	CancelExpired(ctx context.Context, now time.Time, batchSize int) (int64, error)
}

// LedgerInconsistency is a reservation whose stored amount or status drifted
// from what its ledger implies. VerifyLedger corrects and reports these.
type LedgerInconsistency struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ReferenceCode string    `json:"reference_code"`
	StoredAmount  float64   `json:"stored_amount"`
	LedgerAmount  float64   `json:"ledger_amount"`
	StoredStatus  Status    `json:"stored_status"`
	LedgerStatus  Status    `json:"ledger_status"`
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateWithCapacityCheck creates a reservation atomically with inventory
// validation. The ticket-type row is locked for the duration of the
// transaction so concurrent requests serialize on the same inventory.
func (r *repository) CreateWithCapacityCheck(ctx context.Context, reservation *Reservation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the ticket type row to prevent oversell races
		var ticketType events.TicketType
		err := tx.
			Where("id = ?", reservation.TicketTypeID).
			Set("gorm:query_option", "FOR UPDATE").
			First(&ticketType).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketTypeNotFound
			}
			return fmt.Errorf("failed to lock ticket type: %w", err)
		}

		// 2. Sum quantity already held by non-cancelled reservations
		var reserved int64
		err = tx.Model(&Reservation{}).
			Where("ticket_type_id = ? AND status != ?", reservation.TicketTypeID, StatusCancelled).
			Select("COALESCE(SUM(quantity), 0)").
			Scan(&reserved).Error
		if err != nil {
			return fmt.Errorf("failed to count reserved tickets: %w", err)
		}

		// 3. Reject when the request would exceed inventory
		if reserved+int64(reservation.Quantity) > int64(ticketType.QuantityAvailable) {
			return ErrInsufficientInventory
		}

		// 4. Price the reservation from the locked row
		reservation.TotalAmount = ticketType.Price * float64(reservation.Quantity)
		reservation.EventID = ticketType.EventID

		if err := tx.Create(reservation).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("TicketType").
		Preload("Payments").
		Preload("Proofs").
		Where("id = ?", id).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) GetByReferenceCode(ctx context.Context, referenceCode string) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("TicketType").
		Preload("Payments").
		Preload("Proofs").
		Where("reference_code = ?", referenceCode).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, cancelledAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if cancelledAt != nil {
		updates["cancelled_at"] = *cancelledAt
	}

	return r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) GetUserReservations(ctx context.Context, userID uuid.UUID, query ReservationListQuery) ([]Reservation, int64, error) {
	var reservations []Reservation
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Reservation{}).Where("user_id = ?", userID)
	db = applyReservationFilters(db, query)

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	err := db.
		Preload("Event").
		Preload("TicketType").
		Order("reserved_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&reservations).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reservations: %w", err)
	}

	return reservations, totalCount, nil
}

func (r *repository) GetAllReservations(ctx context.Context, query ReservationListQuery) ([]Reservation, int64, error) {
	var reservations []Reservation
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Reservation{})
	db = applyReservationFilters(db, query)

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	err := db.
		Preload("Event").
		Preload("TicketType").
		Order("reserved_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&reservations).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reservations: %w", err)
	}

	return reservations, totalCount, nil
}

func applyReservationFilters(db *gorm.DB, query ReservationListQuery) *gorm.DB {
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.EventID != "" {
		db = db.Where("event_id = ?", query.EventID)
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		db = db.Where("reference_code ILIKE ? OR guest_email ILIKE ? OR guest_name ILIKE ?", pattern, pattern, pattern)
	}
	return db
}

func (r *repository) CreateProof(ctx context.Context, proof *PaymentProof) error {
	// Proof creation forces the reservation back to pending in the same
	// transaction, whatever state it was in.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(proof).Error; err != nil {
			return fmt.Errorf("failed to create payment proof: %w", err)
		}

		return tx.Model(&Reservation{}).
			Where("id = ?", proof.ReservationID).
			Updates(map[string]interface{}{
				"status":     StatusPending,
				"updated_at": time.Now(),
			}).Error
	})
}

func (r *repository) GetProofByID(ctx context.Context, id uuid.UUID) (*PaymentProof, error) {
	var proof PaymentProof
	err := r.db.WithContext(ctx).
		Preload("Reservation").
		Where("id = ?", id).
		First(&proof).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProofNotFound
		}
		return nil, err
	}
	return &proof, nil
}

func (r *repository) GetProofsByReservation(ctx context.Context, reservationID uuid.UUID) ([]PaymentProof, error) {
	var proofs []PaymentProof
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at DESC").
		Find(&proofs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment proofs: %w", err)
	}
	return proofs, nil
}

// ApproveProofTx marks the proof approved, writes the ledger entry, and
// reconciles the reservation, all in one transaction. The returned
// reservation is re-read after reconciliation so callers never act on a
// stale amount or status.
func (r *repository) ApproveProofTx(ctx context.Context, proofID uuid.UUID, reviewerID uuid.UUID, entry *payments.Payment) (*Reservation, error) {
	var result *Reservation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		res := tx.Model(&PaymentProof{}).
			Where("id = ? AND status = ?", proofID, ProofPending).
			Updates(map[string]interface{}{
				"status":      ProofApproved,
				"reviewed_by": reviewerID,
				"reviewed_at": now,
				"updated_at":  now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to approve proof: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrProofNotFound
		}

		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create ledger entry: %w", err)
		}

		if err := r.ReconcileTx(ctx, tx, entry.ReservationID); err != nil {
			return err
		}

		var reservation Reservation
		if err := tx.Preload("Event").Preload("TicketType").
			Where("id = ?", entry.ReservationID).
			First(&reservation).Error; err != nil {
			return fmt.Errorf("failed to re-read reservation: %w", err)
		}
		result = &reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RejectProofTx marks the proof rejected and reverts the reservation to
// reserved, but only if it is still pending. A reservation that has since
// advanced (e.g. another proof was approved) is left alone.
func (r *repository) RejectProofTx(ctx context.Context, proofID uuid.UUID, reviewerID uuid.UUID, notes string) (*Reservation, error) {
	var result *Reservation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		var proof PaymentProof
		if err := tx.Where("id = ?", proofID).First(&proof).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProofNotFound
			}
			return err
		}

		res := tx.Model(&PaymentProof{}).
			Where("id = ? AND status = ?", proofID, ProofPending).
			Updates(map[string]interface{}{
				"status":       ProofRejected,
				"review_notes": notes,
				"reviewed_by":  reviewerID,
				"reviewed_at":  now,
				"updated_at":   now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to reject proof: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrProofNotFound
		}

		if err := tx.Model(&Reservation{}).
			Where("id = ? AND status = ?", proof.ReservationID, StatusPending).
			Updates(map[string]interface{}{
				"status":     StatusReserved,
				"updated_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to revert reservation: %w", err)
		}

		var reservation Reservation
		if err := tx.Where("id = ?", proof.ReservationID).First(&reservation).Error; err != nil {
			return fmt.Errorf("failed to re-read reservation: %w", err)
		}
		result = &reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReconcileTx recomputes a reservation's amount paid and status from its
// ledger and writes the result, inside the caller's transaction. The
// reservation row is locked so concurrent ledger mutations serialize.
func (r *repository) ReconcileTx(ctx context.Context, tx *gorm.DB, reservationID uuid.UUID) error {
	if tx == nil {
		return r.db.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
			return r.ReconcileTx(ctx, inner, reservationID)
		})
	}

	var reservation Reservation
	err := tx.
		Where("id = ?", reservationID).
		Set("gorm:query_option", "FOR UPDATE").
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReservationNotFound
		}
		return fmt.Errorf("failed to lock reservation: %w", err)
	}

	var ledger []payments.Payment
	if err := tx.Where("reservation_id = ?", reservationID).Find(&ledger).Error; err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	amountPaid, status := Reconcile(reservation.Status, reservation.TotalAmount, ledger)

	return tx.Model(&Reservation{}).
		Where("id = ?", reservationID).
		Updates(map[string]interface{}{
			"amount_paid": amountPaid,
			"status":      status,
			"updated_at":  time.Now(),
		}).Error
}

// VerifyLedger scans reservations for stored amounts or statuses that drifted
// from what the ledger implies, corrects them, and reports what it found.
func (r *repository) VerifyLedger(ctx context.Context, batchSize int) ([]LedgerInconsistency, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	var inconsistencies []LedgerInconsistency
	var lastID uuid.UUID

	for {
		var batch []Reservation
		db := r.db.WithContext(ctx).Order("id ASC").Limit(batchSize)
		if lastID != uuid.Nil {
			db = db.Where("id > ?", lastID)
		}
		if err := db.Find(&batch).Error; err != nil {
			return nil, fmt.Errorf("failed to scan reservations: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			reservation := batch[i]
			lastID = reservation.ID

			var ledger []payments.Payment
			if err := r.db.WithContext(ctx).
				Where("reservation_id = ?", reservation.ID).
				Find(&ledger).Error; err != nil {
				return nil, fmt.Errorf("failed to load ledger: %w", err)
			}

			amountPaid, status := Reconcile(reservation.Status, reservation.TotalAmount, ledger)
			if amountPaid == reservation.AmountPaid && status == reservation.Status {
				continue
			}

			inconsistencies = append(inconsistencies, LedgerInconsistency{
				ReservationID: reservation.ID,
				ReferenceCode: reservation.ReferenceCode,
				StoredAmount:  reservation.AmountPaid,
				LedgerAmount:  amountPaid,
				StoredStatus:  reservation.Status,
				LedgerStatus:  status,
			})

			if err := r.ReconcileTx(ctx, nil, reservation.ID); err != nil {
				return inconsistencies, err
			}
		}

		if len(batch) < batchSize {
			break
		}
	}

	return inconsistencies, nil
}

// CancelExpired cancels unpaid reserved reservations whose hold window has
// lapsed. Returns how many were cancelled.
func (r *repository) CancelExpired(ctx context.Context, now time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("status = ? AND amount_paid = 0 AND expires_at < ?", StatusReserved, now).
		Limit(batchSize).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find expired reservations: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("id IN ? AND status = ?", ids, StatusReserved).
		Updates(map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to cancel expired reservations: %w", res.Error)
	}

	return res.RowsAffected, nil
}

// CalculateTotalPages returns the page count for a paginated result set
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
