package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanSiey/pppa-management-backend/pkg/logger"
)

var (
	ErrRefundAlreadyReviewed = errors.New("refund has already been reviewed")
	ErrRefundNotApproved     = errors.New("refund must be approved before processing")
	ErrPaymentNotRefundable  = errors.New("only completed payments can be refunded")
)

// Reconciler re-derives a reservation's paid amount and status from its
// payment ledger, inside the caller's transaction. Every ledger mutation
// goes through it so reservation state can never drift from the ledger
// without being caught.
type Reconciler interface {
	Reconcile(ctx context.Context, tx *gorm.DB, reservationID uuid.UUID) error
}

type Service interface {
	// Ledger mutations. Each one reconciles the owning reservation in the
	// same transaction before returning.
	RecordPayment(ctx context.Context, recordedBy uuid.UUID, req RecordPaymentRequest) (*Payment, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, req MarkCompletedRequest) (*Payment, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (*Payment, error)
	MarkRefunded(ctx context.Context, id uuid.UUID) (*Payment, error)
	DeletePayment(ctx context.Context, id uuid.UUID) error

	// Reads
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetLedger(ctx context.Context, reservationID uuid.UUID) ([]Payment, error)
	ListPayments(ctx context.Context, query PaymentListQuery) (*PaginatedPayments, error)
	GetStats(ctx context.Context) (*PaymentStats, error)

	// Refund workflow. Refunds never feed reconciliation; marking the
	// underlying payment refunded is the only thing that does.
	RequestRefund(ctx context.Context, requestedBy uuid.UUID, req RequestRefundRequest) (*Refund, error)
	ApproveRefund(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, notes string) (*Refund, error)
	ProcessRefund(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID) (*Refund, error)
	RejectRefund(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, notes string) (*Refund, error)
	ListRefunds(ctx context.Context, status string) ([]Refund, error)

	// Banking details shown to guests for EFT payments
	CreateBankingDetail(ctx context.Context, req BankingDetailRequest) (*BankingDetail, error)
	UpdateBankingDetail(ctx context.Context, id uuid.UUID, req BankingDetailRequest) (*BankingDetail, error)
	DeleteBankingDetail(ctx context.Context, id uuid.UUID) error
	ListBankingDetails(ctx context.Context, activeOnly bool) ([]BankingDetail, error)
}

type service struct {
	repo       Repository
	reconciler Reconciler
	log        *logger.Logger
	currency   string
}

func NewService(repo Repository, reconciler Reconciler, log *logger.Logger, currency string) Service {
	if currency == "" {
		currency = "ZAR"
	}
	return &service{
		repo:       repo,
		reconciler: reconciler,
		log:        log,
		currency:   currency,
	}
}

func (s *service) RecordPayment(ctx context.Context, recordedBy uuid.UUID, req RecordPaymentRequest) (*Payment, error) {
	reservationID, err := uuid.Parse(req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation ID: %w", err)
	}

	status := Status(req.Status)
	if req.Status == "" {
		status = StatusPending
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", req.Status)
	}

	method := Method(req.Method)
	if req.Method == "" {
		method = MethodBankTransfer
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("invalid payment method: %s", req.Method)
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	payment := &Payment{
		ReservationID: reservationID,
		Amount:        req.Amount,
		Currency:      currency,
		Status:        status,
		Method:        method,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
		RecordedBy:    &recordedBy,
	}
	if status == StatusCompleted {
		now := time.Now().UTC()
		payment.PaidAt = &now
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreatePaymentTx(tx, payment); err != nil {
			return err
		}
		return s.reconciler.Reconcile(ctx, tx, reservationID)
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

func (s *service) MarkCompleted(ctx context.Context, id uuid.UUID, req MarkCompletedRequest) (*Payment, error) {
	payment, err := s.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment.Status = StatusCompleted
	payment.PaidAt = &now
	if req.TransactionID != "" {
		payment.TransactionID = req.TransactionID
	}

	if err := s.mutate(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) MarkFailed(ctx context.Context, id uuid.UUID) (*Payment, error) {
	payment, err := s.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payment.Status = StatusFailed
	if err := s.mutate(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) MarkRefunded(ctx context.Context, id uuid.UUID) (*Payment, error) {
	payment, err := s.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payment.Status = StatusRefunded
	if err := s.mutate(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) DeletePayment(ctx context.Context, id uuid.UUID) error {
	payment, err := s.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return err
	}

	return s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeletePaymentTx(tx, id); err != nil {
			return err
		}
		return s.reconciler.Reconcile(ctx, tx, payment.ReservationID)
	})
}

// mutate persists a payment update and reconciles its reservation in one
// transaction.
func (s *service) mutate(ctx context.Context, payment *Payment) error {
	return s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdatePaymentTx(tx, payment); err != nil {
			return err
		}
		return s.reconciler.Reconcile(ctx, tx, payment.ReservationID)
	})
}

func (s *service) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.GetPaymentByID(ctx, id)
}

func (s *service) GetLedger(ctx context.Context, reservationID uuid.UUID) ([]Payment, error) {
	return s.repo.GetPaymentsByReservation(ctx, reservationID)
}

func (s *service) ListPayments(ctx context.Context, query PaymentListQuery) (*PaginatedPayments, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	entries, totalCount, err := s.repo.ListPayments(ctx, query)
	if err != nil {
		return nil, err
	}

	return &PaginatedPayments{
		Payments:   entries,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(query.Limit))),
	}, nil
}

func (s *service) GetStats(ctx context.Context) (*PaymentStats, error) {
	return s.repo.GetPaymentStats(ctx)
}

func (s *service) RequestRefund(ctx context.Context, requestedBy uuid.UUID, req RequestRefundRequest) (*Refund, error) {
	paymentID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment ID: %w", err)
	}

	payment, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != StatusCompleted {
		return nil, ErrPaymentNotRefundable
	}

	refund := &Refund{
		PaymentID:   paymentID,
		Amount:      req.Amount,
		Reason:      req.Reason,
		Status:      RefundRequested,
		RequestedBy: &requestedBy,
	}
	if err := s.repo.CreateRefund(ctx, refund); err != nil {
		return nil, err
	}
	return refund, nil
}

func (s *service) ApproveRefund(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, notes string) (*Refund, error) {
	refund, err := s.repo.GetRefundByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if refund.Status != RefundRequested {
		return nil, ErrRefundAlreadyReviewed
	}

	refund.Status = RefundApproved
	refund.ReviewedBy = &reviewerID
	refund.Notes = notes
	if err := s.repo.UpdateRefund(ctx, refund); err != nil {
		return nil, err
	}
	return refund, nil
}

// ProcessRefund marks an approved refund processed and flips the underlying
// payment to refunded, which removes it from the reservation's paid amount.
func (s *service) ProcessRefund(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID) (*Refund, error) {
	refund, err := s.repo.GetRefundByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if refund.Status != RefundApproved {
		return nil, ErrRefundNotApproved
	}

	if _, err := s.MarkRefunded(ctx, refund.PaymentID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	refund.Status = RefundProcessed
	refund.ReviewedBy = &reviewerID
	refund.ProcessedAt = &now
	if err := s.repo.UpdateRefund(ctx, refund); err != nil {
		return nil, err
	}
	return refund, nil
}

func (s *service) RejectRefund(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, notes string) (*Refund, error) {
	refund, err := s.repo.GetRefundByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if refund.Status != RefundRequested {
		return nil, ErrRefundAlreadyReviewed
	}

	refund.Status = RefundRejected
	refund.ReviewedBy = &reviewerID
	refund.Notes = notes
	if err := s.repo.UpdateRefund(ctx, refund); err != nil {
		return nil, err
	}
	return refund, nil
}

func (s *service) ListRefunds(ctx context.Context, status string) ([]Refund, error) {
	refundStatus := RefundStatus(status)
	if status != "" && !refundStatus.IsValid() {
		return nil, fmt.Errorf("invalid refund status: %s", status)
	}
	return s.repo.ListRefunds(ctx, refundStatus)
}

func (s *service) CreateBankingDetail(ctx context.Context, req BankingDetailRequest) (*BankingDetail, error) {
	detail := &BankingDetail{
		BankName:      req.BankName,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		BranchCode:    req.BranchCode,
		AccountType:   req.AccountType,
		Reference:     req.Reference,
		Active:        true,
	}
	if req.Active != nil {
		detail.Active = *req.Active
	}
	if err := s.repo.CreateBankingDetail(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) UpdateBankingDetail(ctx context.Context, id uuid.UUID, req BankingDetailRequest) (*BankingDetail, error) {
	detail, err := s.repo.GetBankingDetailByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail.BankName = req.BankName
	detail.AccountName = req.AccountName
	detail.AccountNumber = req.AccountNumber
	detail.BranchCode = req.BranchCode
	detail.AccountType = req.AccountType
	detail.Reference = req.Reference
	if req.Active != nil {
		detail.Active = *req.Active
	}

	if err := s.repo.UpdateBankingDetail(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) DeleteBankingDetail(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteBankingDetail(ctx, id)
}

func (s *service) ListBankingDetails(ctx context.Context, activeOnly bool) ([]BankingDetail, error) {
	return s.repo.ListBankingDetails(ctx, activeOnly)
}
