package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanSiey/pppa-management-backend/pkg/logger"
)

// fakeRepo keeps ledger entries, refunds and banking details in memory.
// Transaction passes a nil *gorm.DB through; the Tx methods here never
// touch it.
type fakeRepo struct {
	payments map[uuid.UUID]*Payment
	refunds  map[uuid.UUID]*Refund
	banking  map[uuid.UUID]*BankingDetail
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		payments: make(map[uuid.UUID]*Payment),
		refunds:  make(map[uuid.UUID]*Refund),
		banking:  make(map[uuid.UUID]*BankingDetail),
	}
}

func (r *fakeRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (r *fakeRepo) CreatePaymentTx(tx *gorm.DB, payment *Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	clone := *payment
	r.payments[payment.ID] = &clone
	return nil
}

func (r *fakeRepo) UpdatePaymentTx(tx *gorm.DB, payment *Payment) error {
	if _, ok := r.payments[payment.ID]; !ok {
		return ErrPaymentNotFound
	}
	clone := *payment
	r.payments[payment.ID] = &clone
	return nil
}

func (r *fakeRepo) DeletePaymentTx(tx *gorm.DB, id uuid.UUID) error {
	if _, ok := r.payments[id]; !ok {
		return ErrPaymentNotFound
	}
	delete(r.payments, id)
	return nil
}

func (r *fakeRepo) GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	payment, ok := r.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	clone := *payment
	return &clone, nil
}

func (r *fakeRepo) GetPaymentsByReservation(ctx context.Context, reservationID uuid.UUID) ([]Payment, error) {
	var out []Payment
	for _, payment := range r.payments {
		if payment.ReservationID == reservationID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListPayments(ctx context.Context, query PaymentListQuery) ([]Payment, int64, error) {
	var out []Payment
	for _, payment := range r.payments {
		out = append(out, *payment)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) CreateRefund(ctx context.Context, refund *Refund) error {
	if refund.ID == uuid.Nil {
		refund.ID = uuid.New()
	}
	clone := *refund
	r.refunds[refund.ID] = &clone
	return nil
}

func (r *fakeRepo) GetRefundByID(ctx context.Context, id uuid.UUID) (*Refund, error) {
	refund, ok := r.refunds[id]
	if !ok {
		return nil, ErrRefundNotFound
	}
	clone := *refund
	return &clone, nil
}

func (r *fakeRepo) UpdateRefund(ctx context.Context, refund *Refund) error {
	if _, ok := r.refunds[refund.ID]; !ok {
		return ErrRefundNotFound
	}
	clone := *refund
	r.refunds[refund.ID] = &clone
	return nil
}

func (r *fakeRepo) ListRefunds(ctx context.Context, status RefundStatus) ([]Refund, error) {
	var out []Refund
	for _, refund := range r.refunds {
		if status == "" || refund.Status == status {
			out = append(out, *refund)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateBankingDetail(ctx context.Context, detail *BankingDetail) error {
	if detail.ID == uuid.Nil {
		detail.ID = uuid.New()
	}
	clone := *detail
	r.banking[detail.ID] = &clone
	return nil
}

func (r *fakeRepo) UpdateBankingDetail(ctx context.Context, detail *BankingDetail) error {
	if _, ok := r.banking[detail.ID]; !ok {
		return ErrBankingDetailNotFound
	}
	clone := *detail
	r.banking[detail.ID] = &clone
	return nil
}

func (r *fakeRepo) DeleteBankingDetail(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.banking[id]; !ok {
		return ErrBankingDetailNotFound
	}
	delete(r.banking, id)
	return nil
}

func (r *fakeRepo) GetBankingDetailByID(ctx context.Context, id uuid.UUID) (*BankingDetail, error) {
	detail, ok := r.banking[id]
	if !ok {
		return nil, ErrBankingDetailNotFound
	}
	clone := *detail
	return &clone, nil
}

func (r *fakeRepo) ListBankingDetails(ctx context.Context, activeOnly bool) ([]BankingDetail, error) {
	var out []BankingDetail
	for _, detail := range r.banking {
		if activeOnly && !detail.Active {
			continue
		}
		out = append(out, *detail)
	}
	return out, nil
}

func (r *fakeRepo) GetPaymentStats(ctx context.Context) (*PaymentStats, error) {
	stats := &PaymentStats{ByMethod: make(map[string]MethodStats)}
	for _, payment := range r.payments {
		if !payment.Status.Counted() {
			continue
		}
		entry := stats.ByMethod[payment.Method.String()]
		entry.Count++
		entry.Total += payment.Amount
		stats.ByMethod[payment.Method.String()] = entry
	}
	return stats, nil
}

// fakeReconciler records which reservations were reconciled, in order.
type fakeReconciler struct {
	calls []uuid.UUID
	err   error
}

func (f *fakeReconciler) Reconcile(ctx context.Context, tx *gorm.DB, reservationID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, reservationID)
	return nil
}

func newTestService(repo *fakeRepo, rec *fakeReconciler) Service {
	return NewService(repo, rec, logger.New(), "")
}

func TestRecordPayment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("defaults applied", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		rec := &fakeReconciler{}
		svc := newTestService(repo, rec)

		reservationID := uuid.New()
		payment, err := svc.RecordPayment(ctx, adminID, RecordPaymentRequest{
			ReservationID: reservationID.String(),
			Amount:        350,
		})
		if err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
		if payment.Status != StatusPending {
			t.Fatalf("status = %s, want pending", payment.Status)
		}
		if payment.Method != MethodBankTransfer {
			t.Fatalf("method = %s, want bank_transfer", payment.Method)
		}
		if payment.Currency != "ZAR" {
			t.Fatalf("currency = %s, want ZAR", payment.Currency)
		}
		if payment.PaidAt != nil {
			t.Fatalf("pending payment should not carry a paid_at timestamp")
		}
		if payment.RecordedBy == nil || *payment.RecordedBy != adminID {
			t.Fatalf("recorded_by not set to the recording admin")
		}
		if len(rec.calls) != 1 || rec.calls[0] != reservationID {
			t.Fatalf("reconcile calls = %v, want one for %s", rec.calls, reservationID)
		}
	})

	t.Run("completed payment stamps paid_at", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		rec := &fakeReconciler{}
		svc := newTestService(repo, rec)

		payment, err := svc.RecordPayment(ctx, adminID, RecordPaymentRequest{
			ReservationID: uuid.New().String(),
			Amount:        1000,
			Status:        "completed",
			Method:        "cash",
		})
		if err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
		if payment.Status != StatusCompleted {
			t.Fatalf("status = %s, want completed", payment.Status)
		}
		if payment.PaidAt == nil {
			t.Fatalf("completed payment should carry a paid_at timestamp")
		}
	})

	t.Run("invalid inputs rejected before the ledger is touched", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		rec := &fakeReconciler{}
		svc := newTestService(repo, rec)

		if _, err := svc.RecordPayment(ctx, adminID, RecordPaymentRequest{
			ReservationID: "not-a-uuid",
			Amount:        100,
		}); err == nil {
			t.Fatalf("expected error for malformed reservation ID")
		}
		if _, err := svc.RecordPayment(ctx, adminID, RecordPaymentRequest{
			ReservationID: uuid.New().String(),
			Amount:        100,
			Status:        "settled",
		}); err == nil {
			t.Fatalf("expected error for unknown status")
		}
		if _, err := svc.RecordPayment(ctx, adminID, RecordPaymentRequest{
			ReservationID: uuid.New().String(),
			Amount:        100,
			Method:        "barter",
		}); err == nil {
			t.Fatalf("expected error for unknown method")
		}
		if len(repo.payments) != 0 {
			t.Fatalf("rejected requests must not create ledger entries")
		}
		if len(rec.calls) != 0 {
			t.Fatalf("rejected requests must not reconcile")
		}
	})

	t.Run("reconcile failure rolls the mutation into an error", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		rec := &fakeReconciler{err: errors.New("reconcile failed")}
		svc := newTestService(repo, rec)

		if _, err := svc.RecordPayment(ctx, adminID, RecordPaymentRequest{
			ReservationID: uuid.New().String(),
			Amount:        100,
		}); err == nil {
			t.Fatalf("expected reconcile error to surface")
		}
	})
}

func TestLedgerMutationsReconcile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	adminID := uuid.New()

	setup := func(t *testing.T) (Service, *fakeReconciler, *Payment) {
		t.Helper()
		repo := newFakeRepo()
		rec := &fakeReconciler{}
		svc := newTestService(repo, rec)
		payment, err := svc.RecordPayment(ctx, adminID, RecordPaymentRequest{
			ReservationID: uuid.New().String(),
			Amount:        500,
		})
		if err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
		return svc, rec, payment
	}

	t.Run("mark completed", func(t *testing.T) {
		t.Parallel()
		svc, rec, payment := setup(t)
		updated, err := svc.MarkCompleted(ctx, payment.ID, MarkCompletedRequest{TransactionID: "EFT-2231"})
		if err != nil {
			t.Fatalf("MarkCompleted: %v", err)
		}
		if updated.Status != StatusCompleted || updated.PaidAt == nil {
			t.Fatalf("payment not marked completed: %+v", updated)
		}
		if updated.TransactionID != "EFT-2231" {
			t.Fatalf("transaction ID = %q, want EFT-2231", updated.TransactionID)
		}
		if len(rec.calls) != 2 || rec.calls[1] != payment.ReservationID {
			t.Fatalf("mutation must reconcile its reservation, calls = %v", rec.calls)
		}
	})

	t.Run("mark failed", func(t *testing.T) {
		t.Parallel()
		svc, rec, payment := setup(t)
		updated, err := svc.MarkFailed(ctx, payment.ID)
		if err != nil {
			t.Fatalf("MarkFailed: %v", err)
		}
		if updated.Status != StatusFailed {
			t.Fatalf("status = %s, want failed", updated.Status)
		}
		if len(rec.calls) != 2 {
			t.Fatalf("mutation must reconcile, calls = %v", rec.calls)
		}
	})

	t.Run("mark refunded", func(t *testing.T) {
		t.Parallel()
		svc, rec, payment := setup(t)
		updated, err := svc.MarkRefunded(ctx, payment.ID)
		if err != nil {
			t.Fatalf("MarkRefunded: %v", err)
		}
		if updated.Status != StatusRefunded {
			t.Fatalf("status = %s, want refunded", updated.Status)
		}
		if len(rec.calls) != 2 {
			t.Fatalf("mutation must reconcile, calls = %v", rec.calls)
		}
	})

	t.Run("delete reconciles the orphaned reservation", func(t *testing.T) {
		t.Parallel()
		svc, rec, payment := setup(t)
		if err := svc.DeletePayment(ctx, payment.ID); err != nil {
			t.Fatalf("DeletePayment: %v", err)
		}
		if _, err := svc.GetPayment(ctx, payment.ID); !errors.Is(err, ErrPaymentNotFound) {
			t.Fatalf("payment still readable after delete: %v", err)
		}
		if len(rec.calls) != 2 || rec.calls[1] != payment.ReservationID {
			t.Fatalf("delete must reconcile the reservation it belonged to, calls = %v", rec.calls)
		}
	})
}

func TestRefundWorkflow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	adminID := uuid.New()
	reviewerID := uuid.New()

	seedCompleted := func(t *testing.T) (Service, *fakeReconciler, *Payment) {
		t.Helper()
		repo := newFakeRepo()
		rec := &fakeReconciler{}
		svc := newTestService(repo, rec)
		payment, err := svc.RecordPayment(ctx, adminID, RecordPaymentRequest{
			ReservationID: uuid.New().String(),
			Amount:        850,
			Status:        "completed",
		})
		if err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
		return svc, rec, payment
	}

	t.Run("only completed payments are refundable", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		rec := &fakeReconciler{}
		svc := newTestService(repo, rec)
		payment, err := svc.RecordPayment(ctx, adminID, RecordPaymentRequest{
			ReservationID: uuid.New().String(),
			Amount:        850,
		})
		if err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
		_, err = svc.RequestRefund(ctx, adminID, RequestRefundRequest{
			PaymentID: payment.ID.String(),
			Amount:    850,
		})
		if !errors.Is(err, ErrPaymentNotRefundable) {
			t.Fatalf("err = %v, want ErrPaymentNotRefundable", err)
		}
	})

	t.Run("approve then process flips the payment to refunded", func(t *testing.T) {
		t.Parallel()
		svc, rec, payment := seedCompleted(t)

		refund, err := svc.RequestRefund(ctx, adminID, RequestRefundRequest{
			PaymentID: payment.ID.String(),
			Amount:    850,
			Reason:    "event postponed",
		})
		if err != nil {
			t.Fatalf("RequestRefund: %v", err)
		}
		if refund.Status != RefundRequested {
			t.Fatalf("refund status = %s, want requested", refund.Status)
		}

		approved, err := svc.ApproveRefund(ctx, refund.ID, reviewerID, "ok to pay out")
		if err != nil {
			t.Fatalf("ApproveRefund: %v", err)
		}
		if approved.Status != RefundApproved || approved.ReviewedBy == nil || *approved.ReviewedBy != reviewerID {
			t.Fatalf("approval not recorded: %+v", approved)
		}

		processed, err := svc.ProcessRefund(ctx, refund.ID, reviewerID)
		if err != nil {
			t.Fatalf("ProcessRefund: %v", err)
		}
		if processed.Status != RefundProcessed || processed.ProcessedAt == nil {
			t.Fatalf("refund not processed: %+v", processed)
		}

		flipped, err := svc.GetPayment(ctx, payment.ID)
		if err != nil {
			t.Fatalf("GetPayment: %v", err)
		}
		if flipped.Status != StatusRefunded {
			t.Fatalf("payment status = %s, want refunded", flipped.Status)
		}
		// One reconcile for the original record, one for the refund flip;
		// the refund row itself never triggers reconciliation.
		if len(rec.calls) != 2 {
			t.Fatalf("reconcile calls = %v, want exactly 2", rec.calls)
		}
	})

	t.Run("processing requires approval first", func(t *testing.T) {
		t.Parallel()
		svc, _, payment := seedCompleted(t)
		refund, err := svc.RequestRefund(ctx, adminID, RequestRefundRequest{
			PaymentID: payment.ID.String(),
			Amount:    850,
		})
		if err != nil {
			t.Fatalf("RequestRefund: %v", err)
		}
		if _, err := svc.ProcessRefund(ctx, refund.ID, reviewerID); !errors.Is(err, ErrRefundNotApproved) {
			t.Fatalf("err = %v, want ErrRefundNotApproved", err)
		}
	})

	t.Run("a refund can only be reviewed once", func(t *testing.T) {
		t.Parallel()
		svc, _, payment := seedCompleted(t)
		refund, err := svc.RequestRefund(ctx, adminID, RequestRefundRequest{
			PaymentID: payment.ID.String(),
			Amount:    850,
		})
		if err != nil {
			t.Fatalf("RequestRefund: %v", err)
		}
		if _, err := svc.RejectRefund(ctx, refund.ID, reviewerID, "duplicate request"); err != nil {
			t.Fatalf("RejectRefund: %v", err)
		}
		if _, err := svc.ApproveRefund(ctx, refund.ID, reviewerID, ""); !errors.Is(err, ErrRefundAlreadyReviewed) {
			t.Fatalf("approve after reject: err = %v, want ErrRefundAlreadyReviewed", err)
		}
		if _, err := svc.RejectRefund(ctx, refund.ID, reviewerID, ""); !errors.Is(err, ErrRefundAlreadyReviewed) {
			t.Fatalf("second reject: err = %v, want ErrRefundAlreadyReviewed", err)
		}
	})

	t.Run("list filters by status and rejects unknown ones", func(t *testing.T) {
		t.Parallel()
		svc, _, payment := seedCompleted(t)
		if _, err := svc.RequestRefund(ctx, adminID, RequestRefundRequest{
			PaymentID: payment.ID.String(),
			Amount:    400,
		}); err != nil {
			t.Fatalf("RequestRefund: %v", err)
		}
		requested, err := svc.ListRefunds(ctx, "requested")
		if err != nil {
			t.Fatalf("ListRefunds: %v", err)
		}
		if len(requested) != 1 {
			t.Fatalf("requested refunds = %d, want 1", len(requested))
		}
		processed, err := svc.ListRefunds(ctx, "processed")
		if err != nil {
			t.Fatalf("ListRefunds: %v", err)
		}
		if len(processed) != 0 {
			t.Fatalf("processed refunds = %d, want 0", len(processed))
		}
		if _, err := svc.ListRefunds(ctx, "archived"); err == nil {
			t.Fatalf("expected error for unknown refund status")
		}
	})
}

func TestBankingDetails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeReconciler{})

	detail, err := svc.CreateBankingDetail(ctx, BankingDetailRequest{
		BankName:      "FNB",
		AccountName:   "Parliament Plating (Pty) Ltd",
		AccountNumber: "62845591234",
		BranchCode:    "250655",
	})
	if err != nil {
		t.Fatalf("CreateBankingDetail: %v", err)
	}
	if !detail.Active {
		t.Fatalf("new banking details default to active")
	}

	inactive := false
	if _, err := svc.UpdateBankingDetail(ctx, detail.ID, BankingDetailRequest{
		BankName:      "FNB",
		AccountName:   "Parliament Plating (Pty) Ltd",
		AccountNumber: "62845591234",
		BranchCode:    "250655",
		Active:        &inactive,
	}); err != nil {
		t.Fatalf("UpdateBankingDetail: %v", err)
	}

	active, err := svc.ListBankingDetails(ctx, true)
	if err != nil {
		t.Fatalf("ListBankingDetails: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active-only list = %d entries, want 0 after deactivation", len(active))
	}
	all, err := svc.ListBankingDetails(ctx, false)
	if err != nil {
		t.Fatalf("ListBankingDetails: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("full list = %d entries, want 1", len(all))
	}

	if err := svc.DeleteBankingDetail(ctx, detail.ID); err != nil {
		t.Fatalf("DeleteBankingDetail: %v", err)
	}
	if err := svc.DeleteBankingDetail(ctx, detail.ID); !errors.Is(err, ErrBankingDetailNotFound) {
		t.Fatalf("double delete: err = %v, want ErrBankingDetailNotFound", err)
	}
}

func TestListPayments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeReconciler{})
	adminID := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordPayment(ctx, adminID, RecordPaymentRequest{
			ReservationID: uuid.New().String(),
			Amount:        100,
		}); err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
	}

	page, err := svc.ListPayments(ctx, PaymentListQuery{})
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if page.Page != 1 || page.Limit != 10 {
		t.Fatalf("pagination defaults = page %d limit %d, want 1/10", page.Page, page.Limit)
	}
	if page.TotalCount != 3 || page.TotalPages != 1 {
		t.Fatalf("totals = %d entries over %d pages, want 3 over 1", page.TotalCount, page.TotalPages)
	}
}
