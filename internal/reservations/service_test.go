package reservations

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanSiey/pppa-management-backend/internal/events"
	"github.com/hanSiey/pppa-management-backend/internal/payments"
	"github.com/hanSiey/pppa-management-backend/pkg/logger"
)

// fakeRepo is an in-memory Repository. Capacity checks mirror the SQL path:
// non-cancelled reservations hold inventory.
type fakeRepo struct {
	ticketTypes  map[uuid.UUID]events.TicketType
	reservations map[uuid.UUID]*Reservation
	proofs       map[uuid.UUID]*PaymentProof
	ledger       map[uuid.UUID][]payments.Payment

	reconciled []uuid.UUID
}

func newFakeRepo(ticketTypes ...events.TicketType) *fakeRepo {
	repo := &fakeRepo{
		ticketTypes:  make(map[uuid.UUID]events.TicketType),
		reservations: make(map[uuid.UUID]*Reservation),
		proofs:       make(map[uuid.UUID]*PaymentProof),
		ledger:       make(map[uuid.UUID][]payments.Payment),
	}
	for _, tt := range ticketTypes {
		repo.ticketTypes[tt.ID] = tt
	}
	return repo
}

func (f *fakeRepo) CreateWithCapacityCheck(ctx context.Context, reservation *Reservation) error {
	tt, ok := f.ticketTypes[reservation.TicketTypeID]
	if !ok {
		return ErrTicketTypeNotFound
	}

	var reserved int
	for _, existing := range f.reservations {
		if existing.TicketTypeID == reservation.TicketTypeID && existing.Status.CountsAgainstCapacity() {
			reserved += existing.Quantity
		}
	}
	if reserved+reservation.Quantity > tt.QuantityAvailable {
		return ErrInsufficientInventory
	}

	reservation.ID = uuid.New()
	reservation.TotalAmount = tt.Price * float64(reservation.Quantity)
	reservation.EventID = tt.EventID
	reservation.ReservedAt = time.Now().UTC()
	f.reservations[reservation.ID] = reservation
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	reservation, ok := f.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	copied := *reservation
	return &copied, nil
}

func (f *fakeRepo) GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepo) GetByReferenceCode(ctx context.Context, referenceCode string) (*Reservation, error) {
	for _, reservation := range f.reservations {
		if reservation.ReferenceCode == referenceCode {
			copied := *reservation
			return &copied, nil
		}
	}
	return nil, ErrReservationNotFound
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, cancelledAt *time.Time) error {
	reservation, ok := f.reservations[id]
	if !ok {
		return ErrReservationNotFound
	}
	reservation.Status = status
	reservation.CancelledAt = cancelledAt
	return nil
}

func (f *fakeRepo) GetUserReservations(ctx context.Context, userID uuid.UUID, query ReservationListQuery) ([]Reservation, int64, error) {
	var result []Reservation
	for _, reservation := range f.reservations {
		if reservation.UserID != nil && *reservation.UserID == userID {
			result = append(result, *reservation)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeRepo) GetAllReservations(ctx context.Context, query ReservationListQuery) ([]Reservation, int64, error) {
	var result []Reservation
	for _, reservation := range f.reservations {
		result = append(result, *reservation)
	}
	return result, int64(len(result)), nil
}

func (f *fakeRepo) CreateProof(ctx context.Context, proof *PaymentProof) error {
	reservation, ok := f.reservations[proof.ReservationID]
	if !ok {
		return ErrReservationNotFound
	}
	proof.ID = uuid.New()
	f.proofs[proof.ID] = proof
	// Submission always forces the reservation into review
	reservation.Status = StatusPending
	return nil
}

func (f *fakeRepo) GetProofByID(ctx context.Context, id uuid.UUID) (*PaymentProof, error) {
	proof, ok := f.proofs[id]
	if !ok {
		return nil, ErrProofNotFound
	}
	copied := *proof
	return &copied, nil
}

func (f *fakeRepo) GetProofsByReservation(ctx context.Context, reservationID uuid.UUID) ([]PaymentProof, error) {
	var result []PaymentProof
	for _, proof := range f.proofs {
		if proof.ReservationID == reservationID {
			result = append(result, *proof)
		}
	}
	return result, nil
}

func (f *fakeRepo) ApproveProofTx(ctx context.Context, proofID uuid.UUID, reviewerID uuid.UUID, entry *payments.Payment) (*Reservation, error) {
	proof, ok := f.proofs[proofID]
	if !ok || proof.Status != ProofPending {
		return nil, ErrProofNotFound
	}
	proof.Status = ProofApproved
	proof.ReviewedBy = &reviewerID

	f.ledger[proof.ReservationID] = append(f.ledger[proof.ReservationID], *entry)
	if err := f.ReconcileTx(ctx, nil, proof.ReservationID); err != nil {
		return nil, err
	}
	return f.GetByID(ctx, proof.ReservationID)
}

func (f *fakeRepo) RejectProofTx(ctx context.Context, proofID uuid.UUID, reviewerID uuid.UUID, notes string) (*Reservation, error) {
	proof, ok := f.proofs[proofID]
	if !ok || proof.Status != ProofPending {
		return nil, ErrProofNotFound
	}
	proof.Status = ProofRejected
	proof.ReviewedBy = &reviewerID
	proof.ReviewNotes = notes

	reservation := f.reservations[proof.ReservationID]
	if reservation.Status == StatusPending {
		reservation.Status = StatusReserved
	}
	return f.GetByID(ctx, proof.ReservationID)
}

func (f *fakeRepo) ReconcileTx(ctx context.Context, tx *gorm.DB, reservationID uuid.UUID) error {
	reservation, ok := f.reservations[reservationID]
	if !ok {
		return ErrReservationNotFound
	}
	f.reconciled = append(f.reconciled, reservationID)
	reservation.AmountPaid, reservation.Status = Reconcile(reservation.Status, reservation.TotalAmount, f.ledger[reservationID])
	return nil
}

func (f *fakeRepo) VerifyLedger(ctx context.Context, batchSize int) ([]LedgerInconsistency, error) {
	var inconsistencies []LedgerInconsistency
	for id, reservation := range f.reservations {
		amount, status := Reconcile(reservation.Status, reservation.TotalAmount, f.ledger[id])
		if amount != reservation.AmountPaid || status != reservation.Status {
			inconsistencies = append(inconsistencies, LedgerInconsistency{
				ReservationID: id,
				ReferenceCode: reservation.ReferenceCode,
				StoredAmount:  reservation.AmountPaid,
				LedgerAmount:  amount,
				StoredStatus:  reservation.Status,
				LedgerStatus:  status,
			})
			if err := f.ReconcileTx(ctx, nil, id); err != nil {
				return inconsistencies, err
			}
		}
	}
	return inconsistencies, nil
}

func (f *fakeRepo) CancelExpired(ctx context.Context, now time.Time, batchSize int) (int64, error) {
	var cancelled int64
	for _, reservation := range f.reservations {
		if reservation.Status == StatusReserved && reservation.AmountPaid == 0 && reservation.ExpiresAt.Before(now) {
			reservation.Status = StatusCancelled
			cancelled++
		}
	}
	return cancelled, nil
}

// fakeStorage records saves and deletes in memory.
type fakeStorage struct {
	saved   map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string][]byte)}
}

func (f *fakeStorage) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ref := "proofs/" + uuid.New().String()
	f.saved[ref] = data
	return ref, nil
}

func (f *fakeStorage) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	data, ok := f.saved[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) Delete(ctx context.Context, ref string) error {
	delete(f.saved, ref)
	f.deleted = append(f.deleted, ref)
	return nil
}

type fakeNotifier struct {
	notices []Notice
	err     error
}

func (f *fakeNotifier) Notify(ctx context.Context, notice Notice) error {
	f.notices = append(f.notices, notice)
	return f.err
}

var referenceCodePattern = regexp.MustCompile(`^[0-9A-F]{12}$`)

func newTestService(repo Repository) (Service, *fakeStorage, *fakeNotifier) {
	store := newFakeStorage()
	notifier := &fakeNotifier{}
	svc := NewService(repo, store, logger.New(), 24*time.Hour, "")
	svc.SetNotifier(notifier)
	return svc, store, notifier
}

func demoTicketType(price, fee float64, quantity int) events.TicketType {
	return events.TicketType{
		ID:                uuid.New(),
		EventID:           uuid.New(),
		Name:              "Standard",
		Price:             price,
		ReservationFee:    fee,
		QuantityAvailable: quantity,
	}
}

func TestCreateReservation(t *testing.T) {
	t.Parallel()

	t.Run("guest reservation with reference code and hold expiry", func(t *testing.T) {
		tt := demoTicketType(500, 150, 10)
		repo := newFakeRepo(tt)
		svc, _, notifier := newTestService(repo)

		resp, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     2,
			GuestName:    "Thandi Nkosi",
			GuestEmail:   "thandi@example.com",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !referenceCodePattern.MatchString(resp.ReferenceCode) {
			t.Fatalf("expected 12 uppercase hex chars, got %q", resp.ReferenceCode)
		}
		if resp.Status != StatusReserved {
			t.Fatalf("expected status %s, got %s", StatusReserved, resp.Status)
		}
		if resp.TotalAmount != 1000 {
			t.Fatalf("expected total 1000, got %v", resp.TotalAmount)
		}
		if len(notifier.notices) != 1 || notifier.notices[0].Type != NoticeReservationConfirmation {
			t.Fatalf("expected a confirmation notice, got %+v", notifier.notices)
		}
	})

	t.Run("guest without email is rejected", func(t *testing.T) {
		tt := demoTicketType(500, 150, 10)
		repo := newFakeRepo(tt)
		svc, _, _ := newTestService(repo)

		_, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     1,
		})
		if !errors.Is(err, ErrGuestEmailRequired) {
			t.Fatalf("expected ErrGuestEmailRequired, got %v", err)
		}
	})

	t.Run("account email overrides guest email", func(t *testing.T) {
		tt := demoTicketType(500, 150, 10)
		repo := newFakeRepo(tt)
		svc, _, _ := newTestService(repo)

		userID := uuid.New()
		resp, err := svc.CreateReservation(context.Background(), &userID, "account@example.com", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     1,
			GuestEmail:   "spoofed@example.com",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		stored := repo.reservations[resp.ID]
		if stored.GuestEmail != "account@example.com" {
			t.Fatalf("expected account email to win, got %q", stored.GuestEmail)
		}
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		tt := demoTicketType(500, 150, 10)
		repo := newFakeRepo(tt)
		svc, _, _ := newTestService(repo)

		_, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     0,
			GuestEmail:   "guest@example.com",
		})
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("oversell is rejected at the boundary", func(t *testing.T) {
		tt := demoTicketType(500, 150, 3)
		repo := newFakeRepo(tt)
		svc, _, _ := newTestService(repo)

		if _, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     3,
			GuestEmail:   "first@example.com",
		}); err != nil {
			t.Fatalf("expected the full allocation to succeed, got %v", err)
		}

		_, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     1,
			GuestEmail:   "second@example.com",
		})
		if !errors.Is(err, ErrInsufficientInventory) {
			t.Fatalf("expected ErrInsufficientInventory, got %v", err)
		}
	})

	t.Run("cancelled reservations release inventory", func(t *testing.T) {
		tt := demoTicketType(500, 150, 3)
		repo := newFakeRepo(tt)
		svc, _, _ := newTestService(repo)

		first, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     3,
			GuestEmail:   "first@example.com",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := svc.CancelReservation(context.Background(), first.ID, nil, true); err != nil {
			t.Fatalf("expected cancel to succeed, got %v", err)
		}

		if _, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     3,
			GuestEmail:   "second@example.com",
		}); err != nil {
			t.Fatalf("expected released inventory to be available, got %v", err)
		}
	})
}

func TestSubmitPaymentProof(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (Service, *fakeRepo, *fakeStorage, string) {
		tt := demoTicketType(500, 150, 10)
		repo := newFakeRepo(tt)
		svc, store, _ := newTestService(repo)

		resp, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     2,
			GuestEmail:   "guest@example.com",
		})
		if err != nil {
			t.Fatalf("failed to create reservation: %v", err)
		}
		return svc, repo, store, resp.ReferenceCode
	}

	upload := func() ProofUpload {
		return ProofUpload{
			File:           strings.NewReader("fake image bytes"),
			Filename:       "eft-proof.jpg",
			ContentType:    "image/jpeg",
			SizeBytes:      16,
			DeclaredAmount: 300,
		}
	}

	t.Run("submission stores the file and forces pending", func(t *testing.T) {
		svc, repo, store, ref := setup(t)

		proof, err := svc.SubmitPaymentProof(context.Background(), ref, nil, upload())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if proof.Status != ProofPending {
			t.Fatalf("expected proof status %s, got %s", ProofPending, proof.Status)
		}
		if len(store.saved) != 1 {
			t.Fatalf("expected one stored file, got %d", len(store.saved))
		}

		reservation, _ := repo.GetByReferenceCode(context.Background(), ref)
		if reservation.Status != StatusPending {
			t.Fatalf("expected reservation forced to %s, got %s", StatusPending, reservation.Status)
		}
	})

	t.Run("resubmission after rejection forces pending again", func(t *testing.T) {
		svc, repo, _, ref := setup(t)

		first, err := svc.SubmitPaymentProof(context.Background(), ref, nil, upload())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := svc.RejectProof(context.Background(), first.ID, uuid.New(), "unreadable"); err != nil {
			t.Fatalf("expected reject to succeed, got %v", err)
		}

		reservation, _ := repo.GetByReferenceCode(context.Background(), ref)
		if reservation.Status != StatusReserved {
			t.Fatalf("expected rejection to revert to %s, got %s", StatusReserved, reservation.Status)
		}

		if _, err := svc.SubmitPaymentProof(context.Background(), ref, nil, upload()); err != nil {
			t.Fatalf("expected resubmission to succeed, got %v", err)
		}
		reservation, _ = repo.GetByReferenceCode(context.Background(), ref)
		if reservation.Status != StatusPending {
			t.Fatalf("expected resubmission to force %s, got %s", StatusPending, reservation.Status)
		}
	})

	t.Run("submission drags a completed reservation back to pending", func(t *testing.T) {
		svc, repo, _, ref := setup(t)

		full := upload()
		full.DeclaredAmount = 1000
		proof, err := svc.SubmitPaymentProof(context.Background(), ref, nil, full)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := svc.ApproveProof(context.Background(), proof.ID, uuid.New()); err != nil {
			t.Fatalf("expected approve to succeed, got %v", err)
		}

		reservation, _ := repo.GetByReferenceCode(context.Background(), ref)
		if reservation.Status != StatusCompleted {
			t.Fatalf("expected full payment to complete, got %s", reservation.Status)
		}

		if _, err := svc.SubmitPaymentProof(context.Background(), ref, nil, upload()); err != nil {
			t.Fatalf("expected submission against a completed reservation to succeed, got %v", err)
		}
		reservation, _ = repo.GetByReferenceCode(context.Background(), ref)
		if reservation.Status != StatusPending {
			t.Fatalf("expected reservation forced to %s, got %s", StatusPending, reservation.Status)
		}
	})

	t.Run("reference lookup is case and whitespace insensitive", func(t *testing.T) {
		svc, _, _, ref := setup(t)

		if _, err := svc.SubmitPaymentProof(context.Background(), "  "+strings.ToLower(ref)+" ", nil, upload()); err != nil {
			t.Fatalf("expected normalized lookup to succeed, got %v", err)
		}
	})

	t.Run("missing file is rejected", func(t *testing.T) {
		svc, _, _, ref := setup(t)

		bad := upload()
		bad.File = nil
		if _, err := svc.SubmitPaymentProof(context.Background(), ref, nil, bad); !errors.Is(err, ErrMissingProofFile) {
			t.Fatalf("expected ErrMissingProofFile, got %v", err)
		}
	})

	t.Run("non-positive declared amount is rejected", func(t *testing.T) {
		svc, _, _, ref := setup(t)

		bad := upload()
		bad.DeclaredAmount = 0
		if _, err := svc.SubmitPaymentProof(context.Background(), ref, nil, bad); !errors.Is(err, ErrInvalidProofAmount) {
			t.Fatalf("expected ErrInvalidProofAmount, got %v", err)
		}
	})
}

func TestProofReview(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (Service, *fakeRepo, *fakeNotifier, uuid.UUID, string) {
		tt := demoTicketType(500, 150, 10)
		repo := newFakeRepo(tt)
		svc, _, notifier := newTestService(repo)

		resp, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     2,
			GuestEmail:   "guest@example.com",
		})
		if err != nil {
			t.Fatalf("failed to create reservation: %v", err)
		}

		proof, err := svc.SubmitPaymentProof(context.Background(), resp.ReferenceCode, nil, ProofUpload{
			File:           strings.NewReader("proof"),
			Filename:       "proof.pdf",
			ContentType:    "application/pdf",
			SizeBytes:      5,
			DeclaredAmount: 300,
		})
		if err != nil {
			t.Fatalf("failed to submit proof: %v", err)
		}
		notifier.notices = nil

		return svc, repo, notifier, proof.ID, resp.ReferenceCode
	}

	t.Run("approval writes a ledger entry and reconciles", func(t *testing.T) {
		svc, repo, notifier, proofID, ref := setup(t)

		resp, err := svc.ApproveProof(context.Background(), proofID, uuid.New())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if resp.Status != StatusConfirmed {
			t.Fatalf("expected partial payment to confirm, got %s", resp.Status)
		}
		if resp.AmountPaid != 300 {
			t.Fatalf("expected amount paid 300, got %v", resp.AmountPaid)
		}

		reservation, _ := repo.GetByReferenceCode(context.Background(), ref)
		entries := repo.ledger[reservation.ID]
		if len(entries) != 1 {
			t.Fatalf("expected one ledger entry, got %d", len(entries))
		}
		if entries[0].Status != payments.StatusCompleted {
			t.Fatalf("expected a completed entry, got %s", entries[0].Status)
		}
		if !strings.HasPrefix(entries[0].TransactionID, "PROOF-") {
			t.Fatalf("expected a proof transaction reference, got %q", entries[0].TransactionID)
		}

		if len(notifier.notices) != 1 || notifier.notices[0].Type != NoticePaymentReceived {
			t.Fatalf("expected a payment received notice, got %+v", notifier.notices)
		}
	})

	t.Run("full declared amount completes the reservation", func(t *testing.T) {
		tt := demoTicketType(500, 150, 10)
		repo := newFakeRepo(tt)
		svc, _, _ := newTestService(repo)

		resp, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     1,
			GuestEmail:   "guest@example.com",
		})
		if err != nil {
			t.Fatalf("failed to create reservation: %v", err)
		}
		proof, err := svc.SubmitPaymentProof(context.Background(), resp.ReferenceCode, nil, ProofUpload{
			File:           strings.NewReader("proof"),
			Filename:       "proof.pdf",
			ContentType:    "application/pdf",
			SizeBytes:      5,
			DeclaredAmount: 500,
		})
		if err != nil {
			t.Fatalf("failed to submit proof: %v", err)
		}

		approved, err := svc.ApproveProof(context.Background(), proof.ID, uuid.New())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if approved.Status != StatusCompleted {
			t.Fatalf("expected status %s, got %s", StatusCompleted, approved.Status)
		}
	})

	t.Run("ledger entry carries the configured currency", func(t *testing.T) {
		tt := demoTicketType(500, 150, 10)
		repo := newFakeRepo(tt)
		svc := NewService(repo, newFakeStorage(), logger.New(), 24*time.Hour, "USD")

		resp, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     1,
			GuestEmail:   "guest@example.com",
		})
		if err != nil {
			t.Fatalf("failed to create reservation: %v", err)
		}
		proof, err := svc.SubmitPaymentProof(context.Background(), resp.ReferenceCode, nil, ProofUpload{
			File:           strings.NewReader("proof"),
			Filename:       "proof.pdf",
			ContentType:    "application/pdf",
			SizeBytes:      5,
			DeclaredAmount: 200,
		})
		if err != nil {
			t.Fatalf("failed to submit proof: %v", err)
		}
		if _, err := svc.ApproveProof(context.Background(), proof.ID, uuid.New()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		reservation, _ := repo.GetByReferenceCode(context.Background(), resp.ReferenceCode)
		entries := repo.ledger[reservation.ID]
		if len(entries) != 1 {
			t.Fatalf("expected one ledger entry, got %d", len(entries))
		}
		if entries[0].Currency != "USD" {
			t.Fatalf("expected currency USD, got %q", entries[0].Currency)
		}
	})

	t.Run("double review is rejected", func(t *testing.T) {
		svc, _, _, proofID, _ := setup(t)

		if _, err := svc.ApproveProof(context.Background(), proofID, uuid.New()); err != nil {
			t.Fatalf("first approval failed: %v", err)
		}
		if _, err := svc.ApproveProof(context.Background(), proofID, uuid.New()); !errors.Is(err, ErrProofAlreadyReviewed) {
			t.Fatalf("expected ErrProofAlreadyReviewed, got %v", err)
		}
		if _, err := svc.RejectProof(context.Background(), proofID, uuid.New(), "late"); !errors.Is(err, ErrProofAlreadyReviewed) {
			t.Fatalf("expected ErrProofAlreadyReviewed on reject, got %v", err)
		}
	})

	t.Run("rejection does not touch an already-confirmed reservation", func(t *testing.T) {
		svc, repo, _, firstProofID, ref := setup(t)

		// Approve the first proof so the reservation is confirmed, then
		// submit and reject a second one. The rejection must not demote the
		// reservation back to reserved.
		if _, err := svc.ApproveProof(context.Background(), firstProofID, uuid.New()); err != nil {
			t.Fatalf("approval failed: %v", err)
		}

		second, err := svc.SubmitPaymentProof(context.Background(), ref, nil, ProofUpload{
			File:           strings.NewReader("proof"),
			Filename:       "second.pdf",
			ContentType:    "application/pdf",
			SizeBytes:      5,
			DeclaredAmount: 100,
		})
		if err != nil {
			t.Fatalf("failed to submit second proof: %v", err)
		}

		// Reconciling after the second submission restores confirmed from
		// pending; simulate that staff corrected the status out of band.
		reservation, _ := repo.GetByReferenceCode(context.Background(), ref)
		repo.reservations[reservation.ID].Status = StatusConfirmed

		resp, err := svc.RejectProof(context.Background(), second.ID, uuid.New(), "duplicate")
		if err != nil {
			t.Fatalf("expected reject to succeed, got %v", err)
		}
		if resp.Status != StatusConfirmed {
			t.Fatalf("expected status to stay %s, got %s", StatusConfirmed, resp.Status)
		}
	})
}

func TestCancelAndAttend(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (Service, *fakeRepo, uuid.UUID) {
		tt := demoTicketType(500, 150, 10)
		repo := newFakeRepo(tt)
		svc, _, _ := newTestService(repo)

		userID := uuid.New()
		resp, err := svc.CreateReservation(context.Background(), &userID, "user@example.com", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     1,
		})
		if err != nil {
			t.Fatalf("failed to create reservation: %v", err)
		}
		return svc, repo, resp.ID
	}

	t.Run("owner can cancel", func(t *testing.T) {
		svc, repo, id := setup(t)
		owner := *repo.reservations[id].UserID

		resp, err := svc.CancelReservation(context.Background(), id, &owner, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Status != StatusCancelled {
			t.Fatalf("expected status %s, got %s", StatusCancelled, resp.Status)
		}
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		svc, _, id := setup(t)
		stranger := uuid.New()

		if _, err := svc.CancelReservation(context.Background(), id, &stranger, false); !errors.Is(err, ErrAccessDenied) {
			t.Fatalf("expected ErrAccessDenied, got %v", err)
		}
	})

	t.Run("terminal reservations cannot be cancelled again", func(t *testing.T) {
		svc, _, id := setup(t)

		if _, err := svc.CancelReservation(context.Background(), id, nil, true); err != nil {
			t.Fatalf("first cancel failed: %v", err)
		}
		if _, err := svc.CancelReservation(context.Background(), id, nil, true); !errors.Is(err, ErrNotCancellable) {
			t.Fatalf("expected ErrNotCancellable, got %v", err)
		}
	})

	t.Run("only paid reservations can be checked in", func(t *testing.T) {
		svc, repo, id := setup(t)

		if _, err := svc.MarkAttended(context.Background(), id); !errors.Is(err, ErrNotAttendable) {
			t.Fatalf("expected ErrNotAttendable for unpaid, got %v", err)
		}

		repo.reservations[id].Status = StatusConfirmed
		resp, err := svc.MarkAttended(context.Background(), id)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Status != StatusAttended {
			t.Fatalf("expected status %s, got %s", StatusAttended, resp.Status)
		}
	})
}

func TestVerifyLedgerAndExpiry(t *testing.T) {
	t.Parallel()

	t.Run("drifted totals are reported and corrected", func(t *testing.T) {
		tt := demoTicketType(500, 150, 10)
		repo := newFakeRepo(tt)
		svc, _, _ := newTestService(repo)

		resp, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     1,
			GuestEmail:   "guest@example.com",
		})
		if err != nil {
			t.Fatalf("failed to create reservation: %v", err)
		}
		id := resp.ID

		// Ledger says 500, stored row says 0: the write-back was lost.
		repo.ledger[id] = []payments.Payment{{Amount: 500, Status: payments.StatusCompleted}}

		inconsistencies, err := svc.VerifyLedger(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(inconsistencies) != 1 {
			t.Fatalf("expected one inconsistency, got %d", len(inconsistencies))
		}
		if inconsistencies[0].LedgerAmount != 500 || inconsistencies[0].StoredAmount != 0 {
			t.Fatalf("unexpected inconsistency: %+v", inconsistencies[0])
		}

		if repo.reservations[id].AmountPaid != 500 || repo.reservations[id].Status != StatusCompleted {
			t.Fatalf("expected correction to 500/%s, got %v/%s", StatusCompleted, repo.reservations[id].AmountPaid, repo.reservations[id].Status)
		}

		// A second pass finds nothing.
		inconsistencies, err = svc.VerifyLedger(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(inconsistencies) != 0 {
			t.Fatalf("expected a clean second pass, got %d", len(inconsistencies))
		}
	})

	t.Run("only unpaid expired reservations are swept", func(t *testing.T) {
		tt := demoTicketType(500, 150, 10)
		repo := newFakeRepo(tt)
		svc, _, _ := newTestService(repo)

		expired, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     1,
			GuestEmail:   "expired@example.com",
		})
		if err != nil {
			t.Fatalf("failed to create reservation: %v", err)
		}
		paid, err := svc.CreateReservation(context.Background(), nil, "", CreateReservationRequest{
			TicketTypeID: tt.ID.String(),
			Quantity:     1,
			GuestEmail:   "paid@example.com",
		})
		if err != nil {
			t.Fatalf("failed to create reservation: %v", err)
		}

		past := time.Now().UTC().Add(-48 * time.Hour)
		repo.reservations[expired.ID].ExpiresAt = past
		paidRes := repo.reservations[paid.ID]
		paidRes.ExpiresAt = past
		paidRes.AmountPaid = 100
		paidRes.Status = StatusConfirmed

		cancelled, err := svc.CancelExpired(context.Background(), 100)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cancelled != 1 {
			t.Fatalf("expected one cancellation, got %d", cancelled)
		}
		if repo.reservations[expired.ID].Status != StatusCancelled {
			t.Fatalf("expected expired reservation cancelled")
		}
		if paidRes.Status != StatusConfirmed {
			t.Fatalf("expected paid reservation untouched, got %s", paidRes.Status)
		}
	})
}
