package reservations

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hanSiey/pppa-management-backend/internal/payments"
	"github.com/hanSiey/pppa-management-backend/internal/shared/storage"
	"github.com/hanSiey/pppa-management-backend/pkg/logger"
)

var (
	ErrGuestEmailRequired   = errors.New("guest email is required for reservations without an account")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrMissingProofFile     = errors.New("payment proof file is required")
	ErrInvalidProofAmount   = errors.New("declared amount must be greater than zero")
	ErrProofAlreadyReviewed = errors.New("payment proof has already been reviewed")
	ErrNotCancellable       = errors.New("reservation can no longer be cancelled")
	ErrNotAttendable        = errors.New("reservation must be confirmed or completed to check in")
	ErrAccessDenied         = errors.New("reservation does not belong to this user")
)

// Notice is the flat payload handed to the notifier. It carries everything a
// delivery channel needs so the notifications pipeline never reads back from
// the reservation store.
type Notice struct {
	Type               string
	ReservationID      uuid.UUID
	ReferenceCode      string
	RecipientEmail     string
	RecipientName      string
	EventTitle         string
	Quantity           int
	TotalAmount        float64
	AmountPaid         float64
	OutstandingBalance float64
	Status             string
}

const (
	NoticeReservationConfirmation = "reservation_confirmation"
	NoticePaymentReceived         = "payment_received"
	NoticePaymentReminder         = "payment_reminder"
)

// Notifier delivers reservation lifecycle notifications. Implementations
// must return quickly; delivery failures are logged by the implementation
// and never surfaced to the guest-facing flow.
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// UserDirectory resolves account holder details. Implemented by the auth
// package; an interface here keeps the import direction one-way.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (email, firstName, lastName string, err error)
}

// ProofUpload is the validated file handed to SubmitPaymentProof. The HTTP
// layer enforces content-type and size limits before the core sees it.
type ProofUpload struct {
	File           io.Reader
	Filename       string
	ContentType    string
	SizeBytes      int64
	DeclaredAmount float64
}

type Service interface {
	CreateReservation(ctx context.Context, userID *uuid.UUID, accountEmail string, req CreateReservationRequest) (*ReservationResponse, error)
	GetReservation(ctx context.Context, id uuid.UUID, requesterID *uuid.UUID, isStaff bool) (*ReservationResponse, error)
	GetByReferenceCode(ctx context.Context, referenceCode string) (*ReservationResponse, error)
	ListUserReservations(ctx context.Context, userID uuid.UUID, query ReservationListQuery) (*PaginatedReservations, error)
	ListAllReservations(ctx context.Context, query ReservationListQuery) (*PaginatedReservations, error)

	SubmitPaymentProof(ctx context.Context, referenceCode string, uploaderID *uuid.UUID, upload ProofUpload) (*ProofResponse, error)
	ApproveProof(ctx context.Context, proofID uuid.UUID, reviewerID uuid.UUID) (*ReservationResponse, error)
	RejectProof(ctx context.Context, proofID uuid.UUID, reviewerID uuid.UUID, notes string) (*ReservationResponse, error)
	ListProofs(ctx context.Context, reservationID uuid.UUID) ([]ProofResponse, error)

	CancelReservation(ctx context.Context, id uuid.UUID, requesterID *uuid.UUID, isStaff bool) (*ReservationResponse, error)
	MarkAttended(ctx context.Context, id uuid.UUID) (*ReservationResponse, error)

	CalendarLinks(ctx context.Context, referenceCode string) (*CalendarLinksResponse, error)
	CalendarICS(ctx context.Context, referenceCode string) ([]byte, string, error)

	VerifyLedger(ctx context.Context) ([]LedgerInconsistency, error)
	CancelExpired(ctx context.Context, batchSize int) (int64, error)

	SetNotifier(notifier Notifier)
	SetUserDirectory(directory UserDirectory)
}

type service struct {
	repo         Repository
	store        storage.Storage
	notifier     Notifier
	directory    UserDirectory
	log          *logger.Logger
	holdDuration time.Duration
	currency     string
}

func NewService(repo Repository, store storage.Storage, log *logger.Logger, holdDuration time.Duration, currency string) Service {
	if holdDuration <= 0 {
		holdDuration = 24 * time.Hour
	}
	if currency == "" {
		currency = "ZAR"
	}
	return &service{
		repo:         repo,
		store:        store,
		log:          log,
		holdDuration: holdDuration,
		currency:     currency,
	}
}

// SetNotifier injects the notification pipeline. A nil notifier disables
// notifications without affecting any core flow.
func (s *service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// SetUserDirectory injects the account lookup used to fill in holder names
// on reservations made while signed in.
func (s *service) SetUserDirectory(directory UserDirectory) {
	s.directory = directory
}

func (s *service) CreateReservation(ctx context.Context, userID *uuid.UUID, accountEmail string, req CreateReservationRequest) (*ReservationResponse, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	// An authenticated user's account email always wins over whatever the
	// client supplied; guests must provide one.
	email := strings.TrimSpace(req.GuestEmail)
	name := strings.TrimSpace(req.GuestName)
	if userID != nil {
		email = accountEmail
		if s.directory != nil {
			if dirEmail, firstName, lastName, err := s.directory.GetUserByID(ctx, *userID); err == nil {
				if email == "" {
					email = dirEmail
				}
				if name == "" {
					name = strings.TrimSpace(firstName + " " + lastName)
				}
			}
		}
	}
	if email == "" {
		return nil, ErrGuestEmailRequired
	}

	ticketTypeID, err := uuid.Parse(req.TicketTypeID)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket type ID: %w", err)
	}

	referenceCode, err := generateReferenceCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reference code: %w", err)
	}

	now := time.Now().UTC()
	reservation := &Reservation{
		ReferenceCode: referenceCode,
		UserID:        userID,
		GuestName:     name,
		GuestEmail:    email,
		GuestPhone:    strings.TrimSpace(req.GuestPhone),
		TicketTypeID:  ticketTypeID,
		Quantity:      req.Quantity,
		Status:        StatusReserved,
		Notes:         req.Notes,
		ExpiresAt:     now.Add(s.holdDuration),
	}

	if err := s.repo.CreateWithCapacityCheck(ctx, reservation); err != nil {
		return nil, err
	}

	s.log.LogReservationCreated(ctx, reservation.ID.String(), reservation.ReferenceCode, reservation.TicketTypeID.String(), reservation.Quantity)

	full, err := s.repo.GetByIDWithRelations(ctx, reservation.ID)
	if err != nil {
		// The reservation exists; respond with what we have.
		resp := reservation.ToResponse()
		return &resp, nil
	}

	s.notify(ctx, full, NoticeReservationConfirmation)

	resp := full.ToResponse()
	return &resp, nil
}

func (s *service) GetReservation(ctx context.Context, id uuid.UUID, requesterID *uuid.UUID, isStaff bool) (*ReservationResponse, error) {
	reservation, err := s.repo.GetByIDWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isStaff {
		if requesterID == nil || reservation.UserID == nil || *reservation.UserID != *requesterID {
			return nil, ErrAccessDenied
		}
	}

	resp := reservation.ToResponse()
	return &resp, nil
}

// GetByReferenceCode is the guest lookup path: knowing the reference code is
// the credential.
func (s *service) GetByReferenceCode(ctx context.Context, referenceCode string) (*ReservationResponse, error) {
	reservation, err := s.repo.GetByReferenceCode(ctx, normalizeReference(referenceCode))
	if err != nil {
		return nil, err
	}
	resp := reservation.ToResponse()
	return &resp, nil
}

func (s *service) ListUserReservations(ctx context.Context, userID uuid.UUID, query ReservationListQuery) (*PaginatedReservations, error) {
	normalizeQuery(&query)
	reservations, totalCount, err := s.repo.GetUserReservations(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	return paginate(reservations, totalCount, query), nil
}

func (s *service) ListAllReservations(ctx context.Context, query ReservationListQuery) (*PaginatedReservations, error) {
	normalizeQuery(&query)
	reservations, totalCount, err := s.repo.GetAllReservations(ctx, query)
	if err != nil {
		return nil, err
	}
	return paginate(reservations, totalCount, query), nil
}

func (s *service) SubmitPaymentProof(ctx context.Context, referenceCode string, uploaderID *uuid.UUID, upload ProofUpload) (*ProofResponse, error) {
	if upload.File == nil {
		return nil, ErrMissingProofFile
	}
	if upload.DeclaredAmount <= 0 {
		return nil, ErrInvalidProofAmount
	}

	reservation, err := s.repo.GetByReferenceCode(ctx, normalizeReference(referenceCode))
	if err != nil {
		return nil, err
	}

	ref, err := s.store.Save(ctx, upload.Filename, upload.File)
	if err != nil {
		return nil, fmt.Errorf("failed to store proof file: %w", err)
	}

	proof := &PaymentProof{
		ReservationID:    reservation.ID,
		UploadedBy:       uploaderID,
		FilePath:         ref,
		OriginalFilename: upload.Filename,
		ContentType:      upload.ContentType,
		SizeBytes:        upload.SizeBytes,
		DeclaredAmount:   upload.DeclaredAmount,
		Status:           ProofPending,
	}

	if err := s.repo.CreateProof(ctx, proof); err != nil {
		// Orphaned file on disk is acceptable; the proof row is not.
		s.store.Delete(ctx, ref)
		return nil, err
	}

	resp := proof.ToResponse()
	return &resp, nil
}

func (s *service) ApproveProof(ctx context.Context, proofID uuid.UUID, reviewerID uuid.UUID) (*ReservationResponse, error) {
	proof, err := s.repo.GetProofByID(ctx, proofID)
	if err != nil {
		return nil, err
	}
	if proof.Status.IsReviewed() {
		return nil, ErrProofAlreadyReviewed
	}

	now := time.Now().UTC()
	entry := &payments.Payment{
		ReservationID: proof.ReservationID,
		Amount:        proof.DeclaredAmount,
		Currency:      s.currency,
		Status:        payments.StatusCompleted,
		Method:        payments.MethodBankTransfer,
		TransactionID: proofTransactionRef(proof.ID),
		RecordedBy:    &reviewerID,
		PaidAt:        &now,
	}

	reservation, err := s.repo.ApproveProofTx(ctx, proofID, reviewerID, entry)
	if err != nil {
		if errors.Is(err, ErrProofNotFound) {
			// Raced with another reviewer between the read and the update.
			return nil, ErrProofAlreadyReviewed
		}
		return nil, err
	}

	s.log.LogProofReviewed(ctx, proofID.String(), reservation.ID.String(), "approved")
	s.log.LogReconciliation(ctx, reservation.ID.String(), reservation.AmountPaid, reservation.TotalAmount, reservation.Status.String())

	s.notify(ctx, reservation, NoticePaymentReceived)

	resp := reservation.ToResponse()
	return &resp, nil
}

func (s *service) RejectProof(ctx context.Context, proofID uuid.UUID, reviewerID uuid.UUID, notes string) (*ReservationResponse, error) {
	proof, err := s.repo.GetProofByID(ctx, proofID)
	if err != nil {
		return nil, err
	}
	if proof.Status.IsReviewed() {
		return nil, ErrProofAlreadyReviewed
	}

	reservation, err := s.repo.RejectProofTx(ctx, proofID, reviewerID, notes)
	if err != nil {
		if errors.Is(err, ErrProofNotFound) {
			return nil, ErrProofAlreadyReviewed
		}
		return nil, err
	}

	s.log.LogProofReviewed(ctx, proofID.String(), reservation.ID.String(), "rejected")

	resp := reservation.ToResponse()
	return &resp, nil
}

func (s *service) ListProofs(ctx context.Context, reservationID uuid.UUID) ([]ProofResponse, error) {
	proofs, err := s.repo.GetProofsByReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	responses := make([]ProofResponse, 0, len(proofs))
	for i := range proofs {
		responses = append(responses, proofs[i].ToResponse())
	}
	return responses, nil
}

func (s *service) CancelReservation(ctx context.Context, id uuid.UUID, requesterID *uuid.UUID, isStaff bool) (*ReservationResponse, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isStaff {
		if requesterID == nil || reservation.UserID == nil || *reservation.UserID != *requesterID {
			return nil, ErrAccessDenied
		}
	}

	if !reservation.Status.CanBeCancelled() {
		return nil, ErrNotCancellable
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled, &now); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByIDWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := updated.ToResponse()
	return &resp, nil
}

func (s *service) MarkAttended(ctx context.Context, id uuid.UUID) (*ReservationResponse, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reservation.Status.CanMarkAttended() {
		return nil, ErrNotAttendable
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusAttended, nil); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByIDWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := updated.ToResponse()
	return &resp, nil
}

func (s *service) VerifyLedger(ctx context.Context) ([]LedgerInconsistency, error) {
	inconsistencies, err := s.repo.VerifyLedger(ctx, 100)
	for i := range inconsistencies {
		s.log.LogLedgerInconsistency(ctx, inconsistencies[i].ReservationID.String(), inconsistencies[i].StoredAmount, inconsistencies[i].LedgerAmount)
	}
	return inconsistencies, err
}

func (s *service) CancelExpired(ctx context.Context, batchSize int) (int64, error) {
	return s.repo.CancelExpired(ctx, time.Now().UTC(), batchSize)
}

// notify sends fire-and-forget; failures are logged, never propagated.
func (s *service) notify(ctx context.Context, reservation *Reservation, noticeType string) {
	if s.notifier == nil {
		return
	}

	notice := Notice{
		Type:               noticeType,
		ReservationID:      reservation.ID,
		ReferenceCode:      reservation.ReferenceCode,
		RecipientEmail:     reservation.GuestEmail,
		RecipientName:      reservation.GuestName,
		Quantity:           reservation.Quantity,
		TotalAmount:        reservation.TotalAmount,
		AmountPaid:         reservation.AmountPaid,
		OutstandingBalance: reservation.OutstandingBalance(),
		Status:             reservation.Status.String(),
	}
	if reservation.Event != nil {
		notice.EventTitle = reservation.Event.Title
	}

	if err := s.notifier.Notify(ctx, notice); err != nil {
		s.log.LogNotificationFailure(ctx, reservation.ID.String(), noticeType, err)
	}
}

// generateReferenceCode returns 12 uppercase hex characters from crypto/rand.
func generateReferenceCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

func proofTransactionRef(proofID uuid.UUID) string {
	return "PROOF-" + strings.ToUpper(strings.ReplaceAll(proofID.String(), "-", "")[:12])
}

func normalizeReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

func normalizeQuery(query *ReservationListQuery) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}
}

func paginate(reservations []Reservation, totalCount int64, query ReservationListQuery) *PaginatedReservations {
	responses := make([]ReservationResponse, 0, len(reservations))
	for i := range reservations {
		responses = append(responses, reservations[i].ToResponse())
	}
	return &PaginatedReservations{
		Reservations: responses,
		TotalCount:   totalCount,
		Page:         query.Page,
		Limit:        query.Limit,
		TotalPages:   CalculateTotalPages(totalCount, query.Limit),
	}
}
