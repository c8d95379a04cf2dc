package reservations

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hanSiey/pppa-management-backend/internal/shared/config"
	"github.com/hanSiey/pppa-management-backend/internal/shared/utils/response"
)

type Controller interface {
	CreateReservation(c *gin.Context)
	GetReservation(c *gin.Context)
	GetByReferenceCode(c *gin.Context)
	ListMyReservations(c *gin.Context)
	ListAllReservations(c *gin.Context)
	CancelReservation(c *gin.Context)
	MarkAttended(c *gin.Context)

	SubmitPaymentProof(c *gin.Context)
	ApproveProof(c *gin.Context)
	RejectProof(c *gin.Context)
	ListProofs(c *gin.Context)

	CalendarLinks(c *gin.Context)
	CalendarICS(c *gin.Context)

	VerifyLedger(c *gin.Context)
}

type controller struct {
	service Service
	upload  config.UploadConfig
}

func NewController(service Service, upload config.UploadConfig) Controller {
	return &controller{service: service, upload: upload}
}

func (ctrl *controller) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, accountEmail := optionalUser(c)

	reservation, err := ctrl.service.CreateReservation(c.Request.Context(), userID, accountEmail, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrInsufficientInventory):
			statusCode = http.StatusConflict
		case errors.Is(err, ErrTicketTypeNotFound):
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Reservation created successfully", reservation, nil)
}

func (ctrl *controller) GetReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid reservation ID", nil, err.Error())
		return
	}

	userID, _ := optionalUser(c)
	isStaff := c.GetString("user_role") == "ADMIN"

	reservation, err := ctrl.service.GetReservation(c.Request.Context(), id, userID, isStaff)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrReservationNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrAccessDenied):
			statusCode = http.StatusForbidden
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation retrieved successfully", reservation, nil)
}

// GetByReferenceCode is the guest lookup path; the reference code acts as the
// access credential.
func (ctrl *controller) GetByReferenceCode(c *gin.Context) {
	reservation, err := ctrl.service.GetByReferenceCode(c.Request.Context(), c.Param("referenceCode"))
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrReservationNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation retrieved successfully", reservation, nil)
}

func (ctrl *controller) ListMyReservations(c *gin.Context) {
	userID, _ := optionalUser(c)
	if userID == nil {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	query := bindListQuery(c)
	result, err := ctrl.service.ListUserReservations(c.Request.Context(), *userID, query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservations retrieved successfully", result, nil)
}

func (ctrl *controller) ListAllReservations(c *gin.Context) {
	query := bindListQuery(c)
	result, err := ctrl.service.ListAllReservations(c.Request.Context(), query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservations retrieved successfully", result, nil)
}

func (ctrl *controller) CancelReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid reservation ID", nil, err.Error())
		return
	}

	userID, _ := optionalUser(c)
	isStaff := c.GetString("user_role") == "ADMIN"

	reservation, err := ctrl.service.CancelReservation(c.Request.Context(), id, userID, isStaff)
	if err != nil {
		statusCode := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrReservationNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrAccessDenied):
			statusCode = http.StatusForbidden
		case errors.Is(err, ErrNotCancellable):
			statusCode = http.StatusConflict
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation cancelled successfully", reservation, nil)
}

func (ctrl *controller) MarkAttended(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid reservation ID", nil, err.Error())
		return
	}

	reservation, err := ctrl.service.MarkAttended(c.Request.Context(), id)
	if err != nil {
		statusCode := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrReservationNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrNotAttendable):
			statusCode = http.StatusConflict
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation marked as attended", reservation, nil)
}

func (ctrl *controller) SubmitPaymentProof(c *gin.Context) {
	var req SubmitProofRequest
	if err := c.ShouldBind(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request", nil, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, ErrMissingProofFile.Error(), nil, nil)
		return
	}

	// File constraints are enforced here, before the core is invoked
	if fileHeader.Size > ctrl.upload.MaxSize {
		response.RespondJSON(c, "error", http.StatusRequestEntityTooLarge, "File exceeds maximum allowed size", nil, nil)
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !ctrl.allowedType(contentType) {
		response.RespondJSON(c, "error", http.StatusUnsupportedMediaType, "File type not allowed", nil, nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to read uploaded file", nil, nil)
		return
	}
	defer file.Close()

	userID, _ := optionalUser(c)

	proof, err := ctrl.service.SubmitPaymentProof(c.Request.Context(), c.Param("referenceCode"), userID, ProofUpload{
		File:           file,
		Filename:       fileHeader.Filename,
		ContentType:    contentType,
		SizeBytes:      fileHeader.Size,
		DeclaredAmount: req.DeclaredAmount,
	})
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrReservationNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Payment proof submitted successfully", proof, nil)
}

func (ctrl *controller) ApproveProof(c *gin.Context) {
	proofID, err := uuid.Parse(c.Param("proofId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid proof ID", nil, err.Error())
		return
	}

	reviewerID, ok := requireUser(c)
	if !ok {
		return
	}

	reservation, err := ctrl.service.ApproveProof(c.Request.Context(), proofID, reviewerID)
	if err != nil {
		statusCode := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrProofNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrProofAlreadyReviewed):
			statusCode = http.StatusConflict
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment proof approved", reservation, nil)
}

func (ctrl *controller) RejectProof(c *gin.Context) {
	proofID, err := uuid.Parse(c.Param("proofId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid proof ID", nil, err.Error())
		return
	}

	// Notes are optional; an empty or missing body is fine
	var req RejectProofRequest
	_ = c.ShouldBindJSON(&req)

	reviewerID, ok := requireUser(c)
	if !ok {
		return
	}

	reservation, err := ctrl.service.RejectProof(c.Request.Context(), proofID, reviewerID, req.Notes)
	if err != nil {
		statusCode := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrProofNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrProofAlreadyReviewed):
			statusCode = http.StatusConflict
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment proof rejected", reservation, nil)
}

func (ctrl *controller) ListProofs(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid reservation ID", nil, err.Error())
		return
	}

	proofs, err := ctrl.service.ListProofs(c.Request.Context(), reservationID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment proofs retrieved successfully", proofs, nil)
}

func (ctrl *controller) CalendarLinks(c *gin.Context) {
	links, err := ctrl.service.CalendarLinks(c.Request.Context(), c.Param("referenceCode"))
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrReservationNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Calendar links generated successfully", links, nil)
}

func (ctrl *controller) CalendarICS(c *gin.Context) {
	content, filename, err := ctrl.service.CalendarICS(c.Request.Context(), c.Param("referenceCode"))
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrReservationNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", content)
}

func (ctrl *controller) VerifyLedger(c *gin.Context) {
	inconsistencies, err := ctrl.service.VerifyLedger(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ledger verification completed", gin.H{
		"inconsistencies": inconsistencies,
		"corrected":       len(inconsistencies),
	}, nil)
}

func (ctrl *controller) allowedType(contentType string) bool {
	for _, allowed := range ctrl.upload.AllowedTypes {
		if strings.EqualFold(strings.TrimSpace(allowed), contentType) {
			return true
		}
	}
	return false
}

// optionalUser extracts the authenticated user, if any, from the context
func optionalUser(c *gin.Context) (*uuid.UUID, string) {
	idVal, exists := c.Get("user_id")
	if !exists {
		return nil, ""
	}
	idStr, ok := idVal.(string)
	if !ok {
		return nil, ""
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, ""
	}
	return &id, c.GetString("user_email")
}

func requireUser(c *gin.Context) (uuid.UUID, bool) {
	id, _ := optionalUser(c)
	if id == nil {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return uuid.Nil, false
	}
	return *id, true
}

func bindListQuery(c *gin.Context) ReservationListQuery {
	query := ReservationListQuery{
		Status:  c.Query("status"),
		EventID: c.Query("event_id"),
		Search:  c.Query("search"),
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	return query
}
