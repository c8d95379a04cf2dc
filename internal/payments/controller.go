package payments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hanSiey/pppa-management-backend/internal/shared/utils/response"
)

type Controller interface {
	RecordPayment(c *gin.Context)
	MarkCompleted(c *gin.Context)
	MarkFailed(c *gin.Context)
	MarkRefunded(c *gin.Context)
	DeletePayment(c *gin.Context)
	GetPayment(c *gin.Context)
	GetLedger(c *gin.Context)
	ListPayments(c *gin.Context)
	GetStats(c *gin.Context)

	RequestRefund(c *gin.Context)
	ApproveRefund(c *gin.Context)
	ProcessRefund(c *gin.Context)
	RejectRefund(c *gin.Context)
	ListRefunds(c *gin.Context)

	CreateBankingDetail(c *gin.Context)
	UpdateBankingDetail(c *gin.Context)
	DeleteBankingDetail(c *gin.Context)
	ListBankingDetails(c *gin.Context)
	ListActiveBankingDetails(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	payment, err := ctrl.service.RecordPayment(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Payment recorded successfully", payment, nil)
}

func (ctrl *controller) MarkCompleted(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	// Transaction ref is optional
	var req MarkCompletedRequest
	_ = c.ShouldBindJSON(&req)

	payment, err := ctrl.service.MarkCompleted(c.Request.Context(), id, req)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment marked as completed", payment, nil)
}

func (ctrl *controller) MarkFailed(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	payment, err := ctrl.service.MarkFailed(c.Request.Context(), id)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment marked as failed", payment, nil)
}

func (ctrl *controller) MarkRefunded(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	payment, err := ctrl.service.MarkRefunded(c.Request.Context(), id)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment marked as refunded", payment, nil)
}

func (ctrl *controller) DeletePayment(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	if err := ctrl.service.DeletePayment(c.Request.Context(), id); err != nil {
		respondPaymentError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment deleted successfully", nil, nil)
}

func (ctrl *controller) GetPayment(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	payment, err := ctrl.service.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment retrieved successfully", payment, nil)
}

func (ctrl *controller) GetLedger(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid reservation ID", nil, err.Error())
		return
	}

	ledger, err := ctrl.service.GetLedger(c.Request.Context(), reservationID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ledger retrieved successfully", ledger, nil)
}

func (ctrl *controller) ListPayments(c *gin.Context) {
	query := PaymentListQuery{
		Status:        c.Query("status"),
		Method:        c.Query("method"),
		ReservationID: c.Query("reservation_id"),
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := ctrl.service.ListPayments(c.Request.Context(), query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payments retrieved successfully", result, nil)
}

func (ctrl *controller) GetStats(c *gin.Context) {
	stats, err := ctrl.service.GetStats(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment stats retrieved successfully", stats, nil)
}

func (ctrl *controller) RequestRefund(c *gin.Context) {
	var req RequestRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	refund, err := ctrl.service.RequestRefund(c.Request.Context(), userID, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrPaymentNotRefundable):
			statusCode = http.StatusConflict
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Refund requested successfully", refund, nil)
}

func (ctrl *controller) ApproveRefund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("refundId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid refund ID", nil, err.Error())
		return
	}

	var req ReviewRefundRequest
	_ = c.ShouldBindJSON(&req)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	refund, err := ctrl.service.ApproveRefund(c.Request.Context(), id, userID, req.Notes)
	if err != nil {
		respondRefundError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Refund approved", refund, nil)
}

func (ctrl *controller) RejectRefund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("refundId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid refund ID", nil, err.Error())
		return
	}

	var req ReviewRefundRequest
	_ = c.ShouldBindJSON(&req)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	refund, err := ctrl.service.RejectRefund(c.Request.Context(), id, userID, req.Notes)
	if err != nil {
		respondRefundError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Refund rejected", refund, nil)
}

func (ctrl *controller) ProcessRefund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("refundId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid refund ID", nil, err.Error())
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	refund, err := ctrl.service.ProcessRefund(c.Request.Context(), id, userID)
	if err != nil {
		respondRefundError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Refund processed", refund, nil)
}

func (ctrl *controller) ListRefunds(c *gin.Context) {
	refunds, err := ctrl.service.ListRefunds(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Refunds retrieved successfully", refunds, nil)
}

func (ctrl *controller) CreateBankingDetail(c *gin.Context) {
	var req BankingDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	detail, err := ctrl.service.CreateBankingDetail(c.Request.Context(), req)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Banking detail created successfully", detail, nil)
}

func (ctrl *controller) UpdateBankingDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid banking detail ID", nil, err.Error())
		return
	}

	var req BankingDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	detail, err := ctrl.service.UpdateBankingDetail(c.Request.Context(), id, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrBankingDetailNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Banking detail updated successfully", detail, nil)
}

func (ctrl *controller) DeleteBankingDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid banking detail ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeleteBankingDetail(c.Request.Context(), id); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrBankingDetailNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Banking detail deleted successfully", nil, nil)
}

func (ctrl *controller) ListBankingDetails(c *gin.Context) {
	details, err := ctrl.service.ListBankingDetails(c.Request.Context(), false)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Banking details retrieved successfully", details, nil)
}

// ListActiveBankingDetails is the public endpoint shown on the reservation
// payment page.
func (ctrl *controller) ListActiveBankingDetails(c *gin.Context) {
	details, err := ctrl.service.ListBankingDetails(c.Request.Context(), true)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Banking details retrieved successfully", details, nil)
}

func paymentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid payment ID", nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	idVal, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return uuid.Nil, false
	}
	idStr, _ := idVal.(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Invalid user ID format", nil, nil)
		return uuid.Nil, false
	}
	return id, true
}

func respondPaymentError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	if errors.Is(err, ErrPaymentNotFound) {
		statusCode = http.StatusNotFound
	}
	response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
}

func respondRefundError(c *gin.Context, err error) {
	statusCode := http.StatusBadRequest
	switch {
	case errors.Is(err, ErrRefundNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, ErrRefundAlreadyReviewed), errors.Is(err, ErrRefundNotApproved):
		statusCode = http.StatusConflict
	}
	response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
}
