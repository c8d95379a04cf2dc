package notifications

import (
	"net/http"
	"strconv"

	"github.com/hanSiey/pppa-management-backend/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) Controller {
	return Controller{service: service}
}

// ListLogs returns the delivery audit trail, newest first.
func (ctrl *Controller) ListLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	logs, total, err := ctrl.service.ListLogs(c.Request.Context(), page, limit)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list notification logs", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Notification logs retrieved successfully", gin.H{
		"logs":        logs,
		"total_count": total,
		"page":        page,
		"limit":       limit,
	}, nil)
}

// ListByReservation returns every delivery attempt for one reservation.
func (ctrl *Controller) ListByReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid reservation ID", nil, err.Error())
		return
	}

	logs, err := ctrl.service.GetLogsByReservation(c.Request.Context(), reservationID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list notification logs", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Notification logs retrieved successfully", logs, nil)
}
