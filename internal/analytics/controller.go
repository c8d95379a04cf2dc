package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hanSiey/pppa-management-backend/internal/shared/utils/response"
)

type TrackRequest struct {
	EventType string `json:"event_type" binding:"required"`
	SessionID string `json:"session_id" binding:"omitempty,max=100"`
	Path      string `json:"path" binding:"omitempty,max=500"`
	Metadata  string `json:"metadata" binding:"omitempty,max=4000"`
}

type Controller interface {
	Track(c *gin.Context)
	GetDashboard(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) Track(c *gin.Context) {
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	var userID *uuid.UUID
	if idVal, exists := c.Get("user_id"); exists {
		if idStr, ok := idVal.(string); ok {
			if id, err := uuid.Parse(idStr); err == nil {
				userID = &id
			}
		}
	}

	if err := ctrl.service.Track(c.Request.Context(), userID, req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Event tracked", nil, nil)
}

func (ctrl *controller) GetDashboard(c *gin.Context) {
	dashboard, err := ctrl.service.GetDashboard(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Dashboard retrieved successfully", dashboard, nil)
}
