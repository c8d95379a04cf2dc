package events

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hanSiey/pppa-management-backend/internal/shared/utils/response"
)

type Controller interface {
	CreateEvent(c *gin.Context)
	GetEvent(c *gin.Context)
	UpdateEvent(c *gin.Context)
	DeleteEvent(c *gin.Context)
	ListEvents(c *gin.Context)

	CreateSubEvent(c *gin.Context)
	DeleteSubEvent(c *gin.Context)

	CreateTicketType(c *gin.Context)
	UpdateTicketType(c *gin.Context)
	DeleteTicketType(c *gin.Context)
	ListTicketTypes(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	// Get staff user ID from context (set by auth middleware)
	userID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	userUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Invalid user ID format", nil, nil)
		return
	}

	event, err := ctrl.service.CreateEvent(c.Request.Context(), userUUID, req)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Event created successfully", event, nil)
}

func (ctrl *controller) GetEvent(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Missing event slug", nil, nil)
		return
	}

	// Staff see unpublished events too
	includeUnpublished := c.GetString("user_role") == "ADMIN"

	event, err := ctrl.service.GetEventBySlug(c.Request.Context(), slug, includeUnpublished)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event retrieved successfully", event, nil)
}

func (ctrl *controller) UpdateEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	event, err := ctrl.service.UpdateEvent(c.Request.Context(), eventID, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event updated successfully", event, nil)
}

func (ctrl *controller) DeleteEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeleteEvent(c.Request.Context(), eventID); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event deleted successfully", nil, nil)
}

func (ctrl *controller) ListEvents(c *gin.Context) {
	query := EventListQuery{
		Search:    c.Query("search"),
		Location:  c.Query("location"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	includeUnpublished := c.GetString("user_role") == "ADMIN"

	result, err := ctrl.service.ListEvents(c.Request.Context(), query, includeUnpublished)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Events retrieved successfully", result, nil)
}

func (ctrl *controller) CreateSubEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	var req CreateSubEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	subEvent, err := ctrl.service.CreateSubEvent(c.Request.Context(), eventID, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Sub event created successfully", subEvent, nil)
}

func (ctrl *controller) DeleteSubEvent(c *gin.Context) {
	subEventID, err := uuid.Parse(c.Param("subEventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid sub event ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeleteSubEvent(c.Request.Context(), subEventID); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrSubEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Sub event deleted successfully", nil, nil)
}

func (ctrl *controller) CreateTicketType(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	var req CreateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	tt, err := ctrl.service.CreateTicketType(c.Request.Context(), eventID, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Ticket type created successfully", tt, nil)
}

func (ctrl *controller) UpdateTicketType(c *gin.Context) {
	ticketTypeID, err := uuid.Parse(c.Param("ticketTypeId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid ticket type ID", nil, err.Error())
		return
	}

	var req UpdateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	tt, err := ctrl.service.UpdateTicketType(c.Request.Context(), ticketTypeID, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrTicketTypeNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket type updated successfully", tt, nil)
}

func (ctrl *controller) DeleteTicketType(c *gin.Context) {
	ticketTypeID, err := uuid.Parse(c.Param("ticketTypeId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid ticket type ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeleteTicketType(c.Request.Context(), ticketTypeID); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrTicketTypeNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket type deleted successfully", nil, nil)
}

func (ctrl *controller) ListTicketTypes(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	ticketTypes, err := ctrl.service.ListTicketTypes(c.Request.Context(), eventID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket types retrieved successfully", ticketTypes, nil)
}
