package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/titleforge-backend/internal/http/response"
	"github.com/yungbote/titleforge-backend/internal/services"
)

type EventHandler struct {
	events services.EventService
}

func NewEventHandler(events services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type trackEventRequest struct {
	UserID        string   `json:"userId"`
	SessionID     string   `json:"sessionId"`
	EventType     string   `json:"eventType"`
	EventCategory string   `json:"eventCategory"`
	EventAction   string   `json:"eventAction"`
	EventLabel    string   `json:"eventLabel"`
	EventValue    *float64 `json:"eventValue"`
}

// POST /api/events
func (h *EventHandler) Track(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBody)
	var req trackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidInput, errors.New("invalid event payload"))
		return
	}
	err := h.events.Track(c.Request.Context(), services.TrackEventInput{
		UserID:        req.UserID,
		SessionID:     req.SessionID,
		EventType:     req.EventType,
		EventCategory: req.EventCategory,
		EventAction:   req.EventAction,
		EventLabel:    req.EventLabel,
		EventValue:    req.EventValue,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
