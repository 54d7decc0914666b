package services

import (
	"context"
	"strings"

	"github.com/yungbote/titleforge-backend/internal/domain/usage"
	"github.com/yungbote/titleforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

// TrackEventInput is a client analytics event. Identity fields in the body
// are ignored whenever the request carries a verified identity.
type TrackEventInput struct {
	UserID        string
	SessionID     string
	EventType     string
	EventCategory string
	EventAction   string
	EventLabel    string
	EventValue    *float64
}

type EventService interface {
	Track(ctx context.Context, in TrackEventInput) error
}

type eventService struct {
	log  *logger.Logger
	sink TelemetrySink
}

func NewEventService(log *logger.Logger, sink TelemetrySink) EventService {
	return &eventService{log: log.With("service", "EventService"), sink: sink}
}

func (s *eventService) Track(ctx context.Context, in TrackEventInput) error {
	eventType := strings.TrimSpace(in.EventType)
	if eventType == "" {
		return &InvalidInputError{Reason: "eventType is required"}
	}
	action := strings.TrimSpace(in.EventAction)
	if eventType == usage.EventTypeTitleGeneration && action == usage.EventActionGenerate {
		return &InvalidInputError{Reason: "generation events are recorded by the server"}
	}

	userID, sessionID := strings.TrimSpace(in.UserID), strings.TrimSpace(in.SessionID)
	if rd := ctxutil.GetRequestData(ctx); rd.Authenticated() {
		userID = rd.UserID
		if rd.SessionID != "" {
			sessionID = rd.SessionID
		}
	}

	s.sink.Record(ctx, &usage.GenerationEvent{
		UserID:        usage.StringPtr(userID),
		SessionID:     usage.StringPtr(sessionID),
		EventType:     eventType,
		EventCategory: usage.StringPtr(strings.TrimSpace(in.EventCategory)),
		EventAction:   usage.StringPtr(action),
		EventLabel:    usage.StringPtr(strings.TrimSpace(in.EventLabel)),
		EventValue:    in.EventValue,
	})
	return nil
}
