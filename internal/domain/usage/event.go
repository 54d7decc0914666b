package usage

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EventTypeTitleGeneration = "title_generation"
	EventActionGenerate      = "generate"

	EventCategoryEngagement = "engagement"
	EventLabelYouTubeTitles = "youtube_titles"
)

// GenerationEvent is one append-only usage record. Rows matching
// (title_generation, generate) are what the quota ledger counts.
type GenerationEvent struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        *string        `gorm:"column:user_id;index:idx_events_user_type_action,priority:1" json:"user_id,omitempty"`
	SessionID     *string        `gorm:"column:session_id;index" json:"session_id,omitempty"`
	EventType     string         `gorm:"column:event_type;not null;index:idx_events_user_type_action,priority:2" json:"event_type"`
	EventCategory *string        `gorm:"column:event_category" json:"event_category,omitempty"`
	EventAction   *string        `gorm:"column:event_action;index:idx_events_user_type_action,priority:3" json:"event_action,omitempty"`
	EventLabel    *string        `gorm:"column:event_label" json:"event_label,omitempty"`
	EventValue    *float64       `gorm:"column:event_value" json:"event_value,omitempty"`
	Metadata      datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null;autoCreateTime;index" json:"created_at"`
}

func (GenerationEvent) TableName() string { return "events" }

func (e *GenerationEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsGeneration reports whether the event carries the quota signature.
func (e *GenerationEvent) IsGeneration() bool {
	return e != nil &&
		e.EventType == EventTypeTitleGeneration &&
		e.EventAction != nil && *e.EventAction == EventActionGenerate
}

// NewGenerationEvent builds the record written after a successful batch.
func NewGenerationEvent(userID, sessionID string, metadata datatypes.JSON) *GenerationEvent {
	one := 1.0
	return &GenerationEvent{
		UserID:        StringPtr(userID),
		SessionID:     StringPtr(sessionID),
		EventType:     EventTypeTitleGeneration,
		EventCategory: StringPtr(EventCategoryEngagement),
		EventAction:   StringPtr(EventActionGenerate),
		EventLabel:    StringPtr(EventLabelYouTubeTitles),
		EventValue:    &one,
		Metadata:      metadata,
	}
}

// StringPtr returns nil for the empty string so optional columns stay NULL.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
