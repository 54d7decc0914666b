package usage

import (
	"context"
	"strings"

	"gorm.io/gorm"

	domain "github.com/yungbote/titleforge-backend/internal/domain/usage"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

// EventFilter matches events on exact column values; empty fields are ignored.
type EventFilter struct {
	UserID      string
	EventType   string
	EventAction string
}

// GenerationFilter is the quota signature for a user.
func GenerationFilter(userID string) EventFilter {
	return EventFilter{
		UserID:      userID,
		EventType:   domain.EventTypeTitleGeneration,
		EventAction: domain.EventActionGenerate,
	}
}

type EventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*domain.GenerationEvent) ([]*domain.GenerationEvent, error)
	Count(ctx context.Context, tx *gorm.DB, filter EventFilter) (int64, error)
	CountGenerations(ctx context.Context, tx *gorm.DB, userID string) (int, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*domain.GenerationEvent, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "EventRepo")}
}

func (r *eventRepo) Create(ctx context.Context, tx *gorm.DB, events []*domain.GenerationEvent) ([]*domain.GenerationEvent, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(events) == 0 {
		return []*domain.GenerationEvent{}, nil
	}
	if err := t.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepo) Count(ctx context.Context, tx *gorm.DB, filter EventFilter) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).Model(&domain.GenerationEvent{})
	if v := strings.TrimSpace(filter.UserID); v != "" {
		q = q.Where("user_id = ?", v)
	}
	if v := strings.TrimSpace(filter.EventType); v != "" {
		q = q.Where("event_type = ?", v)
	}
	if v := strings.TrimSpace(filter.EventAction); v != "" {
		q = q.Where("event_action = ?", v)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *eventRepo) CountGenerations(ctx context.Context, tx *gorm.DB, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, nil
	}
	n, err := r.Count(ctx, tx, GenerationFilter(userID))
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *eventRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*domain.GenerationEvent, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := []*domain.GenerationEvent{}
	if strings.TrimSpace(userID) == "" {
		return out, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
