package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/titleforge-backend/internal/data/repos/usage"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

type EventRepo = usage.EventRepo
type EventFilter = usage.EventFilter

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return usage.NewEventRepo(db, baseLog)
}
