package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/titleforge-backend/internal/data/repos"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

type Repos struct {
	Events repos.EventRepo
}

// wireRepos returns an empty set when no database is configured.
func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	if db == nil {
		log.Warn("No database configured; quota checks will fail open")
		return Repos{}
	}
	log.Info("Wiring repos...")
	return Repos{
		Events: repos.NewEventRepo(db, log),
	}
}
