package domain

import (
	"github.com/yungbote/titleforge-backend/internal/domain/titles"
	"github.com/yungbote/titleforge-backend/internal/domain/usage"
)

type TitleVariation = titles.TitleVariation

type GenerationEvent = usage.GenerationEvent
type QuotaState = usage.QuotaState

// Models lists every gorm model owned by this service, in migration order.
func Models() []any {
	return []any{
		&usage.GenerationEvent{},
	}
}
