package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/titleforge-backend/internal/domain/usage"
)

// SeedGenerations appends n quota-counted events for userID.
func SeedGenerations(tb testing.TB, ctx context.Context, tx *gorm.DB, userID string, n int) {
	tb.Helper()
	for i := 0; i < n; i++ {
		ev := usage.NewGenerationEvent(userID, "session-seed", nil)
		if err := tx.WithContext(ctx).Create(ev).Error; err != nil {
			tb.Fatalf("seed generation event: %v", err)
		}
	}
}

// SeedEvent appends an arbitrary event.
func SeedEvent(tb testing.TB, ctx context.Context, tx *gorm.DB, ev *usage.GenerationEvent) *usage.GenerationEvent {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(ev).Error; err != nil {
		tb.Fatalf("seed event: %v", err)
	}
	return ev
}
