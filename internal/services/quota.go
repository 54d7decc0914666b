package services

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/titleforge-backend/internal/domain/usage"
	"github.com/yungbote/titleforge-backend/internal/observability"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

// QuotaLedger derives a user's allowance from the event log on every call.
// It fails open: when history cannot be read the user gets the full limit.
type QuotaLedger interface {
	Usage(ctx context.Context, userID string) usage.QuotaState
	CanGenerate(ctx context.Context, userID string) (bool, int)
	Limit() int
}

type quotaLedger struct {
	log     *logger.Logger
	store   EventStore
	limit   int
	timeout time.Duration
}

func NewQuotaLedger(log *logger.Logger, store EventStore, limit int, timeout time.Duration) QuotaLedger {
	if limit <= 0 {
		limit = usage.DefaultGenerationLimit
	}
	return &quotaLedger{
		log:     log.With("service", "QuotaLedger"),
		store:   store,
		limit:   limit,
		timeout: timeout,
	}
}

func (l *quotaLedger) Limit() int { return l.limit }

func (l *quotaLedger) Usage(ctx context.Context, userID string) usage.QuotaState {
	userID = strings.TrimSpace(userID)
	if l.store == nil {
		l.log.Warn("no event store configured, granting full quota")
		observability.Current().IncQuotaFailOpen("unconfigured")
		return usage.FullQuota(l.limit)
	}
	if userID == "" {
		return usage.FullQuota(l.limit)
	}

	callCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	count, err := l.store.CountGenerations(callCtx, userID)
	if err != nil {
		kind := classifyStoreError(err)
		l.log.Warn("generation count failed, granting full quota",
			"user_id", userID,
			"kind", kind,
			"error", err,
		)
		observability.Current().IncQuotaFailOpen(kind)
		return usage.FullQuota(l.limit)
	}
	return usage.NewQuotaState(count, l.limit)
}

func (l *quotaLedger) CanGenerate(ctx context.Context, userID string) (bool, int) {
	q := l.Usage(ctx, userID)
	return q.Remaining > 0, q.Remaining
}
