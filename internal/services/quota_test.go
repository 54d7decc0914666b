package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

func TestQuotaLedgerUsage(t *testing.T) {
	cases := []struct {
		name   string
		seeded int
		limit  int
		want   [3]int
	}{
		{name: "fresh", seeded: 0, limit: 20, want: [3]int{0, 20, 20}},
		{name: "partial", seeded: 7, limit: 20, want: [3]int{7, 13, 20}},
		{name: "at_limit", seeded: 20, limit: 20, want: [3]int{20, 0, 20}},
		{name: "over_limit", seeded: 25, limit: 20, want: [3]int{25, 0, 20}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := NewQuotaLedger(logger.NewNop(), &fakeStore{seeded: tc.seeded}, tc.limit, time.Second)
			q := ledger.Usage(context.Background(), "user-1")
			assert.Equal(t, tc.want, [3]int{q.Count, q.Remaining, q.Limit})

			allowed, remaining := ledger.CanGenerate(context.Background(), "user-1")
			assert.Equal(t, tc.want[1] > 0, allowed)
			assert.Equal(t, tc.want[1], remaining)
		})
	}
}

func TestQuotaLedgerFailsOpen(t *testing.T) {
	t.Run("store_error", func(t *testing.T) {
		store := &fakeStore{seeded: 20, countErr: errors.New("connection refused")}
		q := NewQuotaLedger(logger.NewNop(), store, 20, time.Second).Usage(context.Background(), "user-1")
		assert.Equal(t, 0, q.Count)
		assert.Equal(t, 20, q.Remaining)
		assert.Equal(t, 20, q.Limit)
	})
	t.Run("no_store", func(t *testing.T) {
		ledger := NewQuotaLedger(logger.NewNop(), nil, 20, time.Second)
		allowed, remaining := ledger.CanGenerate(context.Background(), "user-1")
		assert.True(t, allowed)
		assert.Equal(t, 20, remaining)
	})
}

func TestQuotaLedgerDefaultsLimit(t *testing.T) {
	ledger := NewQuotaLedger(logger.NewNop(), &fakeStore{}, 0, 0)
	require.Equal(t, 20, ledger.Limit())
}

func TestClassifyStoreError(t *testing.T) {
	assert.Equal(t, "", classifyStoreError(nil))
	assert.Equal(t, "timeout", classifyStoreError(context.DeadlineExceeded))
	assert.Equal(t, "canceled", classifyStoreError(context.Canceled))
	assert.Equal(t, "error", classifyStoreError(errors.New("boom")))
}
