package services

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yungbote/titleforge-backend/internal/data/repos"
	"github.com/yungbote/titleforge-backend/internal/domain/usage"
)

// EventStore is the durable, append-only event log the core depends on.
type EventStore interface {
	Append(ctx context.Context, event *usage.GenerationEvent) error
	CountGenerations(ctx context.Context, userID string) (int, error)
}

type repoEventStore struct {
	repo repos.EventRepo
}

// NewRepoEventStore adapts the gorm event repo. A nil repo yields a nil
// store, which the ledger and sink treat as "not configured".
func NewRepoEventStore(repo repos.EventRepo) EventStore {
	if repo == nil {
		return nil
	}
	return &repoEventStore{repo: repo}
}

func (s *repoEventStore) Append(ctx context.Context, event *usage.GenerationEvent) error {
	_, err := s.repo.Create(ctx, nil, []*usage.GenerationEvent{event})
	return err
}

func (s *repoEventStore) CountGenerations(ctx context.Context, userID string) (int, error) {
	return s.repo.CountGenerations(ctx, nil, userID)
}

// classifyStoreError names a store failure for logs and metrics labels.
func classifyStoreError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return "postgres_" + strings.TrimSpace(pgErr.Code)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return "unreachable"
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return "unreachable"
	}
	return "error"
}
