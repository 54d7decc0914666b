package services

import (
	"context"
	"sync"

	"github.com/yungbote/titleforge-backend/internal/domain/usage"
)

type fakeStore struct {
	mu        sync.Mutex
	events    []*usage.GenerationEvent
	countErr  error
	appendErr error
	// seeded is added to the counted generations.
	seeded     int
	countCalls int
	block      chan struct{}
}

func (s *fakeStore) Append(ctx context.Context, event *usage.GenerationEvent) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.events = append(s.events, event)
	return nil
}

func (s *fakeStore) CountGenerations(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countCalls++
	if s.countErr != nil {
		return 0, s.countErr
	}
	n := s.seeded
	for _, ev := range s.events {
		if ev.IsGeneration() && ev.UserID != nil && *ev.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) recorded() []*usage.GenerationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*usage.GenerationEvent(nil), s.events...)
}

type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	prompts []string
}

func (g *fakeGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

func (g *fakeGenerator) ModelName() string { return "fake-model" }

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*usage.GenerationEvent
	err    error
}

func (p *fakePublisher) PublishGeneration(ctx context.Context, event *usage.GenerationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
