package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/titleforge-backend/internal/catalog"
	"github.com/yungbote/titleforge-backend/internal/domain/usage"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

type titleHarness struct {
	store *fakeStore
	gen   *fakeGenerator
	sink  TelemetrySink
	svc   TitleService
}

func newTitleHarness(t *testing.T, store *fakeStore, gen *fakeGenerator, limit int) *titleHarness {
	t.Helper()
	log := logger.NewNop()
	c := catalog.MustDefault()
	var es EventStore
	if store != nil {
		es = store
	}
	sink := NewTelemetrySink(log, es, nil, TelemetryConfig{Workers: 1, StoreTimeout: time.Second})
	sink.Start(context.Background())
	svc := NewTitleService(
		log,
		NewQuotaLedger(log, es, limit, time.Second),
		gen,
		NewPromptBuilder(c),
		NewOutputValidator(c),
		sink,
		TitleServiceConfig{GenerationTimeout: time.Second, MaxDescriptionChars: 5000},
	)
	return &titleHarness{store: store, gen: gen, sink: sink, svc: svc}
}

// drain flushes the sink so recorded events are observable.
func (h *titleHarness) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, h.sink.Close(context.Background()))
}

func TestGenerateSuccess(t *testing.T) {
	h := newTitleHarness(t, &fakeStore{}, &fakeGenerator{text: "A\nB\nC\nD\nE"}, 20)

	res, err := h.svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", SessionID: "sess-1", Description: "morning routine"})
	require.NoError(t, err)
	require.Len(t, res.Variations, 5)
	for i, tv := range res.Variations {
		assert.Equal(t, string(rune('A'+i)), tv.Text)
		assert.Equal(t, 1, tv.CharacterCount)
	}
	assert.Equal(t, "Curiosity Gap", res.Variations[0].Formula)
	assert.Equal(t, usage.QuotaState{Count: 1, Remaining: 19, Limit: 20}, res.Quota)
	assert.Equal(t, 1, h.gen.callCount())
	assert.Contains(t, h.gen.prompts[0], `"morning routine"`)

	h.drain(t)
	events := h.store.recorded()
	require.Len(t, events, 1)
	ev := events[0]
	assert.True(t, ev.IsGeneration())
	assert.Equal(t, "user-1", *ev.UserID)
	assert.Equal(t, "sess-1", *ev.SessionID)
	assert.Equal(t, usage.EventCategoryEngagement, *ev.EventCategory)
	assert.Equal(t, usage.EventLabelYouTubeTitles, *ev.EventLabel)
	assert.Equal(t, 1.0, *ev.EventValue)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(ev.Metadata, &meta))
	assert.Equal(t, "fake-model", meta["model"])
}

func TestGenerateMalformedOutputRecordsNothing(t *testing.T) {
	h := newTitleHarness(t, &fakeStore{}, &fakeGenerator{text: "A\nB\nC"}, 20)

	_, err := h.svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", Description: "d"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, ErrMalformedOutput)
	assert.Equal(t, FailureShape, FailureStage(err))

	h.drain(t)
	assert.Empty(t, h.store.recorded())
}

func TestGenerateProviderFailureRecordsNothing(t *testing.T) {
	h := newTitleHarness(t, &fakeStore{}, &fakeGenerator{err: errors.New("503 from upstream")}, 20)

	_, err := h.svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", Description: "d"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, FailureProvider, FailureStage(err))

	h.drain(t)
	assert.Empty(t, h.store.recorded())
}

func TestGenerateQuotaExceededSkipsGenerator(t *testing.T) {
	h := newTitleHarness(t, &fakeStore{seeded: 20}, &fakeGenerator{text: "A\nB\nC\nD\nE"}, 20)

	_, err := h.svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", Description: "d"})
	var qe *QuotaExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 20, qe.Limit)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Zero(t, h.gen.callCount())

	h.drain(t)
	assert.Empty(t, h.store.recorded())
}

func TestGenerateInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		req  GenerateRequest
		want error
	}{
		{name: "empty", req: GenerateRequest{UserID: "user-1"}, want: ErrInvalidInput},
		{name: "whitespace", req: GenerateRequest{UserID: "user-1", Description: " \n\t "}, want: ErrInvalidInput},
		{name: "too_long", req: GenerateRequest{UserID: "user-1", Description: strings.Repeat("x", 5001)}, want: ErrInvalidInput},
		{name: "anonymous", req: GenerateRequest{Description: "d"}, want: ErrUnauthenticated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			h := newTitleHarness(t, store, &fakeGenerator{text: "A\nB\nC\nD\nE"}, 20)
			_, err := h.svc.Generate(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.Zero(t, h.gen.callCount())
			assert.Zero(t, store.countCalls, "quota must not be consulted")
			h.drain(t)
		})
	}
}

func TestGenerateSurvivesTelemetryFailure(t *testing.T) {
	store := &fakeStore{appendErr: errors.New("store down")}
	h := newTitleHarness(t, store, &fakeGenerator{text: "A\nB\nC\nD\nE"}, 20)

	res, err := h.svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", Description: "d"})
	require.NoError(t, err)
	assert.Len(t, res.Variations, 5)
	h.drain(t)
}

func TestGenerateFailsOpenWithoutStore(t *testing.T) {
	h := newTitleHarness(t, nil, &fakeGenerator{text: "A\nB\nC\nD\nE"}, 20)

	res, err := h.svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Quota.Limit)
	h.drain(t)
}

func TestGenerateCountsTowardQuota(t *testing.T) {
	store := &fakeStore{seeded: 18}
	gen := &fakeGenerator{text: "A\nB\nC\nD\nE"}
	log := logger.NewNop()
	c := catalog.MustDefault()
	sink := NewTelemetrySink(log, store, nil, TelemetryConfig{})
	svc := NewTitleService(log, NewQuotaLedger(log, store, 20, time.Second), gen,
		NewPromptBuilder(c), NewOutputValidator(c), sink, TitleServiceConfig{})

	// Without workers, Close flushes the backlog inline.
	for i := 0; i < 2; i++ {
		_, err := svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", Description: "d"})
		require.NoError(t, err)
		store.mu.Lock()
		store.seeded++
		store.mu.Unlock()
	}
	_, err := svc.Generate(context.Background(), GenerateRequest{UserID: "user-1", Description: "d"})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 2, gen.callCount())
	require.NoError(t, sink.Close(context.Background()))
}

func TestGenerateHonoursCallerCancellation(t *testing.T) {
	gen := &blockingGenerator{}
	log := logger.NewNop()
	c := catalog.MustDefault()
	sink := NewTelemetrySink(log, &fakeStore{}, nil, TelemetryConfig{})
	svc := NewTitleService(log, NewQuotaLedger(log, &fakeStore{}, 20, time.Second), gen,
		NewPromptBuilder(c), NewOutputValidator(c), sink, TitleServiceConfig{GenerationTimeout: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Generate(ctx, GenerateRequest{UserID: "user-1", Description: "d"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, sink.Close(context.Background()))
}

type blockingGenerator struct{}

func (blockingGenerator) Complete(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
