package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/titleforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

func TestTrackEvent(t *testing.T) {
	store := &fakeStore{}
	sink := NewTelemetrySink(logger.NewNop(), store, nil, TelemetryConfig{})
	svc := NewEventService(logger.NewNop(), sink)

	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: "verified", SessionID: "s-1"})
	require.NoError(t, svc.Track(ctx, TrackEventInput{UserID: "spoofed", EventType: "page_view", EventLabel: "home"}))
	require.NoError(t, svc.Track(context.Background(), TrackEventInput{UserID: "anon-claimed", EventType: "click"}))
	require.NoError(t, sink.Close(context.Background()))

	events := store.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, "verified", *events[0].UserID)
	assert.Equal(t, "s-1", *events[0].SessionID)
	assert.Equal(t, "home", *events[0].EventLabel)
	assert.Nil(t, events[0].EventAction)
	assert.Equal(t, "anon-claimed", *events[1].UserID)
}

func TestTrackEventRejects(t *testing.T) {
	store := &fakeStore{}
	sink := NewTelemetrySink(logger.NewNop(), store, nil, TelemetryConfig{})
	svc := NewEventService(logger.NewNop(), sink)

	assert.ErrorIs(t, svc.Track(context.Background(), TrackEventInput{}), ErrInvalidInput)
	assert.ErrorIs(t, svc.Track(context.Background(), TrackEventInput{EventType: "title_generation", EventAction: "generate"}), ErrInvalidInput)

	require.NoError(t, sink.Close(context.Background()))
	assert.Empty(t, store.recorded())
}
