package stream_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk/internal/engagement/stream"
)

func TestEmitFansOutToEventAndAnnouncementClients(t *testing.T) {
	emitter := stream.NewEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventChan := emitter.SubscribeToEvent(ctx, "event-1")
	annChan := emitter.SubscribeToAnnouncement(ctx, "ann-1")
	otherChan := emitter.SubscribeToEvent(ctx, "event-other")

	emitter.Emit(stream.Update{EventID: "event-1", AnnouncementID: "ann-1", Table: "comments"})

	select {
	case update := <-eventChan:
		assert.Equal(t, "comments", update.Table)
	case <-time.After(time.Second):
		t.Fatal("event client did not receive the update")
	}

	select {
	case update := <-annChan:
		assert.Equal(t, "ann-1", update.AnnouncementID)
	case <-time.After(time.Second):
		t.Fatal("announcement client did not receive the update")
	}

	select {
	case <-otherChan:
		t.Fatal("client for a different event must not receive the update")
	default:
	}
}

func TestSlowClientDoesNotBlockEmit(t *testing.T) {
	emitter := stream.NewEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientChan := emitter.SubscribeToEvent(ctx, "event-1")

	// Fill the buffer past capacity; Emit must never block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			emitter.Emit(stream.Update{EventID: "event-1", Table: "announcements"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a slow client")
	}

	// The client still holds a buffer's worth of updates
	assert.NotEmpty(t, clientChan)
}

func TestContextCancelRemovesClient(t *testing.T) {
	emitter := stream.NewEmitter()
	ctx, cancel := context.WithCancel(context.Background())

	clientChan := emitter.SubscribeToEvent(ctx, "event-1")
	require.Equal(t, 1, emitter.GetEventClientCount("event-1"))

	cancel()

	// Removal happens on a goroutine watching ctx.Done()
	deadline := time.Now().Add(2 * time.Second)
	for emitter.GetEventClientCount("event-1") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not removed after context cancellation")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// The channel is closed so the session loop terminates
	_, open := <-clientChan
	assert.False(t, open)
}
