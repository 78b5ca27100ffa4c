package eventbus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := New()
	var count atomic.Int32

	bus.Subscribe(EventPaperRead, func(ctx context.Context, e Event) error {
		count.Add(1)
		return nil
	})
	bus.Subscribe(EventPaperRead, func(ctx context.Context, e Event) error {
		count.Add(1)
		return nil
	})

	event := bus.Publish(context.Background(), Event{Type: EventPaperRead, Source: "a1"})

	assert.Equal(t, int32(2), count.Load())
	assert.True(t, event.Processed)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := New()
	event := bus.Publish(context.Background(), Event{Type: EventPaperRead, Source: "a1"})

	assert.True(t, event.Processed)
	assert.Len(t, bus.History(HistoryFilter{}), 1)
}

func TestFailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := New()
	var succeeded atomic.Bool

	bus.Subscribe(EventPaperRead, func(ctx context.Context, e Event) error {
		return errors.New("boom")
	})
	bus.Subscribe(EventPaperRead, func(ctx context.Context, e Event) error {
		panic("worse")
	})
	bus.Subscribe(EventPaperRead, func(ctx context.Context, e Event) error {
		succeeded.Store(true)
		return nil
	})

	event := bus.Publish(context.Background(), Event{Type: EventPaperRead, Source: "a1"})

	assert.True(t, succeeded.Load())
	assert.True(t, event.Processed, "event is processed even when handlers fail")

	history := bus.History(HistoryFilter{Type: EventPaperRead})
	require.Len(t, history, 1)
	assert.True(t, history[0].Processed)
}

func TestHandlerTimeout(t *testing.T) {
	bus := New(WithHandlerTimeout(20 * time.Millisecond))
	var fastDone atomic.Bool

	bus.Subscribe(EventPaperRead, func(ctx context.Context, e Event) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	bus.Subscribe(EventPaperRead, func(ctx context.Context, e Event) error {
		fastDone.Store(true)
		return nil
	})

	start := time.Now()
	event := bus.Publish(context.Background(), Event{Type: EventPaperRead})

	assert.Less(t, time.Since(start), time.Second, "slow handler must not stall publish")
	assert.True(t, fastDone.Load())
	assert.True(t, event.Processed)
}

func TestUnsubscribe(t *testing.T) {
	bus := New()
	var count atomic.Int32
	handler := func(ctx context.Context, e Event) error {
		count.Add(1)
		return nil
	}

	bus.Subscribe(EventPaperRead, handler)
	bus.Subscribe(EventPaperRead, handler)
	assert.Equal(t, 2, bus.SubscriberCount(EventPaperRead))

	// 只移除第一个匹配项
	assert.True(t, bus.Unsubscribe(EventPaperRead, handler))
	assert.Equal(t, 1, bus.SubscriberCount(EventPaperRead))

	bus.Publish(context.Background(), Event{Type: EventPaperRead})
	assert.Equal(t, int32(1), count.Load())

	assert.True(t, bus.Unsubscribe(EventPaperRead, handler))
	assert.False(t, bus.Unsubscribe(EventPaperRead, handler))
}

func TestHistoryFiltering(t *testing.T) {
	bus := New()
	ctx := context.Background()

	bus.Publish(ctx, Event{Type: EventPaperRead, Source: "a1"})
	bus.Publish(ctx, Event{Type: EventPaperRead, Source: "a2"})
	bus.Publish(ctx, Event{Type: EventConceptLearned, Source: "a1"})

	t.Run("by type", func(t *testing.T) {
		events := bus.History(HistoryFilter{Type: EventPaperRead})
		assert.Len(t, events, 2)
	})

	t.Run("by source", func(t *testing.T) {
		events := bus.History(HistoryFilter{Source: "a1"})
		require.Len(t, events, 2)
		assert.Equal(t, EventPaperRead, events[0].Type)
		assert.Equal(t, EventConceptLearned, events[1].Type)
	})

	t.Run("with limit keeps newest", func(t *testing.T) {
		events := bus.History(HistoryFilter{Limit: 2})
		require.Len(t, events, 2)
		assert.Equal(t, EventConceptLearned, events[1].Type)
	})
}

func TestHistoryCapacity(t *testing.T) {
	bus := New(WithHistoryCapacity(3))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		bus.Publish(ctx, Event{Type: EventPaperRead, Source: "a1"})
	}

	history := bus.History(HistoryFilter{})
	assert.Len(t, history, 3)

	stats := bus.Stats()
	assert.Equal(t, int64(5), stats.TotalPublished)
}

func TestClearHistory(t *testing.T) {
	bus := New()
	bus.Publish(context.Background(), Event{Type: EventPaperRead})

	assert.Equal(t, 1, bus.ClearHistory())
	assert.Empty(t, bus.History(HistoryFilter{}))
}

func TestStats(t *testing.T) {
	bus := New()
	bus.Subscribe(EventPaperRead, func(ctx context.Context, e Event) error { return nil })
	ctx := context.Background()

	bus.Publish(ctx, Event{Type: EventPaperRead})
	bus.Publish(ctx, Event{Type: EventPaperRead})
	bus.Publish(ctx, Event{Type: EventAgentCreated})

	stats := bus.Stats()
	assert.Equal(t, int64(3), stats.TotalPublished)
	assert.Equal(t, int64(3), stats.TotalProcessed)
	assert.Equal(t, int64(2), stats.ByType[EventPaperRead])
	assert.Equal(t, int64(1), stats.ByType[EventAgentCreated])
	assert.Equal(t, 1, stats.Subscribers[EventPaperRead])
	assert.Equal(t, 3, stats.HistorySize)
}

func TestEventTypeValidity(t *testing.T) {
	for _, eventType := range EventTypes() {
		assert.True(t, eventType.Valid(), string(eventType))
	}
	assert.False(t, EventType("coffee_break").Valid())
	assert.Len(t, EventTypes(), 22)
}

func TestEmitHelpers(t *testing.T) {
	bus := New()
	ctx := context.Background()

	bus.EmitAgentCreated(ctx, "a1", "ada", "apprentice")
	bus.EmitAgentPromoted(ctx, "a1", "apprentice", "practitioner")
	bus.EmitPaperRead(ctx, "a1", "p1")
	bus.EmitHelpRequested(ctx, "a1", "m1", "attention")

	history := bus.History(HistoryFilter{Source: "a1"})
	require.Len(t, history, 4)
	assert.Equal(t, "practitioner", history[1].Payload["to_stage"])
	assert.Equal(t, "m1", history[3].Target)
}

func TestConcurrentPublish(t *testing.T) {
	bus := New()
	var count atomic.Int32
	bus.Subscribe(EventPaperRead, func(ctx context.Context, e Event) error {
		count.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(context.Background(), Event{Type: EventPaperRead, Source: "a1"})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), count.Load())
	stats := bus.Stats()
	assert.Equal(t, int64(20), stats.TotalPublished)
	assert.Equal(t, int64(20), stats.TotalProcessed)
	assert.Len(t, bus.History(HistoryFilter{}), 20)
}
