package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/realty/backend/internal/domain/billing"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/infrastructure/cache"
)

// countingHandler records how many deliveries reached it
type countingHandler struct {
	calls int
	err   error
}

func (h *countingHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoicePaid}
}

func (h *countingHandler) Handle(context.Context, shared.DomainEvent) error {
	h.calls++
	return h.err
}

func newPaidEvent() shared.DomainEvent {
	return billing.NewInvoicePaidEvent(uuid.New(), "RES-2026-0001", decimal.NewFromInt(250000), true)
}

func TestIdempotentHandler(t *testing.T) {
	ctx := context.Background()

	newStore := func(t *testing.T) *cache.InMemoryIdempotencyStore {
		store := cache.NewInMemoryIdempotencyStore(0)
		t.Cleanup(func() { _ = store.Close() })
		return store
	}

	t.Run("same event delivered twice is processed once", func(t *testing.T) {
		inner := &countingHandler{}
		h := NewIdempotentHandler(inner, newStore(t), zap.NewNop())

		evt := newPaidEvent()
		require.NoError(t, h.Handle(ctx, evt))
		require.NoError(t, h.Handle(ctx, evt))

		assert.Equal(t, 1, inner.calls)
	})

	t.Run("distinct events are each processed", func(t *testing.T) {
		inner := &countingHandler{}
		h := NewIdempotentHandler(inner, newStore(t), zap.NewNop())

		require.NoError(t, h.Handle(ctx, newPaidEvent()))
		require.NoError(t, h.Handle(ctx, newPaidEvent()))

		assert.Equal(t, 2, inner.calls)
	})

	t.Run("disabled config passes duplicates through", func(t *testing.T) {
		inner := &countingHandler{}
		h := NewIdempotentHandler(inner, newStore(t), zap.NewNop(),
			WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))

		evt := newPaidEvent()
		require.NoError(t, h.Handle(ctx, evt))
		require.NoError(t, h.Handle(ctx, evt))

		assert.Equal(t, 2, inner.calls)
	})

	t.Run("key expires after the ttl", func(t *testing.T) {
		inner := &countingHandler{}
		h := NewIdempotentHandler(inner, newStore(t), zap.NewNop(),
			WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: true, TTL: 20 * time.Millisecond}))

		evt := newPaidEvent()
		require.NoError(t, h.Handle(ctx, evt))
		time.Sleep(40 * time.Millisecond)
		require.NoError(t, h.Handle(ctx, evt))

		assert.Equal(t, 2, inner.calls)
	})

	t.Run("handler failure keeps the key as a cooldown", func(t *testing.T) {
		inner := &countingHandler{err: errors.New("order not found")}
		h := NewIdempotentHandler(inner, newStore(t), zap.NewNop())

		evt := newPaidEvent()
		require.Error(t, h.Handle(ctx, evt))
		require.NoError(t, h.Handle(ctx, evt))

		assert.Equal(t, 1, inner.calls)
	})

	t.Run("exposes the wrapped handler's event types", func(t *testing.T) {
		h := NewIdempotentHandler(&countingHandler{}, newStore(t), zap.NewNop())
		assert.Equal(t, []string{billing.EventTypeInvoicePaid}, h.EventTypes())
	})
}

func TestInMemoryIdempotencyStoreJanitor(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(10 * time.Millisecond)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	fresh, err := store.MarkProcessed(ctx, "evt-1", 5*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, fresh)

	time.Sleep(30 * time.Millisecond)

	processed, err := store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, processed)

	fresh, err = store.MarkProcessed(ctx, "evt-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
}
