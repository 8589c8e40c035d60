package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realty/backend/internal/domain/shared"
)

func newDraftOrder(t *testing.T) *ReservationOrder {
	t.Helper()
	o, err := NewReservationOrder("RES-2026-0001", "Les Jardins", nil)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func addLine(t *testing.T, o *ReservationOrder) uuid.UUID {
	t.Helper()
	propertyID := uuid.New()
	require.NoError(t, o.AddLine(propertyID, uuid.New(), uuid.New(),
		"Les Jardins / B / floor 1 / 85m2 / 3 rooms", decimal.NewFromInt(1200000)))
	return propertyID
}

func TestNewReservationOrder(t *testing.T) {
	t.Run("draft without customer", func(t *testing.T) {
		o := newDraftOrder(t)
		assert.Equal(t, OrderStatusDraft, o.Status)
		assert.True(t, o.CustomerPending())
	})

	t.Run("rejects empty order number", func(t *testing.T) {
		_, err := NewReservationOrder("  ", "", nil)
		assert.Error(t, err)
	})
}

func TestReservationLines(t *testing.T) {
	t.Run("single property line", func(t *testing.T) {
		o := newDraftOrder(t)
		addLine(t, o)

		err := o.AddLine(uuid.New(), uuid.New(), uuid.New(), "", decimal.NewFromInt(1))
		assert.Error(t, err)
		assert.Len(t, o.Lines, 1)
	})

	t.Run("duplicate property is rejected", func(t *testing.T) {
		o := newDraftOrder(t)
		propertyID := addLine(t, o)

		err := o.AddLine(propertyID, uuid.New(), uuid.New(), "", decimal.NewFromInt(1))
		assert.Error(t, err)
	})

	t.Run("remove line", func(t *testing.T) {
		o := newDraftOrder(t)
		propertyID := addLine(t, o)

		require.NoError(t, o.RemoveLine(propertyID))
		assert.Empty(t, o.Lines)
		assert.Nil(t, o.PropertyLine())
	})

	t.Run("remove unknown line fails", func(t *testing.T) {
		o := newDraftOrder(t)
		assert.Error(t, o.RemoveLine(uuid.New()))
	})
}

func TestConfirm(t *testing.T) {
	t.Run("requires a real customer", func(t *testing.T) {
		o := newDraftOrder(t)
		addLine(t, o)

		err := o.Confirm()
		assert.ErrorIs(t, err, shared.ErrPendingCustomer)
		assert.Equal(t, OrderStatusDraft, o.Status)
	})

	t.Run("requires at least one line", func(t *testing.T) {
		o := newDraftOrder(t)
		require.NoError(t, o.AssignCustomer(uuid.New()))
		assert.Error(t, o.Confirm())
	})

	t.Run("confirms with customer and line", func(t *testing.T) {
		o := newDraftOrder(t)
		addLine(t, o)
		require.NoError(t, o.AssignCustomer(uuid.New()))

		require.NoError(t, o.Confirm())
		assert.Equal(t, OrderStatusConfirmed, o.Status)
		require.NotNil(t, o.ConfirmedAt)
	})

	t.Run("confirms from reserved", func(t *testing.T) {
		o := newDraftOrder(t)
		addLine(t, o)
		require.NoError(t, o.MarkReserved())
		require.NoError(t, o.AssignCustomer(uuid.New()))

		require.NoError(t, o.Confirm())
		assert.Equal(t, OrderStatusConfirmed, o.Status)
	})

	t.Run("cannot confirm twice", func(t *testing.T) {
		o := newDraftOrder(t)
		addLine(t, o)
		require.NoError(t, o.AssignCustomer(uuid.New()))
		require.NoError(t, o.Confirm())
		assert.Error(t, o.Confirm())
	})
}

func TestCancel(t *testing.T) {
	t.Run("cancels a draft order", func(t *testing.T) {
		o := newDraftOrder(t)
		require.NoError(t, o.Cancel("customer withdrew"))
		assert.Equal(t, OrderStatusCancelled, o.Status)
		assert.Equal(t, "customer withdrew", o.CancelReason)
		assert.False(t, o.Status.IsActive())
	})

	t.Run("cancels a confirmed order", func(t *testing.T) {
		o := newDraftOrder(t)
		addLine(t, o)
		require.NoError(t, o.AssignCustomer(uuid.New()))
		require.NoError(t, o.Confirm())

		require.NoError(t, o.Cancel(""))
		assert.Equal(t, OrderStatusCancelled, o.Status)
	})

	t.Run("cannot cancel a done order", func(t *testing.T) {
		o := newDraftOrder(t)
		addLine(t, o)
		require.NoError(t, o.AssignCustomer(uuid.New()))
		require.NoError(t, o.Confirm())
		require.NoError(t, o.MarkDone())

		assert.Error(t, o.Cancel(""))
	})

	t.Run("cannot cancel twice", func(t *testing.T) {
		o := newDraftOrder(t)
		require.NoError(t, o.Cancel(""))
		assert.Error(t, o.Cancel(""))
	})
}

func TestAssignCustomerAfterConfirm(t *testing.T) {
	o := newDraftOrder(t)
	addLine(t, o)
	require.NoError(t, o.AssignCustomer(uuid.New()))
	require.NoError(t, o.Confirm())

	assert.Error(t, o.AssignCustomer(uuid.New()))
}

func TestTotal(t *testing.T) {
	o := newDraftOrder(t)
	addLine(t, o)
	assert.True(t, o.Total().Equal(decimal.NewFromInt(1200000)))
}
