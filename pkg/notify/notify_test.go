package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/klokku/pocketbudget/internal/event_bus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func TestFromEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("should map expense changes", func(t *testing.T) {
		n, ok := FromEvent(event_bus.NewEventAt(ctx, event_bus.ExpensesChangedType, event_bus.ExpensesChanged{
			Action:       event_bus.ExpenseDeleted,
			IDs:          []string{"a", "b"},
			ExpenseCount: 3,
		}, at))

		require.True(t, ok)
		assert.Equal(t, Notification{
			Type: "ledger.expenses.changed",
			At:   at,
			Data: ExpensesChangedDTO{Action: "deleted", IDs: []string{"a", "b"}, ExpenseCount: 3},
		}, n)
	})

	t.Run("should map budget changes", func(t *testing.T) {
		n, ok := FromEvent(event_bus.NewEventAt(ctx, event_bus.BudgetChangedType,
			event_bus.BudgetChanged{Budget: decimal.RequireFromString("750.50")}, at))

		require.True(t, ok)
		assert.Equal(t, BudgetChangedDTO{Budget: "750.5"}, n.Data)
	})

	t.Run("should stamp chat messages with their append time", func(t *testing.T) {
		appended := at.Add(-time.Minute)
		n, ok := FromEvent(event_bus.NewEventAt(ctx, event_bus.ChatMessageAppendedType,
			event_bus.ChatMessageAppended{Role: "user", Text: "hi", AppendedAt: appended}, at))

		require.True(t, ok)
		assert.Equal(t, appended, n.At)
		assert.Equal(t, ChatMessageDTO{Role: "user", Text: "hi"}, n.Data)
	})

	t.Run("should ignore unknown payloads", func(t *testing.T) {
		_, ok := FromEvent(event_bus.NewEventAt(ctx, "other", "payload", at))

		assert.False(t, ok)
	})
}

func TestDispatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("should route by type", func(t *testing.T) {
		ledgerSink := &RecordingSink{}
		everythingSink := &RecordingSink{}
		d := NewDispatcher()
		d.Route(ledgerSink, string(event_bus.ExpensesChangedType))
		d.Route(everythingSink, string(event_bus.ExpensesChangedType), string(event_bus.ChatMessageAppendedType))

		require.NoError(t, d.Send(ctx, Notification{Type: string(event_bus.ChatMessageAppendedType)}))
		require.NoError(t, d.Send(ctx, Notification{Type: string(event_bus.ExpensesChangedType)}))

		assert.Len(t, ledgerSink.Sent(), 1)
		assert.Len(t, everythingSink.Sent(), 2)
	})

	t.Run("should deliver to every sink and join errors", func(t *testing.T) {
		failing := &RecordingSink{Err: errors.New("broker down")}
		healthy := &RecordingSink{}
		d := NewDispatcher()
		d.Route(failing, BudgetLevelType)
		d.Route(healthy, BudgetLevelType)

		err := d.Send(ctx, Notification{Type: BudgetLevelType})

		assert.ErrorContains(t, err, "broker down")
		assert.Len(t, healthy.Sent(), 1)
	})

	t.Run("should forward bus events until unsubscribed", func(t *testing.T) {
		sink := &RecordingSink{}
		d := NewDispatcher()
		d.Route(sink, string(event_bus.BudgetChangedType))
		bus := event_bus.NewEventBus()
		unsubscribe := d.Subscribe(bus)

		require.NoError(t, bus.Publish(event_bus.NewEventAt(ctx, event_bus.BudgetChangedType,
			event_bus.BudgetChanged{Budget: decimal.NewFromInt(10)}, at)))
		unsubscribe()
		require.NoError(t, bus.Publish(event_bus.NewEventAt(ctx, event_bus.BudgetChangedType,
			event_bus.BudgetChanged{Budget: decimal.NewFromInt(20)}, at)))

		sent := sink.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, BudgetChangedDTO{Budget: "10"}, sent[0].Data)
	})
}
