package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/klokku/pocketbudget/internal/event_bus"
	"github.com/klokku/pocketbudget/internal/utils"
	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/klokku/pocketbudget/pkg/kvstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)

func setupStoreTest(t *testing.T) (*StoreImpl, context.Context, *StubRepository, *event_bus.EventBus) {
	t.Helper()
	ctx := context.Background()
	repo := NewStubRepository()
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: now}
	store := NewStore(repo, category.Default(), &SequenceIDGenerator{}, bus, clock)
	store.Load(ctx, decimal.NewFromInt(1000))
	return store, ctx, repo, bus
}

func draft(desc string, amount string, cat category.Name, date Date) Draft {
	return Draft{
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Category:    cat,
		Date:        date,
	}
}

func assertSortedByDateDesc(t *testing.T, expenses []Expense) {
	t.Helper()
	for i := 1; i < len(expenses); i++ {
		assert.False(t, expenses[i].Date.After(expenses[i-1].Date.Time),
			"expense %d (%s) is newer than expense %d (%s)", i, expenses[i].Date, i-1, expenses[i-1].Date)
	}
}

func ids(expenses []Expense) []string {
	result := make([]string, 0, len(expenses))
	for _, e := range expenses {
		result = append(result, e.ID)
	}
	return result
}

func TestStore_Add(t *testing.T) {
	t.Run("should store valid draft and persist snapshot", func(t *testing.T) {
		store, ctx, repo, _ := setupStoreTest(t)

		created, err := store.Add(ctx, draft("  Coffee ", "4.5", category.Food, NewDate(2024, 1, 10)))

		require.NoError(t, err)
		assert.Equal(t, "id-1", created.ID)
		assert.Equal(t, "Coffee", created.Description)
		assert.Equal(t, []Expense{created}, store.List(ctx))
		assert.Equal(t, []Expense{created}, repo.Stored())
	})

	t.Run("should keep date descending order with newest insert first within a day", func(t *testing.T) {
		store, ctx, _, _ := setupStoreTest(t)

		dates := []Date{
			NewDate(2024, 1, 5),
			NewDate(2024, 1, 9),
			NewDate(2023, 12, 31),
			NewDate(2024, 1, 9),
			NewDate(2024, 1, 7),
		}
		for _, d := range dates {
			_, err := store.Add(ctx, draft("item", "1", category.Other, d))
			require.NoError(t, err)
			assertSortedByDateDesc(t, store.List(ctx))
		}

		assert.Equal(t, []string{"id-4", "id-2", "id-5", "id-1", "id-3"}, ids(store.List(ctx)))
	})

	t.Run("should reject invalid drafts without writing", func(t *testing.T) {
		tests := []struct {
			name    string
			draft   Draft
			wantErr error
		}{
			{"zero amount", draft("Lunch", "0", category.Food, NewDate(2024, 1, 1)), ErrInvalidAmount},
			{"negative amount", draft("Lunch", "-3", category.Food, NewDate(2024, 1, 1)), ErrInvalidAmount},
			{"blank description", draft("   ", "3", category.Food, NewDate(2024, 1, 1)), ErrEmptyDescription},
			{"unknown category", draft("Lunch", "3", category.Name("Pets"), NewDate(2024, 1, 1)), category.ErrCategoryNotFound},
			{"missing date", draft("Lunch", "3", category.Food, Date{}), ErrInvalidDate},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store, ctx, repo, _ := setupStoreTest(t)

				_, err := store.Add(ctx, tt.draft)

				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsValidationError(err))
				assert.Empty(t, store.List(ctx))
				assert.Equal(t, 0, repo.Writes)
			})
		}
	})

	t.Run("should leave memory untouched when persisting fails", func(t *testing.T) {
		store, ctx, repo, _ := setupStoreTest(t)
		repo.FailWrite = true

		_, err := store.Add(ctx, draft("Coffee", "4.5", category.Food, NewDate(2024, 1, 10)))

		assert.Error(t, err)
		assert.Empty(t, store.List(ctx))
	})

	t.Run("should publish change event", func(t *testing.T) {
		store, ctx, _, bus := setupStoreTest(t)
		var received []event_bus.ExpensesChanged
		event_bus.SubscribeTyped(bus, event_bus.ExpensesChangedType, func(e event_bus.EventT[event_bus.ExpensesChanged]) error {
			received = append(received, e.Data)
			// subscribers may read the store while handling the event
			assert.Len(t, store.List(e.Context()), e.Data.ExpenseCount)
			return nil
		})

		created, err := store.Add(ctx, draft("Coffee", "4.5", category.Food, NewDate(2024, 1, 10)))

		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, event_bus.ExpenseAdded, received[0].Action)
		assert.Equal(t, []string{created.ID}, received[0].IDs)
	})
}

func TestStore_Update(t *testing.T) {
	t.Run("should replace record and move it first within its day", func(t *testing.T) {
		store, ctx, repo, _ := setupStoreTest(t)
		first, _ := store.Add(ctx, draft("Bus", "2", category.Transport, NewDate(2024, 1, 9)))
		_, _ = store.Add(ctx, draft("Cinema", "12", category.Entertainment, NewDate(2024, 1, 9)))
		_, _ = store.Add(ctx, draft("Rent", "800", category.Rent, NewDate(2024, 1, 1)))

		edited := first
		edited.Amount = decimal.RequireFromString("2.80")
		err := store.Update(ctx, edited)

		require.NoError(t, err)
		list := store.List(ctx)
		assert.Equal(t, []string{"id-1", "id-2", "id-3"}, ids(list))
		assert.True(t, list[0].Amount.Equal(decimal.RequireFromString("2.8")))
		assert.Equal(t, list, repo.Stored())
	})

	t.Run("should re-sort when the date changes", func(t *testing.T) {
		store, ctx, _, _ := setupStoreTest(t)
		old, _ := store.Add(ctx, draft("Gym", "30", category.Health, NewDate(2023, 11, 1)))
		_, _ = store.Add(ctx, draft("Bus", "2", category.Transport, NewDate(2024, 1, 9)))

		old.Date = NewDate(2024, 1, 10)
		require.NoError(t, store.Update(ctx, old))

		assert.Equal(t, []string{"id-1", "id-2"}, ids(store.List(ctx)))
		assertSortedByDateDesc(t, store.List(ctx))
	})

	t.Run("should fail for unknown id", func(t *testing.T) {
		store, ctx, repo, _ := setupStoreTest(t)

		err := store.Update(ctx, Expense{
			ID:          "missing",
			Description: "Ghost",
			Amount:      decimal.NewFromInt(1),
			Category:    category.Other,
			Date:        NewDate(2024, 1, 1),
		})

		assert.ErrorIs(t, err, ErrExpenseNotFound)
		assert.Equal(t, 0, repo.Writes)
	})

	t.Run("should validate replacement", func(t *testing.T) {
		store, ctx, _, _ := setupStoreTest(t)
		created, _ := store.Add(ctx, draft("Bus", "2", category.Transport, NewDate(2024, 1, 9)))

		created.Category = "Unknown"
		err := store.Update(ctx, created)

		assert.ErrorIs(t, err, category.ErrCategoryNotFound)
		got, _ := store.Get(ctx, created.ID)
		assert.Equal(t, category.Transport, got.Category)
	})
}

func TestStore_Delete(t *testing.T) {
	t.Run("should remove all matching ids in one write", func(t *testing.T) {
		store, ctx, repo, _ := setupStoreTest(t)
		for i := 1; i <= 3; i++ {
			_, err := store.Add(ctx, draft("item", "1", category.Other, NewDate(2024, 1, i)))
			require.NoError(t, err)
		}
		writesBefore := repo.Writes

		removed, err := store.Delete(ctx, []string{"id-1", "id-3", "unknown"})

		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		assert.Equal(t, []string{"id-2"}, ids(store.List(ctx)))
		assert.Equal(t, writesBefore+1, repo.Writes)
	})

	t.Run("should be a no-op for absent ids", func(t *testing.T) {
		store, ctx, repo, _ := setupStoreTest(t)

		removed, err := store.Delete(ctx, []string{"nope"})

		require.NoError(t, err)
		assert.Equal(t, 0, removed)
		assert.Equal(t, 0, repo.Writes)
	})
}

func TestStore_Budget(t *testing.T) {
	t.Run("should default when nothing is stored", func(t *testing.T) {
		store, ctx, _, _ := setupStoreTest(t)

		assert.True(t, store.Budget(ctx).Equal(decimal.NewFromInt(1000)))
	})

	t.Run("should persist new budget and publish event", func(t *testing.T) {
		store, ctx, repo, bus := setupStoreTest(t)
		var published decimal.Decimal
		event_bus.SubscribeTyped(bus, event_bus.BudgetChangedType, func(e event_bus.EventT[event_bus.BudgetChanged]) error {
			published = e.Data.Budget
			return nil
		})

		err := store.SetBudget(ctx, decimal.RequireFromString("1500.50"))

		require.NoError(t, err)
		assert.True(t, store.Budget(ctx).Equal(decimal.RequireFromString("1500.5")))
		assert.True(t, repo.LoadBudget(ctx, decimal.Zero).Equal(decimal.RequireFromString("1500.5")))
		assert.True(t, published.Equal(decimal.RequireFromString("1500.5")))
	})

	t.Run("should reject negative budget", func(t *testing.T) {
		store, ctx, repo, _ := setupStoreTest(t)

		err := store.SetBudget(ctx, decimal.NewFromInt(-1))

		assert.ErrorIs(t, err, ErrNegativeBudget)
		assert.Equal(t, 0, repo.Writes)
	})

	t.Run("should accept zero budget", func(t *testing.T) {
		store, ctx, _, _ := setupStoreTest(t)

		require.NoError(t, store.SetBudget(ctx, decimal.Zero))
		assert.True(t, store.Budget(ctx).IsZero())
	})
}

func TestStore_LoadSortsPersistedLedger(t *testing.T) {
	ctx := context.Background()
	repo := NewStubRepository()
	require.NoError(t, repo.StoreExpenses(ctx, []Expense{
		{ID: "a", Description: "a", Amount: decimal.NewFromInt(1), Category: category.Food, Date: NewDate(2024, 1, 1)},
		{ID: "b", Description: "b", Amount: decimal.NewFromInt(1), Category: category.Food, Date: NewDate(2024, 2, 1)},
	}))
	store := NewStore(repo, category.Default(), &SequenceIDGenerator{}, nil, &utils.MockClock{FixedNow: now})

	store.Load(ctx, decimal.NewFromInt(1000))

	assert.Equal(t, []string{"b", "a"}, ids(store.List(ctx)))
}

func TestStore_LoadSkipsRecordsViolatingInvariants(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	raw := `[
		{"id":"a","description":"","amount":3,"category":"Food","date":"2024-01-10"},
		{"id":"b","description":"Refund","amount":-3,"category":"Food","date":"2024-01-10"},
		{"id":"c","description":"Zero","amount":0,"category":"Food","date":"2024-01-10"},
		{"id":"d","description":"Apples","amount":3,"category":"Groceries","date":"2024-01-10"},
		{"id":"e","description":"  Lunch ","amount":12.5,"category":"Food","date":"2024-01-09"}
	]`
	require.NoError(t, kv.Set(ctx, kvstore.KeyExpenses, []byte(raw)))
	store := NewStore(NewRepository(kv), category.Default(), &SequenceIDGenerator{}, nil, &utils.MockClock{FixedNow: now})

	store.Load(ctx, decimal.NewFromInt(1000))

	loaded := store.List(ctx)
	require.Len(t, loaded, 1)
	assert.Equal(t, "e", loaded[0].ID)
	assert.Equal(t, "Lunch", loaded[0].Description)
	assert.True(t, loaded[0].Amount.Equal(decimal.RequireFromString("12.5")))
}

func TestTimeUUIDGenerator_Unique(t *testing.T) {
	generator := NewTimeUUIDGenerator(&utils.MockClock{FixedNow: now})
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := generator.NewID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
