package stats

import (
	"testing"
	"time"

	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/klokku/pocketbudget/pkg/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalSpent(t *testing.T) {
	assert.True(t, TotalSpent(nil).IsZero())
	assert.True(t, TotalSpent(sampleLedger).Equal(decimal.RequireFromString("147.4")))
}

func TestCategoryBreakdown(t *testing.T) {
	registry := category.Default()

	t.Run("should sort by amount descending", func(t *testing.T) {
		breakdown := CategoryBreakdown(sampleLedger, registry)

		require.Len(t, breakdown, 4)
		assert.Equal(t, category.Utilities, breakdown[0].Category)
		assert.Equal(t, category.Transport, breakdown[1].Category)
		assert.Equal(t, category.Food, breakdown[2].Category)
		assert.True(t, breakdown[2].Amount.Equal(decimal.RequireFromString("28.3")))
		assert.Equal(t, category.Entertainment, breakdown[3].Category)
	})

	t.Run("should break ties by registry order", func(t *testing.T) {
		expenses := []ledger.Expense{
			expense("1", "a", "10", category.Other, ledger.NewDate(2024, 1, 1)),
			expense("2", "b", "10", category.Transport, ledger.NewDate(2024, 1, 1)),
			expense("3", "c", "10", category.Food, ledger.NewDate(2024, 1, 1)),
		}

		breakdown := CategoryBreakdown(expenses, registry)

		require.Len(t, breakdown, 3)
		assert.Equal(t, []category.Name{category.Food, category.Transport, category.Other},
			[]category.Name{breakdown[0].Category, breakdown[1].Category, breakdown[2].Category})
	})

	t.Run("percentages sum to 100", func(t *testing.T) {
		inputs := [][]ledger.Expense{
			sampleLedger,
			{
				expense("1", "a", "1", category.Food, ledger.NewDate(2024, 1, 1)),
				expense("2", "b", "1", category.Rent, ledger.NewDate(2024, 1, 1)),
				expense("3", "c", "1", category.Health, ledger.NewDate(2024, 1, 1)),
			},
			{
				expense("1", "a", "0.01", category.Food, ledger.NewDate(2024, 1, 1)),
				expense("2", "b", "99999.99", category.Rent, ledger.NewDate(2024, 1, 1)),
			},
		}
		for _, expenses := range inputs {
			sum := 0.0
			for _, row := range CategoryBreakdown(expenses, registry) {
				sum += row.Percentage
			}
			assert.InDelta(t, 100.0, sum, 1e-6)
		}
	})

	t.Run("should be empty for empty input", func(t *testing.T) {
		assert.Empty(t, CategoryBreakdown(nil, registry))
	})
}

func TestTrend(t *testing.T) {
	reference := ledger.NewDate(2024, 1, 10)

	t.Run("should bucket the last seven days", func(t *testing.T) {
		expenses := []ledger.Expense{
			expense("1", "a", "5", category.Food, ledger.NewDate(2024, 1, 10)),
			expense("2", "b", "2.5", category.Food, ledger.NewDate(2024, 1, 10)),
			expense("3", "c", "7", category.Food, ledger.NewDate(2024, 1, 4)),
			expense("4", "too old", "100", category.Food, ledger.NewDate(2024, 1, 3)),
			expense("5", "future", "100", category.Food, ledger.NewDate(2024, 1, 11)),
		}

		trend := Trend(expenses, reference, TrendWindowDays, time.UTC)

		require.Len(t, trend, 7)
		assert.Equal(t, ledger.NewDate(2024, 1, 4), trend[0].Date)
		assert.Equal(t, "Jan 4", trend[0].Label)
		assert.True(t, trend[0].Amount.Equal(decimal.NewFromInt(7)))
		assert.Equal(t, ledger.NewDate(2024, 1, 10), trend[6].Date)
		assert.Equal(t, "Jan 10", trend[6].Label)
		assert.True(t, trend[6].Amount.Equal(decimal.RequireFromString("7.5")))
		for i := 1; i < 6; i++ {
			assert.True(t, trend[i].Amount.IsZero(), "bucket %d", i)
		}
	})

	t.Run("should always return window size in ascending order", func(t *testing.T) {
		for _, expenses := range [][]ledger.Expense{nil, sampleLedger} {
			trend := Trend(expenses, reference, TrendWindowDays, time.UTC)

			require.Len(t, trend, TrendWindowDays)
			for i := 1; i < len(trend); i++ {
				assert.True(t, trend[i].Date.After(trend[i-1].Date.Time))
			}
		}
	})

	t.Run("should cross month and DST boundaries", func(t *testing.T) {
		warsaw := mustLocation(t, "Europe/Warsaw")

		trend := Trend(nil, ledger.NewDate(2024, 4, 2), TrendWindowDays, warsaw)

		labels := make([]string, 0, len(trend))
		for _, p := range trend {
			labels = append(labels, p.Label)
		}
		assert.Equal(t, []string{"Mar 27", "Mar 28", "Mar 29", "Mar 30", "Mar 31", "Apr 1", "Apr 2"}, labels)
	})

	t.Run("should be deterministic", func(t *testing.T) {
		assert.Equal(t,
			Trend(sampleLedger, reference, TrendWindowDays, time.UTC),
			Trend(sampleLedger, reference, TrendWindowDays, time.UTC))
	})
}
