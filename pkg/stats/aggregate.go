package stats

import (
	"slices"
	"time"

	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/klokku/pocketbudget/pkg/ledger"
	"github.com/shopspring/decimal"
)

const TrendWindowDays = 7

var hundred = decimal.NewFromInt(100)

type CategoryAmount struct {
	Category   category.Name
	Amount     decimal.Decimal
	Percentage float64
}

type TrendPoint struct {
	Date   ledger.Date
	Amount decimal.Decimal
	Label  string
}

func TotalSpent(expenses []ledger.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// CategoryBreakdown sums amounts per category, largest first. Equal amounts follow the
// registry order. An empty or zero total yields no rows.
func CategoryBreakdown(expenses []ledger.Expense, registry *category.Registry) []CategoryAmount {
	total := TotalSpent(expenses)
	if total.IsZero() {
		return []CategoryAmount{}
	}

	sums := map[category.Name]decimal.Decimal{}
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}

	result := make([]CategoryAmount, 0, len(sums))
	for name, amount := range sums {
		result = append(result, CategoryAmount{
			Category:   name,
			Amount:     amount,
			Percentage: amount.Div(total).Mul(hundred).InexactFloat64(),
		})
	}
	slices.SortFunc(result, func(a, b CategoryAmount) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return registry.Position(a.Category) - registry.Position(b.Category)
	})
	return result
}

// Trend builds windowDays daily buckets ending at reference, oldest first.
// Expenses outside the window are ignored.
func Trend(expenses []ledger.Expense, reference ledger.Date, windowDays int, loc *time.Location) []TrendPoint {
	if windowDays <= 0 {
		return []TrendPoint{}
	}

	points := make([]TrendPoint, windowDays)
	index := make(map[int64]int, windowDays)
	for i := 0; i < windowDays; i++ {
		day := ledger.Date{Time: reference.AddDate(0, 0, i-windowDays+1)}
		points[i] = TrendPoint{
			Date:   day,
			Amount: decimal.Zero,
			Label:  day.Format("Jan 2"),
		}
		index[NormalizeDate(day, loc).Unix()] = i
	}

	for _, e := range expenses {
		if i, ok := index[NormalizeDate(e.Date, loc).Unix()]; ok {
			points[i].Amount = points[i].Amount.Add(e.Amount)
		}
	}
	return points
}
