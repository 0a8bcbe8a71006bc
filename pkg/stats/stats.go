package stats

import (
	"github.com/klokku/pocketbudget/pkg/ledger"
	"github.com/shopspring/decimal"
)

type Summary struct {
	Filter     FilterSpec
	IsFiltered bool
	Expenses   []ledger.Expense
	Total      decimal.Decimal
	Progress   BudgetProgress
	Breakdown  []CategoryAmount
	Trend      []TrendPoint
}
