package stats

import (
	"github.com/shopspring/decimal"
)

type ProgressLevel string

const (
	LevelNormal  ProgressLevel = "normal"
	LevelWarning ProgressLevel = "warning"
	LevelDanger  ProgressLevel = "danger"
)

type BudgetProgress struct {
	Total     decimal.Decimal
	Budget    decimal.Decimal
	Remaining decimal.Decimal
	// Percentage is total/budget*100, 0 when the budget is 0.
	Percentage float64
	Capped     float64
	Level      ProgressLevel
	OverBudget bool
}

func Progress(total, budget decimal.Decimal) BudgetProgress {
	percentage := 0.0
	if budget.IsPositive() {
		percentage = total.Div(budget).Mul(hundred).InexactFloat64()
	}

	level := LevelNormal
	switch {
	case percentage > 90:
		level = LevelDanger
	case percentage > 70:
		level = LevelWarning
	}

	return BudgetProgress{
		Total:      total,
		Budget:     budget,
		Remaining:  budget.Sub(total),
		Percentage: percentage,
		Capped:     min(percentage, 100),
		Level:      level,
		OverBudget: percentage > 100,
	}
}
