package event_bus

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ExpensesChangedType     EventType = "ledger.expenses.changed"
	BudgetChangedType       EventType = "ledger.budget.changed"
	ChatMessageAppendedType EventType = "chat.message.appended"
)

type ExpenseAction string

const (
	ExpenseAdded   ExpenseAction = "added"
	ExpenseUpdated ExpenseAction = "updated"
	ExpenseDeleted ExpenseAction = "deleted"
)

// ExpensesChanged is published after every persisted ledger mutation.
type ExpensesChanged struct {
	Action       ExpenseAction
	IDs          []string
	ExpenseCount int
}

type BudgetChanged struct {
	Budget decimal.Decimal
}

type ChatMessageAppended struct {
	Role       string
	Text       string
	AppendedAt time.Time
}
