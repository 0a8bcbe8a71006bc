package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/klokku/pocketbudget/internal/event_bus"
)

// BudgetLevelType is sent when the budget progress level changes.
const BudgetLevelType = "budget.level"

type Notification struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

// Sink delivers notifications to one outside channel.
type Sink interface {
	Send(ctx context.Context, n Notification) error
}

type ExpensesChangedDTO struct {
	Action       string   `json:"action"`
	IDs          []string `json:"ids"`
	ExpenseCount int      `json:"expenseCount"`
}

type BudgetChangedDTO struct {
	Budget json.Number `json:"budget"`
}

type ChatMessageDTO struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type BudgetLevelDTO struct {
	Level      string      `json:"level"`
	Percentage float64     `json:"percentage"`
	OverBudget bool        `json:"overBudget"`
	Remaining  json.Number `json:"remaining"`
}

// FromEvent maps a bus event to its outward form. Unknown events are reported with ok=false.
func FromEvent(e event_bus.Event) (n Notification, ok bool) {
	n = Notification{Type: string(e.Type), At: e.Timestamp}
	switch data := e.Data.(type) {
	case event_bus.ExpensesChanged:
		ids := data.IDs
		if ids == nil {
			ids = []string{}
		}
		n.Data = ExpensesChangedDTO{Action: string(data.Action), IDs: ids, ExpenseCount: data.ExpenseCount}
	case event_bus.BudgetChanged:
		n.Data = BudgetChangedDTO{Budget: json.Number(data.Budget.String())}
	case event_bus.ChatMessageAppended:
		n.Data = ChatMessageDTO{Role: data.Role, Text: data.Text}
		n.At = data.AppendedAt
	default:
		return Notification{}, false
	}
	return n, true
}
