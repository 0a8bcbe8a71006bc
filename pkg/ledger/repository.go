package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/klokku/pocketbudget/pkg/kvstore"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// LoadExpenses never fails; missing or unreadable data yields an empty ledger.
	LoadExpenses(ctx context.Context) []Expense
	StoreExpenses(ctx context.Context, expenses []Expense) error
	// LoadBudget returns def when no valid budget is stored.
	LoadBudget(ctx context.Context, def decimal.Decimal) decimal.Decimal
	StoreBudget(ctx context.Context, budget decimal.Decimal) error
}

type RepositoryImpl struct {
	store kvstore.Store
}

func NewRepository(store kvstore.Store) *RepositoryImpl {
	return &RepositoryImpl{store: store}
}

func (r *RepositoryImpl) LoadExpenses(ctx context.Context) []Expense {
	records := kvstore.GetOr(ctx, r.store, kvstore.KeyExpenses, []ExpenseDTO{})

	expenses := make([]Expense, 0, len(records))
	for _, record := range records {
		expense, err := DTOToExpense(record)
		if err != nil || expense.ID == "" {
			log.Warnf("Skipping unreadable stored expense %q: %v", record.ID, err)
			continue
		}
		expenses = append(expenses, expense)
	}
	return expenses
}

func (r *RepositoryImpl) StoreExpenses(ctx context.Context, expenses []Expense) error {
	if err := kvstore.Put(ctx, r.store, kvstore.KeyExpenses, ExpensesToDTO(expenses)); err != nil {
		return fmt.Errorf("failed to store expenses: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) LoadBudget(ctx context.Context, def decimal.Decimal) decimal.Decimal {
	raw := kvstore.GetOr(ctx, r.store, kvstore.KeyBudget, json.Number(""))
	if raw == "" {
		return def
	}
	budget, err := decimal.NewFromString(string(raw))
	if err != nil || budget.IsNegative() {
		log.Warnf("Stored budget %q is invalid, using default %s", raw, def)
		return def
	}
	return budget
}

func (r *RepositoryImpl) StoreBudget(ctx context.Context, budget decimal.Decimal) error {
	if err := kvstore.Put(ctx, r.store, kvstore.KeyBudget, json.Number(budget.String())); err != nil {
		return fmt.Errorf("failed to store budget: %w", err)
	}
	return nil
}
