package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/klokku/pocketbudget/internal/event_bus"
	"github.com/klokku/pocketbudget/internal/utils"
	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Store interface {
	// List returns a snapshot sorted by date descending, most recently written first within a day.
	List(ctx context.Context) []Expense
	Get(ctx context.Context, id string) (Expense, error)
	Add(ctx context.Context, draft Draft) (Expense, error)
	Update(ctx context.Context, expense Expense) error
	// Delete removes every expense whose id is in ids and returns how many were removed.
	Delete(ctx context.Context, ids []string) (int, error)
	Budget(ctx context.Context) decimal.Decimal
	SetBudget(ctx context.Context, budget decimal.Decimal) error
}

type StoreImpl struct {
	mu       sync.RWMutex
	repo     Repository
	registry *category.Registry
	ids      IDGenerator
	bus      *event_bus.EventBus
	clock    utils.Clock
	expenses []Expense
	budget   decimal.Decimal
}

func NewStore(repo Repository, registry *category.Registry, ids IDGenerator, bus *event_bus.EventBus, clock utils.Clock) *StoreImpl {
	return &StoreImpl{
		repo:     repo,
		registry: registry,
		ids:      ids,
		bus:      bus,
		clock:    clock,
		expenses: []Expense{},
	}
}

// Load replaces the in-memory state with what the repository holds.
func (s *StoreImpl) Load(ctx context.Context, defaultBudget decimal.Decimal) {
	expenses := s.validStored(s.repo.LoadExpenses(ctx))
	sortByDateDesc(expenses)
	budget := s.repo.LoadBudget(ctx, defaultBudget)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = expenses
	s.budget = budget
	log.Debugf("Ledger loaded with %d expense(s) and budget %s", len(expenses), budget)
}

// validStored drops persisted records that break the expense invariants.
func (s *StoreImpl) validStored(stored []Expense) []Expense {
	expenses := make([]Expense, 0, len(stored))
	for _, expense := range stored {
		draft, err := Validate(expense.Draft(), s.registry)
		if err != nil {
			log.Warnf("Skipping invalid stored expense %q: %v", expense.ID, err)
			continue
		}
		expenses = append(expenses, draft.withID(expense.ID))
	}
	return expenses
}

func (s *StoreImpl) List(ctx context.Context) []Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.expenses)
}

func (s *StoreImpl) Get(ctx context.Context, id string) (Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx == -1 {
		return Expense{}, fmt.Errorf("%w: %s", ErrExpenseNotFound, id)
	}
	return s.expenses[idx], nil
}

func (s *StoreImpl) Add(ctx context.Context, draft Draft) (Expense, error) {
	draft, err := Validate(draft, s.registry)
	if err != nil {
		return Expense{}, err
	}

	s.mu.Lock()
	expense := draft.withID(s.ids.NewID())
	next := make([]Expense, 0, len(s.expenses)+1)
	next = append(next, expense)
	next = append(next, s.expenses...)
	sortByDateDesc(next)
	err = s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return Expense{}, err
	}

	s.publish(ctx, event_bus.ExpensesChangedType, event_bus.ExpensesChanged{
		Action:       event_bus.ExpenseAdded,
		IDs:          []string{expense.ID},
		ExpenseCount: len(next),
	})
	return expense, nil
}

func (s *StoreImpl) Update(ctx context.Context, expense Expense) error {
	draft, err := Validate(expense.Draft(), s.registry)
	if err != nil {
		return err
	}
	expense = draft.withID(expense.ID)

	s.mu.Lock()
	idx := s.indexOf(expense.ID)
	if idx == -1 {
		s.mu.Unlock()
		log.Warnf("expense not updated, it does not exist (%s)", expense.ID)
		return fmt.Errorf("%w: %s", ErrExpenseNotFound, expense.ID)
	}
	next := make([]Expense, 0, len(s.expenses))
	next = append(next, expense)
	next = append(next, s.expenses[:idx]...)
	next = append(next, s.expenses[idx+1:]...)
	sortByDateDesc(next)
	err = s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(ctx, event_bus.ExpensesChangedType, event_bus.ExpensesChanged{
		Action:       event_bus.ExpenseUpdated,
		IDs:          []string{expense.ID},
		ExpenseCount: len(next),
	})
	return nil
}

func (s *StoreImpl) Delete(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	next := make([]Expense, 0, len(s.expenses))
	var removed []string
	for _, e := range s.expenses {
		if slices.Contains(ids, e.ID) {
			removed = append(removed, e.ID)
			continue
		}
		next = append(next, e)
	}
	if len(removed) == 0 {
		s.mu.Unlock()
		return 0, nil
	}
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	s.publish(ctx, event_bus.ExpensesChangedType, event_bus.ExpensesChanged{
		Action:       event_bus.ExpenseDeleted,
		IDs:          removed,
		ExpenseCount: len(next),
	})
	return len(removed), nil
}

func (s *StoreImpl) Budget(ctx context.Context) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budget
}

func (s *StoreImpl) SetBudget(ctx context.Context, budget decimal.Decimal) error {
	if budget.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeBudget, budget)
	}

	s.mu.Lock()
	err := s.repo.StoreBudget(ctx, budget)
	if err == nil {
		s.budget = budget
	}
	s.mu.Unlock()
	if err != nil {
		log.Errorf("failed to persist budget: %v", err)
		return err
	}

	s.publish(ctx, event_bus.BudgetChangedType, event_bus.BudgetChanged{Budget: budget})
	return nil
}

// commit persists the whole collection and only then makes it visible.
func (s *StoreImpl) commit(ctx context.Context, next []Expense) error {
	if err := s.repo.StoreExpenses(ctx, next); err != nil {
		log.Errorf("failed to persist ledger: %v", err)
		return err
	}
	s.expenses = next
	return nil
}

// publish must be called without holding mu, subscribers read the store.
func (s *StoreImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEventAt(ctx, eventType, data, s.clock.Now())); err != nil {
		log.Warnf("ledger event %s not fully delivered: %v", eventType, err)
	}
}

func (s *StoreImpl) indexOf(id string) int {
	return slices.IndexFunc(s.expenses, func(e Expense) bool {
		return e.ID == id
	})
}

// sortByDateDesc keeps the existing relative order within a day, so callers put the
// freshest record first before sorting.
func sortByDateDesc(expenses []Expense) {
	slices.SortStableFunc(expenses, func(a, b Expense) int {
		return b.Date.Compare(a.Date.Time)
	})
}
