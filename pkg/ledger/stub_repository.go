package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

type StubRepository struct {
	expenses  []Expense
	budget    *decimal.Decimal
	Writes    int
	FailWrite bool
}

func NewStubRepository() *StubRepository {
	return &StubRepository{}
}

func (s *StubRepository) LoadExpenses(ctx context.Context) []Expense {
	return slices.Clone(s.expenses)
}

func (s *StubRepository) StoreExpenses(ctx context.Context, expenses []Expense) error {
	if s.FailWrite {
		return errors.New("stub write failure")
	}
	s.Writes++
	s.expenses = slices.Clone(expenses)
	return nil
}

func (s *StubRepository) LoadBudget(ctx context.Context, def decimal.Decimal) decimal.Decimal {
	if s.budget == nil {
		return def
	}
	return *s.budget
}

func (s *StubRepository) StoreBudget(ctx context.Context, budget decimal.Decimal) error {
	if s.FailWrite {
		return errors.New("stub write failure")
	}
	s.Writes++
	s.budget = &budget
	return nil
}

func (s *StubRepository) Stored() []Expense {
	return slices.Clone(s.expenses)
}

// SequenceIDGenerator hands out "id-1", "id-2", ...
type SequenceIDGenerator struct {
	next int
}

func (g *SequenceIDGenerator) NewID() string {
	g.next++
	return fmt.Sprintf("id-%d", g.next)
}
