package export

import (
	"context"
	"sync"

	"github.com/klokku/pocketbudget/pkg/ledger"
)

type StubSheets struct {
	mu       sync.Mutex
	Err      error
	appended [][]ledger.Expense
}

func (s *StubSheets) Append(ctx context.Context, expenses []ledger.Expense) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	s.appended = append(s.appended, expenses)
	return len(expenses), nil
}

func (s *StubSheets) Appended() [][]ledger.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]ledger.Expense(nil), s.appended...)
}
