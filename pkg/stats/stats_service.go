package stats

import (
	"context"
	"time"

	"github.com/klokku/pocketbudget/internal/utils"
	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/klokku/pocketbudget/pkg/ledger"
	log "github.com/sirupsen/logrus"
)

type StatsService interface {
	// FilteredExpenses returns the current ledger snapshot narrowed by spec.
	FilteredExpenses(ctx context.Context, spec FilterSpec) []ledger.Expense
	GetSummary(ctx context.Context, spec FilterSpec) Summary
	// Today is the current calendar date in the viewer's time zone.
	Today() ledger.Date
	Location() *time.Location
}

type StatsServiceImpl struct {
	store    ledger.Store
	registry *category.Registry
	clock    utils.Clock
	location *time.Location
}

func NewStatsServiceImpl(store ledger.Store, registry *category.Registry, clock utils.Clock, location *time.Location) *StatsServiceImpl {
	return &StatsServiceImpl{
		store:    store,
		registry: registry,
		clock:    clock,
		location: location,
	}
}

func (s *StatsServiceImpl) FilteredExpenses(ctx context.Context, spec FilterSpec) []ledger.Expense {
	return Filter(s.store.List(ctx), spec, s.location)
}

func (s *StatsServiceImpl) GetSummary(ctx context.Context, spec FilterSpec) Summary {
	expenses := s.FilteredExpenses(ctx, spec)
	total := TotalSpent(expenses)
	today := s.Today()
	log.Tracef("Summary for %d expense(s) on %s", len(expenses), today)

	return Summary{
		Filter:     spec,
		IsFiltered: !spec.IsEmpty(),
		Expenses:   expenses,
		Total:      total,
		Progress:   Progress(total, s.store.Budget(ctx)),
		Breakdown:  CategoryBreakdown(expenses, s.registry),
		Trend:      Trend(expenses, today, TrendWindowDays, s.location),
	}
}

func (s *StatsServiceImpl) Today() ledger.Date {
	return ledger.DateOf(utils.Today(s.clock, s.location))
}

func (s *StatsServiceImpl) Location() *time.Location {
	return s.location
}
