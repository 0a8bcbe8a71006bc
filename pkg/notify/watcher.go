package notify

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/klokku/pocketbudget/internal/event_bus"
	"github.com/klokku/pocketbudget/internal/utils"
	"github.com/klokku/pocketbudget/pkg/stats"
	log "github.com/sirupsen/logrus"
)

type budgetState struct {
	level      stats.ProgressLevel
	overBudget bool
}

// BudgetWatcher notifies when the unfiltered budget progress crosses a level boundary.
type BudgetWatcher struct {
	mu    sync.Mutex
	last  budgetState
	stats stats.StatsService
	sink  Sink
	clock utils.Clock
}

func NewBudgetWatcher(statsService stats.StatsService, sink Sink, clock utils.Clock) *BudgetWatcher {
	return &BudgetWatcher{
		last:  budgetState{level: stats.LevelNormal},
		stats: statsService,
		sink:  sink,
		clock: clock,
	}
}

// Prime records the current level without sending anything.
func (w *BudgetWatcher) Prime(ctx context.Context) {
	progress := w.stats.GetSummary(ctx, stats.FilterSpec{}).Progress

	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = budgetState{level: progress.Level, overBudget: progress.OverBudget}
}

func (w *BudgetWatcher) Check(ctx context.Context) error {
	progress := w.stats.GetSummary(ctx, stats.FilterSpec{}).Progress
	current := budgetState{level: progress.Level, overBudget: progress.OverBudget}

	w.mu.Lock()
	if current == w.last {
		w.mu.Unlock()
		return nil
	}
	w.last = current
	w.mu.Unlock()

	if progress.OverBudget {
		log.Warnf("Monthly budget exceeded: spent %s of %s", progress.Total.StringFixed(2), progress.Budget.StringFixed(2))
	} else {
		log.Infof("Budget level is now %s (%.1f%%)", progress.Level, progress.Percentage)
	}

	return w.sink.Send(ctx, Notification{
		Type: BudgetLevelType,
		At:   w.clock.Now(),
		Data: BudgetLevelDTO{
			Level:      string(progress.Level),
			Percentage: progress.Percentage,
			OverBudget: progress.OverBudget,
			Remaining:  json.Number(progress.Remaining.StringFixed(2)),
		},
	})
}

// Subscribe re-checks the level after every ledger mutation and budget change.
func (w *BudgetWatcher) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	unsubscribeExpenses := event_bus.SubscribeTyped(bus, event_bus.ExpensesChangedType,
		func(e event_bus.EventT[event_bus.ExpensesChanged]) error {
			return w.Check(e.Context())
		})
	unsubscribeBudget := event_bus.SubscribeTyped(bus, event_bus.BudgetChangedType,
		func(e event_bus.EventT[event_bus.BudgetChanged]) error {
			return w.Check(e.Context())
		})
	return func() {
		unsubscribeExpenses()
		unsubscribeBudget()
	}
}
