package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/pocketbudget/internal/config"
	"github.com/klokku/pocketbudget/internal/event_bus"
	"github.com/klokku/pocketbudget/internal/utils"
	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/klokku/pocketbudget/pkg/chat"
	"github.com/klokku/pocketbudget/pkg/completion"
	"github.com/klokku/pocketbudget/pkg/export"
	"github.com/klokku/pocketbudget/pkg/kvstore"
	"github.com/klokku/pocketbudget/pkg/ledger"
	"github.com/klokku/pocketbudget/pkg/notify"
	"github.com/klokku/pocketbudget/pkg/stats"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	Location *time.Location
	Bus      *event_bus.EventBus
	KV       kvstore.Store

	Registry        *category.Registry
	CategoryHandler *category.Handler

	LedgerStore   *ledger.StoreImpl
	LedgerHandler *ledger.Handler

	StatsService     *stats.StatsServiceImpl
	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler

	CompletionClient completion.Client
	ChatPipeline     *chat.Pipeline
	ChatHandler      *chat.Handler

	SheetsExporter export.SheetsAppender
	ExportHandler  *export.Handler

	ThemeHandler *kvstore.ThemeHandler

	Notifications *notify.Dispatcher
	Hub           *notify.Hub
	BudgetWatcher *notify.BudgetWatcher

	closers []func() error
}

// BuildDependencies initializes and wires all application services and handlers on top of kv.
func BuildDependencies(ctx context.Context, cfg config.Application, kv kvstore.Store, clock utils.Clock) (*Dependencies, error) {
	location, err := cfg.Ledger.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid ledger timezone: %w", err)
	}
	defaultBudget, err := cfg.Ledger.Budget()
	if err != nil {
		return nil, fmt.Errorf("invalid default budget: %w", err)
	}

	deps := &Dependencies{
		Clock:    clock,
		Location: location,
		Bus:      event_bus.NewEventBus(),
		KV:       kv,
	}

	deps.Registry = category.Default()
	deps.CategoryHandler = category.NewHandler(deps.Registry)

	deps.LedgerStore = ledger.NewStore(ledger.NewRepository(kv), deps.Registry, ledger.NewTimeUUIDGenerator(clock), deps.Bus, clock)
	deps.LedgerStore.Load(ctx, defaultBudget)
	deps.LedgerHandler = ledger.NewHandler(deps.LedgerStore)

	deps.StatsService = stats.NewStatsServiceImpl(deps.LedgerStore, deps.Registry, clock, location)
	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.Registry, deps.CsvStatsRenderer)

	deps.CompletionClient, err = completion.New(ctx, cfg.Completion)
	if err != nil {
		return nil, err
	}
	deps.ChatPipeline = chat.NewPipeline(chat.NewKVHistory(kv), deps.CompletionClient, deps.LedgerStore,
		deps.StatsService, deps.Registry, deps.Bus, clock, cfg.Completion.Timeout)
	deps.ChatPipeline.Load(ctx)
	deps.ChatHandler = chat.NewHandler(deps.ChatPipeline, deps.Registry)

	if cfg.Sheets.SpreadsheetID != "" {
		sheets, err := export.NewSheetsExporter(ctx, cfg.Sheets)
		if err != nil {
			return nil, err
		}
		deps.SheetsExporter = sheets
	}
	deps.ExportHandler = export.NewHandler(deps.StatsService, deps.Registry, deps.SheetsExporter)

	deps.ThemeHandler = kvstore.NewThemeHandler(kv)

	deps.wireNotifications(ctx, cfg)

	return deps, nil
}

func (d *Dependencies) wireNotifications(ctx context.Context, cfg config.Application) {
	d.Notifications = notify.NewDispatcher()
	unsubscribeDispatcher := d.Notifications.Subscribe(d.Bus)
	d.closers = append(d.closers, func() error {
		unsubscribeDispatcher()
		return nil
	})

	if cfg.Websocket.Enabled {
		d.Hub = notify.NewHub()
		d.Notifications.Route(d.Hub,
			string(event_bus.ExpensesChangedType),
			string(event_bus.BudgetChangedType),
			string(event_bus.ChatMessageAppendedType),
			notify.BudgetLevelType,
		)
		d.closers = append(d.closers, d.Hub.Close)
	}

	if cfg.AMQP.URL != "" {
		sink, err := notify.DialAMQP(cfg.AMQP)
		if err != nil {
			log.Errorf("AMQP publishing disabled: %v", err)
		} else {
			d.Notifications.Route(sink,
				string(event_bus.ExpensesChangedType),
				string(event_bus.BudgetChangedType),
				notify.BudgetLevelType,
			)
			d.closers = append(d.closers, sink.Close)
		}
	}

	d.BudgetWatcher = notify.NewBudgetWatcher(d.StatsService, d.Notifications, d.Clock)
	d.BudgetWatcher.Prime(ctx)
	unsubscribeWatcher := d.BudgetWatcher.Subscribe(d.Bus)
	d.closers = append(d.closers, func() error {
		unsubscribeWatcher()
		return nil
	})
}

// Close releases notification channels in reverse order of creation.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
