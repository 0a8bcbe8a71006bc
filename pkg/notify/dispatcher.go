package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/klokku/pocketbudget/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// Dispatcher fans notifications out to the sinks routed for their type.
type Dispatcher struct {
	mu     sync.RWMutex
	routes map[string][]Sink
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{routes: make(map[string][]Sink)}
}

func (d *Dispatcher) Route(sink Sink, types ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range types {
		d.routes[t] = append(d.routes[t], sink)
	}
}

func (d *Dispatcher) Send(ctx context.Context, n Notification) error {
	d.mu.RLock()
	sinks := append([]Sink(nil), d.routes[n.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, sink := range sinks {
		if err := sink.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", sink, err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe forwards ledger and chat events from the bus.
func (d *Dispatcher) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	handler := func(e event_bus.Event) error {
		n, ok := FromEvent(e)
		if !ok {
			log.Debugf("notify: ignoring event %s with payload %T", e.Type, e.Data)
			return nil
		}
		return d.Send(e.Context(), n)
	}

	unsubscribers := []func(){
		bus.Subscribe(event_bus.ExpensesChangedType, handler),
		bus.Subscribe(event_bus.BudgetChangedType, handler),
		bus.Subscribe(event_bus.ChatMessageAppendedType, handler),
	}
	return func() {
		for _, u := range unsubscribers {
			u()
		}
	}
}
