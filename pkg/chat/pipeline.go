package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/klokku/pocketbudget/internal/event_bus"
	"github.com/klokku/pocketbudget/internal/utils"
	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/klokku/pocketbudget/pkg/completion"
	"github.com/klokku/pocketbudget/pkg/ledger"
	"github.com/klokku/pocketbudget/pkg/stats"
	log "github.com/sirupsen/logrus"
)

type State string

const (
	StateIdle     State = "idle"
	StateSending  State = "sending"
	StateApplying State = "applying"
	StateReplying State = "replying"
	StateFailed   State = "failed"
)

const (
	FailureText         = "Sorry, I had trouble understanding that. Please check your API key and try rephrasing."
	EmptyAnswerText     = "I found an answer, but it's empty."
	MissingExpensesText = "I couldn't add that expense. Please provide an amount, description, and category."
	UnclearText         = "I'm not sure how to help. You can ask about your spending or tell me to add an expense."
)

var ErrBusy = errors.New("a chat turn is already in progress")

// Pipeline runs one conversational turn at a time: it sends the user's text to the completion
// client and either records expenses in the ledger or replies in the chat history.
type Pipeline struct {
	mu       sync.Mutex
	state    State
	messages []Message

	history  History
	client   completion.Client
	ledger   ledger.Store
	stats    stats.StatsService
	registry *category.Registry
	bus      *event_bus.EventBus
	clock    utils.Clock
	timeout  time.Duration
}

func NewPipeline(
	history History,
	client completion.Client,
	ledgerStore ledger.Store,
	statsService stats.StatsService,
	registry *category.Registry,
	bus *event_bus.EventBus,
	clock utils.Clock,
	timeout time.Duration,
) *Pipeline {
	return &Pipeline{
		state:    StateIdle,
		messages: defaultMessages(),
		history:  history,
		client:   client,
		ledger:   ledgerStore,
		stats:    statsService,
		registry: registry,
		bus:      bus,
		clock:    clock,
		timeout:  timeout,
	}
}

func (p *Pipeline) Load(ctx context.Context) {
	messages := p.history.Load(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = messages
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.messages)
}

// Submit runs a full turn for text and returns the messages it appended. Blank text is ignored.
// While another turn is in flight it returns ErrBusy without touching any state.
// Completion failures never surface as errors; they end the turn with a system message.
func (p *Pipeline) Submit(ctx context.Context, text string, filter stats.FilterSpec) ([]Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	p.state = StateSending
	p.mu.Unlock()

	// the turn always runs to completion, even if the caller goes away
	ctx = context.WithoutCancel(ctx)
	defer p.setState(StateIdle)

	appended := []Message{p.appendMessage(ctx, RoleUser, text)}

	resp, err := p.requestCompletion(ctx, text, filter)
	if err != nil {
		log.Errorf("chat turn failed (%d chars of input): %v", len(text), err)
		p.setState(StateFailed)
		return append(appended, p.appendMessage(ctx, RoleSystem, FailureText)), nil
	}

	return append(appended, p.dispatch(ctx, resp)), nil
}

func (p *Pipeline) requestCompletion(ctx context.Context, text string, filter stats.FilterSpec) (response, error) {
	snapshot := p.stats.FilteredExpenses(ctx, filter)
	req, err := buildRequest(snapshot, p.stats.Today(), p.registry.Names(), text)
	if err != nil {
		return response{}, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	raw, err := p.client.Complete(ctx, req)
	if err != nil {
		return response{}, err
	}
	return decodeResponse(raw)
}

func (p *Pipeline) dispatch(ctx context.Context, resp response) Message {
	switch resp.Intent {
	case IntentExpenseEntry:
		if len(resp.Items) > 0 {
			return p.applyExpenses(ctx, resp)
		}
		p.setState(StateReplying)
		return p.appendMessage(ctx, RoleModel, firstNonEmpty(resp.Clarification, MissingExpensesText))
	case IntentQuestion:
		p.setState(StateReplying)
		return p.appendMessage(ctx, RoleModel, firstNonEmpty(resp.Answer, EmptyAnswerText))
	default:
		p.setState(StateReplying)
		return p.appendMessage(ctx, RoleModel, firstNonEmpty(resp.Clarification, UnclearText))
	}
}

func (p *Pipeline) applyExpenses(ctx context.Context, resp response) Message {
	var added []ledger.Expense
	var skipped []string
	for i, raw := range resp.Items {
		draft, err := parseItem(raw, p.registry)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("item %d: %v", i+1, err))
			continue
		}
		expense, err := p.ledger.Add(ctx, draft)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("item %d: %v", i+1, err))
			continue
		}
		added = append(added, expense)
	}

	if len(added) == 0 {
		p.setState(StateReplying)
		text := firstNonEmpty(resp.Clarification, MissingExpensesText) + skippedSuffix(skipped)
		return p.appendMessage(ctx, RoleModel, text)
	}
	p.setState(StateApplying)

	var b strings.Builder
	fmt.Fprintf(&b, "Added %d expense(s):", len(added))
	for _, e := range added {
		fmt.Fprintf(&b, "\n- ✅ %s | %s | $%s", e.Description, e.Category, e.Amount.StringFixed(2))
	}
	b.WriteString(skippedSuffix(skipped))
	return p.appendMessage(ctx, RoleSystem, b.String())
}

func skippedSuffix(skipped []string) string {
	if len(skipped) == 0 {
		return ""
	}
	return fmt.Sprintf("\nSkipped %d item(s): %s", len(skipped), strings.Join(skipped, "; "))
}

// appendMessage adds to the history, persists it and announces the message.
func (p *Pipeline) appendMessage(ctx context.Context, role Role, text string) Message {
	message := Message{Role: role, Text: text}

	p.mu.Lock()
	p.messages = append(p.messages, message)
	snapshot := slices.Clone(p.messages)
	p.mu.Unlock()

	if err := p.history.Save(ctx, snapshot); err != nil {
		log.Errorf("failed to persist chat history: %v", err)
	}
	if p.bus != nil {
		event := event_bus.NewEventAt(ctx, event_bus.ChatMessageAppendedType, event_bus.ChatMessageAppended{
			Role:       string(role),
			Text:       text,
			AppendedAt: p.clock.Now(),
		}, p.clock.Now())
		if err := p.bus.Publish(event); err != nil {
			log.Warnf("chat message event not fully delivered: %v", err)
		}
	}
	return message
}

func (p *Pipeline) setState(state State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
