package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/klokku/pocketbudget/internal/config"
)

var ErrMissingAPIKey = errors.New("completion API key is not configured")

// Request is one schema-constrained completion call.
type Request struct {
	Instructions string
	Prompt       string
	Schema       *Schema
}

// Client turns a request into response text that should conform to the request schema.
// Implementations do not validate the text; callers must.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// New builds the client for the configured provider.
func New(ctx context.Context, cfg config.Completion) (Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, "")
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.Model, "", cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}
