package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

const (
	KeyExpenses     = "expenses"
	KeyBudget       = "budget"
	KeyChatMessages = "chatMessages"
	KeyTheme        = "theme"
)

var ErrKeyNotFound = errors.New("key not found")

// Store persists JSON documents under string keys.
type Store interface {
	// Get returns ErrKeyNotFound when nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// GetOr decodes the value stored under key into T. A missing key, a failing
// backend or a value that is not valid JSON for T all yield def.
func GetOr[T any](ctx context.Context, store Store, key string, def T) T {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			log.Warnf("Unable to read %q from store, using default: %v", key, err)
		}
		return def
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		log.Warnf("Stored value under %q is corrupt, using default: %v", key, err)
		return def
	}
	return value
}

// Put encodes value as JSON and stores it under key.
func Put[T any](ctx context.Context, store Store, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}
