package chat

import (
	"context"

	"github.com/klokku/pocketbudget/pkg/kvstore"
	log "github.com/sirupsen/logrus"
)

type History interface {
	// Load never fails; missing or unreadable history yields the greeting.
	Load(ctx context.Context) []Message
	Save(ctx context.Context, messages []Message) error
}

type KVHistory struct {
	store kvstore.Store
}

func NewKVHistory(store kvstore.Store) *KVHistory {
	return &KVHistory{store: store}
}

func (h *KVHistory) Load(ctx context.Context) []Message {
	stored := kvstore.GetOr(ctx, h.store, kvstore.KeyChatMessages, defaultMessages())

	messages := make([]Message, 0, len(stored))
	for _, m := range stored {
		if !m.Role.Valid() {
			log.Warnf("Skipping stored chat message with unknown role %q", m.Role)
			continue
		}
		messages = append(messages, m)
	}
	if len(messages) == 0 {
		return defaultMessages()
	}
	return messages
}

func (h *KVHistory) Save(ctx context.Context, messages []Message) error {
	return kvstore.Put(ctx, h.store, kvstore.KeyChatMessages, messages)
}
