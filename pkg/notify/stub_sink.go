package notify

import (
	"context"
	"sync"
)

type RecordingSink struct {
	mu   sync.Mutex
	Err  error
	sent []Notification
}

func (s *RecordingSink) Send(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.Err
}

func (s *RecordingSink) Sent() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.sent...)
}
