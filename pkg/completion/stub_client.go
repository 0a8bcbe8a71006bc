package completion

import (
	"context"
	"sync"
)

// StubClient replays canned responses in order. When Block is set every call waits for it
// to be closed (or for the context to end) before answering.
type StubClient struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Block     chan struct{}
	Started   chan struct{}
	requests  []Request
}

func NewStubClient(responses ...string) *StubClient {
	return &StubClient{Responses: responses}
}

func (s *StubClient) Complete(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	block, started := s.Block, s.Started
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", nil
	}
	next := s.Responses[0]
	s.Responses = s.Responses[1:]
	return next, nil
}

func (s *StubClient) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}
