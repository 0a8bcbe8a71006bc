package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/olahol/melody"
	log "github.com/sirupsen/logrus"
)

// Hub pushes notifications to every connected websocket client.
type Hub struct {
	m *melody.Melody
}

func NewHub() *Hub {
	m := melody.New()
	m.Config.MaxMessageSize = 1024
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		log.Debugf("websocket client connected: %s", s.Request.RemoteAddr)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		log.Debugf("websocket client disconnected: %s", s.Request.RemoteAddr)
	})
	m.HandleError(func(s *melody.Session, err error) {
		log.Warnf("websocket error: %v", err)
	})

	return &Hub{m: m}
}

// HandleRequest upgrades the request and keeps the connection open until the client leaves.
func (h *Hub) HandleRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.m.HandleRequest(w, r); err != nil {
		log.Errorf("failed to upgrade websocket: %v", err)
	}
}

func (h *Hub) Send(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	return h.m.Broadcast(data)
}

func (h *Hub) Sessions() int {
	return h.m.Len()
}

func (h *Hub) Close() error {
	return h.m.Close()
}
