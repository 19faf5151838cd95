// Package ws pushes live availability changes to floor-plan viewers over
// WebSocket, one subscription per (plan, event) pair.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	redisx "github.com/okateru/plango/internal/redis"
)

// StatusMessage is the envelope pushed to subscribed clients.
type StatusMessage struct {
	Type    string `json:"type"`
	PlanID  string `json:"plan_id"`
	EventID string `json:"event_id"`
	TsUnix  int64  `json:"ts_unix"`
}

type subKey struct {
	planID  string
	eventID string
}

// Hub maintains the set of live viewers and fans status-changed messages out
// to the ones watching the affected plan/event pair.
type Hub struct {
	mu      sync.RWMutex
	clients map[subKey]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	statusPub *redisx.StatusPubSub
	logger    *slog.Logger
}

func NewHub(statusPub *redisx.StatusPubSub, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[subKey]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		statusPub:  statusPub,
		logger:     logger,
	}
}

// Run handles client registration and relays redis status-changed messages to
// subscribed clients until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	relay := make(chan redisx.StatusChangedMsg, 64)

	go func() {
		err := h.statusPub.Subscribe(ctx, func(_ context.Context, msg redisx.StatusChangedMsg) {
			select {
			case relay <- msg:
			default:
				// Slow relay; drop rather than block the subscriber.
			}
		})
		if err != nil && ctx.Err() == nil {
			h.logger.Error("status subscription ended", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			key := subKey{planID: c.planID, eventID: c.eventID}
			if h.clients[key] == nil {
				h.clients[key] = make(map[*Client]struct{})
			}
			h.clients[key][c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			key := subKey{planID: c.planID, eventID: c.eventID}
			if set, ok := h.clients[key]; ok {
				if _, ok := set[c]; ok {
					delete(set, c)
					close(c.send)
					if len(set) == 0 {
						delete(h.clients, key)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-relay:
			h.broadcast(msg)
		}
	}
}

func (h *Hub) broadcast(msg redisx.StatusChangedMsg) {
	payload, err := json.Marshal(StatusMessage{
		Type:    "status_changed",
		PlanID:  msg.PlanID,
		EventID: msg.EventID,
		TsUnix:  msg.TsUnix,
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	key := subKey{planID: msg.PlanID, eventID: msg.EventID}
	for c := range h.clients[key] {
		select {
		case c.send <- payload:
		default:
			// Buffer full or client dead; the write pump will clean up.
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, key)
	}
}
