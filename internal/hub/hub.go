package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"dealerfeed/internal/domain"
)

type Client struct {
	ID   string
	Send chan []byte
}

func NewClient(id string, bufferSize int) *Client {
	return &Client{ID: id, Send: make(chan []byte, bufferSize)}
}

// DeltaMessage tells a client which followed listings changed since the
// last fetch.
type DeltaMessage struct {
	Type    string       `json:"type"`
	Payload DeltaPayload `json:"payload"`
}

type DeltaPayload struct {
	Updates []*domain.Vehicle `json:"updates,omitempty"`
	Removes []int             `json:"removes,omitempty"`
}

// Hub pushes catalog changes to websocket clients according to the makes
// they follow. Delivery is best effort: a client whose buffer is full
// misses the message and catches up on its next subscribe.
type Hub struct {
	mu        sync.RWMutex
	followers map[*Client]Interest

	changes   chan []domain.CatalogDelta
	onClients func(n int)
	logger    *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		followers: make(map[*Client]Interest),
		changes:   make(chan []domain.CatalogDelta, 64),
		onClients: func(int) {},
		logger:    logger.With("component", "hub"),
	}
}

// OnClientCount installs a callback invoked with the client count after
// every register and unregister. Must be called before clients connect.
func (h *Hub) OnClientCount(fn func(n int)) {
	h.onClients = fn
}

// Run delivers broadcast changes until ctx is done, then closes every
// client's Send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.disconnectAll()
			return
		case deltas := <-h.changes:
			h.deliver(deltas)
		}
	}
}

// Register adds a client that follows nothing yet.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.followers[client] = Interest{}
	n := len(h.followers)
	h.mu.Unlock()

	h.onClients(n)
	h.logger.Debug("client registered", "client_id", client.ID, "total", n)
}

// Unregister removes the client and closes its Send channel. Unknown or
// already removed clients are ignored.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.followers[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.followers, client)
	close(client.Send)
	n := len(h.followers)
	h.mu.Unlock()

	h.onClients(n)
	h.logger.Debug("client unregistered", "client_id", client.ID, "total", n)
}

// Follow adds makes to the client's interest.
func (h *Hub) Follow(client *Client, in Interest) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.followers[client]; ok {
		current.merge(in)
	}
}

// Unfollow removes makes from the client's interest. Unfollowing a make
// does not narrow an AllMakes subscription.
func (h *Hub) Unfollow(client *Client, in Interest) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.followers[client]; ok {
		current.drop(in)
	}
}

// Following returns the makes the client follows.
func (h *Hub) Following(client *Client) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.followers[client].Makes()
}

// Broadcast queues catalog changes for delivery without blocking the
// caller. Changes are dropped when the queue is full.
func (h *Hub) Broadcast(deltas []domain.CatalogDelta) {
	if len(deltas) == 0 {
		return
	}
	select {
	case h.changes <- deltas:
	default:
		h.logger.Warn("change queue full, dropping deltas", "count", len(deltas))
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.followers)
}

func (h *Hub) deliver(deltas []domain.CatalogDelta) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client, in := range h.followers {
		msg, ok := deltaMessageFor(in, deltas)
		if !ok {
			continue
		}
		data, err := json.Marshal(msg)
		if err != nil {
			h.logger.Error("failed to marshal delta message", "error", err)
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Debug("client send buffer full", "client_id", client.ID)
		}
	}
}

// deltaMessageFor keeps the changes covered by in. It reports false when
// none are.
func deltaMessageFor(in Interest, deltas []domain.CatalogDelta) (DeltaMessage, bool) {
	var payload DeltaPayload
	for _, d := range deltas {
		if !in.Covers(d.Make) {
			continue
		}
		switch d.Type {
		case domain.DeltaUpdate:
			payload.Updates = append(payload.Updates, d.Vehicle)
		case domain.DeltaRemove:
			payload.Removes = append(payload.Removes, d.AdNumber)
		}
	}
	if payload.Updates == nil && payload.Removes == nil {
		return DeltaMessage{}, false
	}
	return DeltaMessage{Type: "delta", Payload: payload}, true
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.followers {
		close(client.Send)
	}
	h.followers = make(map[*Client]Interest)
}
