package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"dealerfeed/internal/domain"
	"dealerfeed/internal/hub"
)

type WSHandler struct {
	hub     *hub.Hub
	catalog CatalogReader
	stats   *Stats
	logger  *slog.Logger
}

func NewWSHandler(h *hub.Hub, c CatalogReader, stats *Stats, logger *slog.Logger) *WSHandler {
	return &WSHandler{hub: h, catalog: c, stats: stats, logger: logger.With("component", "websocket")}
}

type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MakesPayload is the payload of subscribe and unsubscribe. "*" stands
// for every make.
type MakesPayload struct {
	Makes []string `json:"makes"`
}

type SnapshotMessage struct {
	Type    string          `json:"type"`
	Payload SnapshotPayload `json:"payload"`
}

type SnapshotPayload struct {
	Vehicles []domain.Vehicle `json:"vehicles"`
}

type PongMessage struct {
	Type string `json:"type"`
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	client := hub.NewClient(uuid.New().String(), 256)
	h.hub.Register(client)
	h.stats.IncWSConnections()
	defer h.stats.DecWSConnections()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writeLoop(ctx, conn, client)

	h.readLoop(ctx, conn, client)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				h.logger.Debug("websocket read error", "client_id", client.ID, "error", err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}
		h.stats.IncWSMessagesIn()

		if reply := h.handleMessage(client, data); reply != nil {
			h.send(client, reply)
		}
	}
}

// handleMessage applies one client message and returns the reply to send,
// if any. Malformed messages and empty make lists are ignored.
func (h *WSHandler) handleMessage(client *hub.Client, data []byte) any {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Debug("invalid message format", "client_id", client.ID, "error", err)
		return nil
	}

	switch msg.Type {
	case "subscribe":
		in, ok := decodeInterest(msg.Payload)
		if !ok {
			return nil
		}
		h.hub.Follow(client, in)
		return h.snapshotFor(in)

	case "unsubscribe":
		if in, ok := decodeInterest(msg.Payload); ok {
			h.hub.Unfollow(client, in)
		}

	case "ping":
		return PongMessage{Type: "pong"}
	}
	return nil
}

func decodeInterest(raw json.RawMessage) (hub.Interest, bool) {
	var payload MakesPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}
	in := hub.NewInterest(payload.Makes)
	return in, len(in) > 0
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// snapshotFor gives a new subscriber the current listings it follows.
func (h *WSHandler) snapshotFor(in hub.Interest) SnapshotMessage {
	vehicles := []domain.Vehicle{}
	for _, v := range h.catalog.Snapshot() {
		if in.Covers(v.Make) {
			vehicles = append(vehicles, v)
		}
	}
	return SnapshotMessage{Type: "snapshot", Payload: SnapshotPayload{Vehicles: vehicles}}
}

func (h *WSHandler) send(client *hub.Client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case client.Send <- data:
	default:
		h.logger.Debug("client send buffer full", "client_id", client.ID)
	}
}
