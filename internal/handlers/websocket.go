package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/icedfool/rpi-ds-game/internal/client"
	"github.com/icedfool/rpi-ds-game/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware does not cover upgrades; the feed is read-only
		return true
	},
}

// HandleWebSocket upgrades the request to a live feed of one player's game.
// The current state is sent first, then every update as it happens.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "live feed is not enabled", nil)
		return
	}

	name := chi.URLParam(r, "name")
	state, err := h.store.Status(name)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("⚠️  WebSocket upgrade error: %v\n", err)
		return
	}

	c := client.NewClient(uuid.New().String(), name, conn, h.hub)
	c.TrySend(models.ServerMessage{
		Type: models.MessageTypePlayerUpdate,
		Payload: models.PlayerEvent{
			Player:     name,
			Action:     "status",
			State:      state,
			OccurredAt: time.Now().UTC(),
		},
		Timestamp: time.Now(),
	})

	h.hub.Register(c)

	// Use handler context, not request context
	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}
