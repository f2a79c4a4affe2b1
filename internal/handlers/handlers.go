package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/icedfool/rpi-ds-game/internal/game"
	"github.com/icedfool/rpi-ds-game/internal/hub"
	"github.com/icedfool/rpi-ds-game/internal/session"
	"github.com/icedfool/rpi-ds-game/pkg/models"
)

// HistoryReader reads recorded actions for a player
type HistoryReader interface {
	History(ctx context.Context, player string, limit int) ([]models.ActionRecord, error)
}

// Pinger reports backing store connectivity. A HistoryReader that also
// implements it is checked by HealthCheck.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	store              *session.Store
	hub                *hub.Hub
	history            HistoryReader
	defaultCreditHours int

	// extra sections of /metrics, keyed by name
	metrics map[string]func() map[string]interface{}

	// ctx outlives individual requests; websocket pumps run on it
	ctx context.Context
}

// NewHandler creates a new handler. hub and history may be nil.
func NewHandler(ctx context.Context, store *session.Store, h *hub.Hub, history HistoryReader, defaultCreditHours int) *Handler {
	if defaultCreditHours <= 0 {
		defaultCreditHours = game.DefaultCreditHours
	}
	return &Handler{
		store:              store,
		hub:                h,
		history:            history,
		defaultCreditHours: defaultCreditHours,
		metrics:            make(map[string]func() map[string]interface{}),
		ctx:                ctx,
	}
}

// RegisterMetrics adds a named section to /metrics. Call before serving.
func (h *Handler) RegisterMetrics(name string, fn func() map[string]interface{}) {
	h.metrics[name] = fn
}

// Routes mounts every endpoint on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/health", h.HealthCheck)
	r.Get("/metrics", h.Metrics)

	r.Route("/api/game", func(r chi.Router) {
		r.Get("/actions", h.ListActions)
		r.Post("/start", h.StartGame)
		r.Post("/{name}/action", h.PerformAction)
		r.Get("/{name}/status", h.GetStatus)
		r.Get("/{name}/history", h.GetHistory)
	})

	r.Get("/ws/game/{name}", h.HandleWebSocket)
}

// Root returns the liveness banner
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to RPI DS Game API",
	})
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":         "healthy",
		"service":        "ds-game",
		"active_players": h.store.Len(),
		"timestamp":      time.Now().UTC(),
	}
	if h.hub != nil {
		health["active_clients"] = h.hub.GetClientCount()
	}

	if pinger, ok := h.history.(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			health["ledger"] = "down"
			health["status"] = "degraded"
		} else {
			health["ledger"] = "ok"
		}
	}

	respondJSON(w, http.StatusOK, health)
}

// Metrics returns live feed metrics
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"active_players": h.store.Len(),
	}
	if h.hub != nil {
		metrics["feed"] = h.hub.GetMetrics()
	}
	for name, fn := range h.metrics {
		metrics[name] = fn()
	}

	respondJSON(w, http.StatusOK, metrics)
}

// ListActions returns the action names accepted by PerformAction
func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	actions := game.Actions()
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, a.String())
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"actions": names,
	})
}

// StartGame creates (or restarts) a game for the given player name
func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req models.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	// games are addressed by name in every other route
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	creditHours := h.defaultCreditHours
	switch {
	case req.CreditHours != nil:
		creditHours = *req.CreditHours
	case req.CreditHoursAlt != nil:
		creditHours = *req.CreditHoursAlt
	}

	state := h.store.Start(r.Context(), req.Name, creditHours)
	respondJSON(w, http.StatusOK, state)
}

// PerformAction applies one action to a player's game
func (h *Handler) PerformAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req models.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	// unknown players are reported before unknown actions
	if !h.store.Has(name) {
		respondError(w, http.StatusNotFound, "game not found", nil)
		return
	}

	action, err := game.ParseAction(req.Action)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	state, err := h.store.Act(r.Context(), name, action)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// GetStatus returns a player's current state
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.Status(chi.URLParam(r, "name"))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// GetHistory returns recorded actions for a player
// Query params: limit
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "action history is not enabled", nil)
		return
	}

	name := chi.URLParam(r, "name")
	if !h.store.Has(name) {
		respondError(w, http.StatusNotFound, "game not found", nil)
		return
	}

	limit := parseIntParam(r, "limit", 50)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, err := h.history.History(ctx, name, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player":  name,
		"actions": records,
		"count":   len(records),
	})
}

func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, "game not found", nil)
	case errors.Is(err, game.ErrInvalidAction):
		respondError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		respondError(w, http.StatusInternalServerError, "internal error", err)
	}
}

// parseIntParam parses an integer query parameter with a default value
func parseIntParam(r *http.Request, key string, defaultValue int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = fmt.Sprintf("%s: %v", message, err)
	}
	respondJSON(w, status, map[string]string{
		"error": errorMsg,
	})
}
