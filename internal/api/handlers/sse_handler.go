package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zatekoja/search-suggestions/internal/domain/providers"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/observability"
)

const sseHeartbeatInterval = 30 * time.Second

// SSEHandler streams suggestion ledger changes to moderators
type SSEHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
	mu        sync.RWMutex
	clients   map[string]int // channel -> connected clients
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		heartbeat: sseHeartbeatInterval,
		clients:   make(map[string]int),
	}
}

// StreamSuggestionUpdates handles GET /api/admin/scopes/{id}/suggestions/stream
func (h *SSEHandler) StreamSuggestionUpdates(w http.ResponseWriter, r *http.Request) {
	scopeID := r.PathValue("id")
	if scopeID == "" {
		respondWithError(w, http.StatusBadRequest, "scope ID is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx)
	channel := providers.GetSuggestionChannel(scopeID)

	eventChan, err := h.eventBus.Subscribe(ctx, channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("Failed to subscribe to channel")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	h.registerClient(channel)
	defer h.unregisterClient(channel)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.sendEvent(w, "connected", map[string]interface{}{
		"scope_id":  scopeID,
		"timestamp": time.Now(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Str("scope_id", scopeID).Msg("Client disconnected from suggestion stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) registerClient(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[channel]++
}

func (h *SSEHandler) unregisterClient(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[channel]--
	if h.clients[channel] <= 0 {
		delete(h.clients, channel)
	}
}

// sendEvent sends an SSE event to the client
func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of connected clients
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += clients
	}
	return count
}
