package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/osint-chat/internal/models"
)

const maxChatBodyBytes = 64 << 10

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// handleChat handles POST /api/chat. An explicit last_username in the body
// wins over the stored context for the conversation.
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) {
	var body models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxChatBodyBytes)).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	ctx := req.Context()
	logger := r.logger.With(zap.String("conversation_id", body.ConversationID))

	if body.ConversationID == "" {
		body.ConversationID = uuid.NewString()
		logger = r.logger.With(zap.String("conversation_id", body.ConversationID))
	} else if body.LastUsername == "" {
		stored, err := r.store.LoadContext(ctx, body.ConversationID)
		if err != nil {
			logger.Warn("Failed to load conversation context", zap.Error(err))
		}
		body.LastUsername = stored.LastUsername
	}

	resp := r.chat.Handle(ctx, body)

	if err := r.store.SaveContext(ctx, body.ConversationID, resp.Context()); err != nil {
		logger.Error("Failed to save conversation context", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, resp)
}

// aiStatus handles GET /api/ai/status
func (r *Router) aiStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, r.status.Status())
}

// health handles GET /health
func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	checks := map[string]string{"ai": "not configured"}
	if r.status.Status().Configured {
		checks["ai"] = "configured"
	}

	status := http.StatusOK
	overall := "healthy"

	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()
	if err := r.store.Ping(ctx); err != nil {
		checks["storage"] = "unhealthy: " + err.Error()
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	} else {
		checks["storage"] = "healthy"
	}

	respondJSON(w, status, healthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
