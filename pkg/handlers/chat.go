package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/auth"
	"github.com/planstack-io/planstack-engine/pkg/apperrors"
	"github.com/planstack-io/planstack-engine/pkg/models"
	"github.com/planstack-io/planstack-engine/pkg/services"
)

// SendMessageRequest is the request body for sending a chat message.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// LoadConversationResponse is the response body for loading a conversation.
type LoadConversationResponse struct {
	Messages []*models.ChatMessage `json:"messages"`
	Welcome  string                `json:"welcome,omitempty"`
}

// ChatHandler handles per-step conversation endpoints.
type ChatHandler struct {
	conversations services.ConversationService
	logger        *zap.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(conversations services.ConversationService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{conversations: conversations, logger: logger}
}

// RegisterRoutes registers the chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scopeMiddleware ProjectScopeMiddleware) {
	protect := func(fn http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.RequireAuthWithPathValidation("pid")(scopeMiddleware(fn))
	}

	mux.HandleFunc("GET /api/projects/{pid}/steps/{step}/chat", protect(h.Load))
	mux.HandleFunc("POST /api/projects/{pid}/steps/{step}/chat", protect(h.SendMessage))
	mux.HandleFunc("DELETE /api/projects/{pid}/steps/{step}/chat", protect(h.Clear))
}

func (h *ChatHandler) conversationKey(w http.ResponseWriter, r *http.Request) (models.ConversationKey, bool) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return models.ConversationKey{}, false
	}
	step, ok := ParseStep(w, r, h.logger)
	if !ok {
		return models.ConversationKey{}, false
	}
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return models.ConversationKey{}, false
	}
	return models.ConversationKey{ProjectID: projectID, UserID: userID, Step: step}, true
}

// Load handles GET /api/projects/{pid}/steps/{step}/chat
func (h *ChatHandler) Load(w http.ResponseWriter, r *http.Request) {
	key, ok := h.conversationKey(w, r)
	if !ok {
		return
	}

	messages, welcome, err := h.conversations.Load(r.Context(), key)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, LoadConversationResponse{Messages: messages, Welcome: welcome}); err != nil {
		h.logger.Error("Failed to encode conversation response", zap.Error(err))
	}
}

// SendMessage handles POST /api/projects/{pid}/steps/{step}/chat
// The assistant reply streams back as Server-Sent Events.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	key, ok := h.conversationKey(w, r)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		if err := ErrorResponse(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming not supported"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	eventChan := make(chan models.ChatEvent, 100)

	go func() {
		defer close(eventChan)
		if err := h.conversations.SendMessage(r.Context(), key, req.Message, eventChan); err != nil {
			// Aborted streams already emitted their terminal event.
			if errors.Is(err, apperrors.ErrAborted) {
				return
			}
			h.logger.Error("Chat stream failed",
				zap.String("conversation", key.String()),
				zap.Error(err))
			eventChan <- models.NewErrorEvent(err.Error())
		}
	}()

	for event := range eventChan {
		data, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("Failed to marshal chat event", zap.Error(err))
			continue
		}

		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()

		if event.Type == models.ChatEventDone || event.Type == models.ChatEventError || event.Type == models.ChatEventAborted {
			break
		}
	}
}

// Clear handles DELETE /api/projects/{pid}/steps/{step}/chat
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	key, ok := h.conversationKey(w, r)
	if !ok {
		return
	}

	if err := h.conversations.Clear(r.Context(), key); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
