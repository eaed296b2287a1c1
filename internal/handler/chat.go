package handler

import (
	"encoding/json"
	"net/http"

	"github.com/parley-ai/chat-broker/internal/middleware"
	"github.com/parley-ai/chat-broker/internal/model"
	"github.com/parley-ai/chat-broker/internal/service"
	"github.com/parley-ai/chat-broker/pkg/logger"
)

// ChatHandler handles chat endpoints.
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  log,
	}
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "please authenticate")
		return
	}

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	reply, err := h.service.Submit(r.Context(), user, req.Message)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &model.ChatResponse{Response: reply})
}

// List handles GET /api/chats
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "please authenticate")
		return
	}

	convs, err := h.service.ListConversations(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to list conversations")
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, convs)
}
