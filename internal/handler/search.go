package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/parley-ai/chat-broker/internal/search"
	"github.com/parley-ai/chat-broker/pkg/logger"
)

// SearchHandler handles the search passthrough endpoint.
type SearchHandler struct {
	client *search.Client
	logger *logger.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(client *search.Client, log *logger.Logger) *SearchHandler {
	return &SearchHandler{
		client: client,
		logger: log,
	}
}

// Search handles GET /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}

	raw, err := h.client.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("search provider call failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "upstream_failure", "search provider failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}
