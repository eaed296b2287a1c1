package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parley-ai/chat-broker/internal/apperr"
	"github.com/parley-ai/chat-broker/internal/events"
	"github.com/parley-ai/chat-broker/internal/llm"
	"github.com/parley-ai/chat-broker/internal/model"
	"github.com/parley-ai/chat-broker/internal/store"
	"github.com/parley-ai/chat-broker/pkg/logger"
	"github.com/parley-ai/chat-broker/pkg/metrics"
)

// titleLimit is how many leading runes of the prompt become the
// conversation title. The ellipsis is appended unconditionally, matching the
// behavior clients already depend on.
const titleLimit = 30

// quotaExceeded is returned whenever the free-tier cap blocks an exchange.
var quotaExceeded = apperr.E(apperr.KindQuotaExceeded, "conversation limit reached, please upgrade to premium")

// ChatService orchestrates a chat exchange: quota check, completion call,
// and the atomic persist of the conversation plus the usage charge.
type ChatService struct {
	store     store.Store
	llm       llm.Client
	publisher events.Publisher
	freeLimit int
	model     string
	logger    *logger.Logger
}

// NewChatService creates a new chat service. llmClient may be nil when no
// provider is configured; submissions then fail as upstream failures.
func NewChatService(s store.Store, llmClient llm.Client, pub events.Publisher, freeLimit int, completionModel string, log *logger.Logger) *ChatService {
	if pub == nil {
		pub = events.Noop{}
	}
	return &ChatService{
		store:     s,
		llm:       llmClient,
		publisher: pub,
		freeLimit: freeLimit,
		model:     completionModel,
		logger:    log,
	}
}

// Submit runs one chat exchange for the given user snapshot and returns the
// assistant's reply. The operation is all-or-nothing: a provider failure
// leaves no trace, and the conversation record and usage charge commit
// together.
func (s *ChatService) Submit(ctx context.Context, user *model.User, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.E(apperr.KindInvalidRequest, "message is required")
	}

	// Fast rejection on the snapshot so a capped user never costs a
	// provider call. The authoritative check happens again inside the
	// persist transaction, where it is immune to concurrent requests
	// racing past this read.
	if !user.Premium && user.UsageCount >= s.freeLimit {
		metrics.QuotaRejectionsTotal.Inc()
		return "", quotaExceeded
	}

	if s.llm == nil {
		return "", apperr.E(apperr.KindUpstreamFailure, "no completion provider configured")
	}

	resp, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.ChatMessage{
			{Role: string(model.RoleUser), Content: prompt},
		},
	})
	if err != nil {
		metrics.RecordCompletion(s.llm.Name(), "error", 0, 0, 0)
		return "", apperr.Wrap(apperr.KindUpstreamFailure, "completion provider failed", err)
	}
	metrics.RecordCompletion(s.llm.Name(), "success", float64(resp.LatencyMs)/1000, resp.TokensIn, resp.TokensOut)

	now := time.Now()
	conv := &model.Conversation{
		ID:     uuid.Must(uuid.NewV7()).String(),
		UserID: user.ID,
		Title:  deriveTitle(prompt),
		Messages: []model.Message{
			{ID: uuid.Must(uuid.NewV7()).String(), Role: model.RoleUser, Content: prompt, CreatedAt: now},
			{ID: uuid.Must(uuid.NewV7()).String(), Role: model.RoleAssistant, Content: resp.Content, CreatedAt: now},
		},
		CreatedAt: now,
	}

	if err := s.store.RecordExchange(ctx, conv, s.freeLimit); err != nil {
		switch {
		case errors.Is(err, store.ErrQuotaExceeded):
			metrics.QuotaRejectionsTotal.Inc()
			return "", quotaExceeded
		case errors.Is(err, store.ErrNotFound):
			return "", apperr.E(apperr.KindUnauthenticated, "please authenticate")
		default:
			return "", apperr.Wrap(apperr.KindInternal, "failed to save conversation", err)
		}
	}

	metrics.RecordExchange(user.Premium)

	if err := s.publisher.PublishExchange(ctx, &events.ExchangeEvent{
		UserID:         user.ID,
		ConversationID: conv.ID,
		Title:          conv.Title,
		Premium:        user.Premium,
		UsageCount:     user.UsageCount + 1,
		CreatedAt:      now,
	}); err != nil {
		// Event delivery is best effort; the exchange already committed.
		s.logger.Warn("failed to publish exchange event",
			zap.String("conversation_id", conv.ID), zap.Error(err))
	}

	return resp.Content, nil
}

// ListConversations returns the user's conversations, most recent first.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	convs, err := s.store.ListConversations(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list conversations", err)
	}
	return convs, nil
}

// deriveTitle truncates the prompt to titleLimit runes and appends the
// ellipsis suffix, even when the prompt is shorter than the limit.
func deriveTitle(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > titleLimit {
		runes = runes[:titleLimit]
	}
	return string(runes) + "..."
}
