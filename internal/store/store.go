// Package store provides persistence for users and conversations.
package store

import (
	"context"
	"errors"

	"github.com/parley-ai/chat-broker/internal/model"
)

// Sentinel errors returned by Store implementations. Callers translate these
// into the API error taxonomy.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken indicates a registration with an already-used email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrQuotaExceeded indicates the conditional usage increment was
	// rejected because the user is at the free-tier cap.
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// Store is the persistence interface for the chat broker.
type Store interface {
	// CreateUser inserts a new user. Fails with ErrEmailTaken on a
	// duplicate email.
	CreateUser(ctx context.Context, user *model.User) error

	// GetUserByEmail retrieves a user by email (case-sensitive, as stored).
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// RecordExchange persists a completed chat exchange and charges the
	// owner's usage counter in a single transaction. The increment is
	// conditional: non-premium users at or over freeLimit are rejected
	// with ErrQuotaExceeded and nothing is written. The conversation and
	// the counter commit together or not at all.
	RecordExchange(ctx context.Context, conv *model.Conversation, freeLimit int) error

	// ListConversations returns the user's conversations, most recent
	// first, each with its messages in append order.
	ListConversations(ctx context.Context, userID string) ([]model.Conversation, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the underlying database.
	Close() error
}
