// Package events publishes usage events for completed chat exchanges.
package events

import (
	"context"
	"time"
)

// ExchangeEvent describes one completed chat exchange.
type ExchangeEvent struct {
	UserID         string    `json:"user_id"`
	ConversationID string    `json:"conversation_id"`
	Title          string    `json:"title"`
	Premium        bool      `json:"premium"`
	UsageCount     int       `json:"usage_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Publisher delivers exchange events to downstream consumers. Delivery is
// best effort: the chat flow never fails because of a publish error.
type Publisher interface {
	PublishExchange(ctx context.Context, event *ExchangeEvent) error
	Close()
}

// Noop is a Publisher that discards events. Used when no event broker is
// configured.
type Noop struct{}

// PublishExchange discards the event.
func (Noop) PublishExchange(ctx context.Context, event *ExchangeEvent) error { return nil }

// Close is a no-op.
func (Noop) Close() {}
