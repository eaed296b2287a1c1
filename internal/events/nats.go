package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/parley-ai/chat-broker/pkg/logger"
)

const (
	// StreamName is the name of the usage events stream.
	StreamName = "CHAT_USAGE"

	// SubjectPrefix is the prefix for all usage event subjects.
	SubjectPrefix = "chat.usage"
)

// Config holds NATS connection configuration.
type Config struct {
	URL   string
	Token string
}

// NATSPublisher publishes exchange events to a JetStream stream.
type NATSPublisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *logger.Logger
}

// NewNATSPublisher connects to NATS and ensures the usage stream exists.
func NewNATSPublisher(ctx context.Context, cfg Config, log *logger.Logger) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &NATSPublisher{conn: nc, js: js, logger: log}
	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, err
	}

	return p, nil
}

func (p *NATSPublisher) ensureStream(ctx context.Context) error {
	_, err := p.js.Stream(ctx, StreamName)
	if err == nil {
		return nil // Stream already exists
	}

	_, err = p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Chat exchange usage events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// ExchangeSubject returns the subject for a user's exchange events.
func ExchangeSubject(userID string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, userID)
}

// PublishExchange publishes an exchange event to JetStream.
func (p *NATSPublisher) PublishExchange(ctx context.Context, event *ExchangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, ExchangeSubject(event.UserID), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// IsConnected returns true if connected to NATS.
func (p *NATSPublisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
