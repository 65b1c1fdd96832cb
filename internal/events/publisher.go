// Package events publishes chat lifecycle events to NATS.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/ai-automation-studio/chatbots-api/pkg/logger"
)

// Type identifies a chat lifecycle event.
type Type string

const (
	TypeChatCreated     Type = "chat.created"
	TypeChatDeleted     Type = "chat.deleted"
	TypeMessageAppended Type = "message.appended"
	TypeTitleGenerated  Type = "title.generated"
)

// Event is the JSON payload published for each lifecycle event.
type Event struct {
	Type      Type      `json:"type"`
	ChatID    int64     `json:"chat_id"`
	Sender    string    `json:"sender,omitempty"`
	Persona   string    `json:"persona,omitempty"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Config holds NATS connection configuration.
type Config struct {
	URL   string
	Token string
}

// Publisher emits events to NATS subjects under chatbots.events. Publishing
// is fire-and-forget; failures are logged and never surfaced to callers.
// A nil Publisher is valid and drops every event.
type Publisher struct {
	conn   *nats.Conn
	logger *logger.Logger
}

// Connect establishes the NATS connection. Returns nil (publishing
// disabled) when no URL is configured.
func Connect(cfg Config, log *logger.Logger) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts := []nats.Option{
		nats.Name("chatbots-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{conn: nc, logger: log}, nil
}

// Publish emits one event. Safe to call on a nil Publisher.
func (p *Publisher) Publish(event Event) {
	if p == nil {
		return
	}

	event.CreatedAt = time.Now()
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	subject := "chatbots.events." + string(event.Type)
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("subject", subject), zap.Error(err))
	}
}

// Close drains and closes the connection. Safe to call on a nil Publisher.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}

// IsConnected reports whether the publisher has a live connection.
func (p *Publisher) IsConnected() bool {
	return p != nil && p.conn != nil && p.conn.IsConnected()
}
