// Package events announces account, session and server lifecycle changes over NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/config"
)

const (
	AccountCreated = "account.created"
	AccountDeleted = "account.deleted"
	SessionCreated = "session.created"
	ServerCreated  = "server.created"
	ServerDeleted  = "server.deleted"
)

// Event is the envelope written to the bus.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publisher is best effort: a failed publish never fails the operation that
// produced the event.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any)
}

type natsPublisher struct {
	conn   *nats.Conn
	prefix string
	log    *zap.Logger
}

// NewPublisher connects to NATS when a URL is configured and otherwise returns
// a Publisher that drops every event.
func NewPublisher(cfg *config.EventsConfig, log *zap.Logger) (Publisher, func(), error) {
	if cfg.NatsURL == "" {
		log.Info("events disabled, no nats_url configured")
		return NoopPublisher{}, func() {}, nil
	}

	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name("registry-auth"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	p := &natsPublisher{
		conn:   conn,
		prefix: cfg.SubjectPrefix,
		log:    log,
	}
	closeFn := func() {
		if err := conn.Drain(); err != nil {
			log.Warn("failed to drain nats connection", zap.Error(err))
		}
	}
	return p, closeFn, nil
}

func (p *natsPublisher) Publish(_ context.Context, eventType string, data any) {
	subject := Subject(p.prefix, eventType)
	payload, err := json.Marshal(Event{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		p.log.Error("failed to encode event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		p.log.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// Subject joins prefix and eventType with a dot, omitting an empty prefix.
func Subject(prefix, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) {}
