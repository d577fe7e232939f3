package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/solvang/webvault/internal/config"
)

const defaultSubject = "webvault.export"

// NATSPublisher publishes export events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to the configured NATS server. Returns an error
// when events are disabled; callers fall back to the NoopPublisher.
func NewNATSPublisher(cfg *config.EventsConfig) (*NATSPublisher, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, fmt.Errorf("event publishing is disabled")
	}

	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("webvault"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = defaultSubject
	}

	slog.Info("event publisher connected", "url", cfg.NATSURL, "subject", subject)
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

func (p *NATSPublisher) publish(eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

func (p *NATSPublisher) PublishRunStarted(e RunStarted) error {
	e.Type = TypeRunStarted
	e.Timestamp = time.Now().UTC()
	return p.publish(e.Type, e)
}

func (p *NATSPublisher) PublishPageBuilt(e PageBuilt) error {
	e.Type = TypePageBuilt
	e.Timestamp = time.Now().UTC()
	return p.publish(e.Type, e)
}

func (p *NATSPublisher) PublishRunFinished(e RunFinished) error {
	e.Type = TypeRunFinished
	e.Timestamp = time.Now().UTC()
	return p.publish(e.Type, e)
}

// Close flushes and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		_ = p.conn.Flush()
		p.conn.Close()
	}
	return nil
}
