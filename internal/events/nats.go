package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/logfields"
)

const publishTimeout = 5 * time.Second

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes JSON events on "<subject>.<type>".
type NATSPublisher struct {
	conn    conn
	subject string
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("apiref"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryEvents, "failed to connect to NATS").
			WithContext("url", url).
			Retryable().
			Build()
	}
	slog.Info("NATS publisher connected", logfields.URL(url), slog.String("subject", subject))
	return newNATSPublisher(nc, subject), nil
}

func newNATSPublisher(c conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: c, subject: subject}
}

// PublishBuild publishes a build event.
func (p *NATSPublisher) PublishBuild(ctx context.Context, ev BuildEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	return p.publish(ctx, ev.Type, ev)
}

// PublishLink publishes a link event.
func (p *NATSPublisher) PublishLink(ctx context.Context, ev LinkEvent) error {
	if ev.Type == "" {
		ev.Type = TypeLinkBroken
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	return p.publish(ctx, ev.Type, ev)
}

func (p *NATSPublisher) publish(ctx context.Context, eventType string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.WrapError(err, errors.CategoryEvents, "failed to marshal event").Build()
	}
	subject := fmt.Sprintf("%s.%s", p.subject, eventType)
	if err := p.conn.Publish(subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryEvents, "failed to publish event").
			WithContext("subject", subject).
			Retryable().
			Build()
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryEvents, "failed to flush event").
			WithContext("subject", subject).
			Retryable().
			Build()
	}
	slog.Debug("Published event", slog.String("subject", subject))
	return nil
}

// Close closes the connection.
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
