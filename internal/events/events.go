// Package events publishes build notifications to NATS so downstream
// consumers (cache purgers, chat bots) can react to regenerated pages.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	ferrors "git.home.luguber.info/inful/framedoc/internal/foundation/errors"
	"git.home.luguber.info/inful/framedoc/internal/logfields"
)

// Event types, appended to the configured subject.
const (
	TypePageWritten  = "page.written"
	TypeBuildDone    = "build.completed"
	TypeBrokenLink   = "link.broken"
	defaultClientTag = "framedoc"
)

// PageEvent announces a written page.
type PageEvent struct {
	BuildID     string    `json:"build_id"`
	Path        string    `json:"path"`
	Character   string    `json:"character,omitempty"`
	Bytes       int       `json:"bytes"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// BuildEvent summarizes a finished build.
type BuildEvent struct {
	BuildID     string    `json:"build_id"`
	Status      string    `json:"status"`
	Written     int       `json:"written"`
	Unchanged   int       `json:"unchanged"`
	Warnings    int       `json:"warnings"`
	Errors      int       `json:"errors"`
	BrokenLinks int       `json:"broken_links"`
	DurationMS  int64     `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// BrokenLinkEvent reports a link in a generated page whose target is missing.
type BrokenLinkEvent struct {
	BuildID   string    `json:"build_id"`
	Page      string    `json:"page"`
	URL       string    `json:"url"`
	Tag       string    `json:"tag"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers events. Implementations must be safe to call after a
// failed publish; callers log errors and carry on.
type Publisher interface {
	PublishPage(ctx context.Context, e PageEvent) error
	PublishBuild(ctx context.Context, e BuildEvent) error
	PublishBrokenLink(ctx context.Context, e BrokenLinkEvent) error
	Close() error
}

// Options configures a NATS publisher.
type Options struct {
	URL       string
	Subject   string
	Timeout   time.Duration
	JetStream bool
}

// New returns a NATS publisher, or a Noop when opts.URL is empty.
func New(opts Options, logger *slog.Logger) (Publisher, error) {
	if opts.URL == "" {
		return Noop{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	conn, err := nats.Connect(opts.URL, nats.Name(defaultClientTag), nats.Timeout(opts.Timeout))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", opts.URL).Retryable().Build()
	}

	p := &NATSPublisher{conn: conn, subject: opts.Subject, timeout: opts.Timeout, logger: logger}
	if opts.JetStream {
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to create JetStream context").Build()
		}
		p.js = js
	}

	logger.Info("NATS publisher initialized",
		logfields.URL(opts.URL),
		slog.String("subject", opts.Subject),
		slog.Bool("jetstream", opts.JetStream))
	return p, nil
}

// NATSPublisher publishes JSON events to <subject>.<type>.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	timeout time.Duration
	logger  *slog.Logger
}

// Subject returns the full subject for an event type.
func Subject(base, eventType string) string {
	if base == "" {
		return eventType
	}
	return base + "." + eventType
}

func (p *NATSPublisher) publish(ctx context.Context, eventType string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	subject := Subject(p.subject, eventType)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if p.js != nil {
		_, err = p.js.Publish(ctx, subject, data)
	} else {
		err = p.conn.Publish(subject, data)
	}
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to publish event").
			WithContext("subject", subject).Retryable().Build()
	}

	p.logger.Debug("Published event", slog.String("subject", subject))
	return nil
}

func (p *NATSPublisher) PublishPage(ctx context.Context, e PageEvent) error {
	return p.publish(ctx, TypePageWritten, e)
}

func (p *NATSPublisher) PublishBuild(ctx context.Context, e BuildEvent) error {
	return p.publish(ctx, TypeBuildDone, e)
}

func (p *NATSPublisher) PublishBrokenLink(ctx context.Context, e BrokenLinkEvent) error {
	return p.publish(ctx, TypeBrokenLink, e)
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	defer p.conn.Close()
	if err := p.conn.FlushTimeout(p.timeout); err != nil {
		return fmt.Errorf("flush NATS connection: %w", err)
	}
	return nil
}

// Noop discards every event.
type Noop struct{}

func (Noop) PublishPage(context.Context, PageEvent) error             { return nil }
func (Noop) PublishBuild(context.Context, BuildEvent) error           { return nil }
func (Noop) PublishBrokenLink(context.Context, BrokenLinkEvent) error { return nil }
func (Noop) Close() error                                             { return nil }
