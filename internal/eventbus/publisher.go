// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tunetrail/serving/internal/models"
)

// interactionEvent is the wire shape published to Subject: a trimmed
// projection of models.Interaction, not the row itself, so a downstream
// consumer's schema doesn't silently drift with repository-internal
// field additions.
type interactionEvent struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	TrackID          string    `json:"track_id"`
	Type             string    `json:"type"`
	CreatedAt        time.Time `json:"created_at"`
	Source           string    `json:"source"`
	RecommendationID string    `json:"recommendation_id,omitempty"`
}

// Publisher wraps a Watermill/NATS publisher (JetStream disabled) with circuit
// breaker protection, grounded on the teacher's
// internal/eventprocessor.Publisher.
type Publisher struct {
	subject string
	wm      message.Publisher
	breaker *gobreaker.CircuitBreaker[interface{}]

	mu     sync.RWMutex
	closed bool
}

// NewPublisher dials cfg.URL and returns a Publisher ready to publish to
// cfg.Subject. A nil *Publisher (returned alongside a nil error only
// when cfg.URL == "") is a valid, inert receiver: PublishInteraction on
// a nil Publisher is a no-op, the same "disabled by absent config"
// pattern as livefeed.Hub.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
	}

	wmConfig := wmnats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmnats.NATSMarshaler{},
		// JetStream disabled: unlike the teacher's media-event pipeline,
		// this stream has no consumer inside the serving plane itself to
		// guarantee delivery to, and requiring a pre-provisioned
		// JetStream stream here would make every deployment's event bus
		// config a two-system change (this config plus the broker's
		// stream definition) for a best-effort publish.
		JetStream: wmnats.JetStreamConfig{Disabled: true},
	}

	pub, err := wmnats.NewPublisher(wmConfig, watermill.NewStdLogger(false, false))
	if err != nil {
		return nil, fmt.Errorf("eventbus: create nats publisher: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:    "eventbus.publish",
		Timeout: 30 * time.Second,
	})

	return &Publisher{subject: cfg.Subject, wm: pub, breaker: breaker}, nil
}

// Close releases the underlying NATS connection. Safe to call on a nil
// Publisher.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.wm.Close()
}

// PublishInteraction best-effort publishes i to Subject. Safe to call on
// a nil Publisher (returns nil immediately): the serving plane's own
// write path never depends on this succeeding, per the external
// interfaces boundary this event stream sits behind.
func (p *Publisher) PublishInteraction(ctx context.Context, i *models.Interaction) error {
	if p == nil {
		return nil
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("eventbus: publisher closed")
	}
	p.mu.RUnlock()

	data, err := json.Marshal(interactionEvent{
		ID: i.ID, UserID: i.UserID, TrackID: i.TrackID, Type: string(i.Type),
		CreatedAt: i.CreatedAt, Source: string(i.Source), RecommendationID: i.RecommendationID,
	})
	if err != nil {
		return fmt.Errorf("eventbus: marshal interaction: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	msg.SetContext(ctx)

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.wm.Publish(p.subject, msg)
	})
	return err
}
