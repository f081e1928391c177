package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Event names published on the marketplace channel.
const (
	Channel = "scriptswap:events"

	ListingClaimed  = "listing_claimed"
	ReviewSubmitted = "review_submitted"
	ReviewRated     = "review_rated"
	DisputeResolved = "dispute_resolved"
	StrikeIssued    = "strike_issued"
)

// Publisher emits fire-and-forget marketplace events over Redis Pub/Sub.
// Downstream notification delivery is a separate service.
type Publisher struct {
	client *redis.Client
}

type envelope struct {
	Event      string                 `json:"event"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

// NewPublisher creates a publisher. A nil client disables publishing.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish emits an event. Failures are logged and swallowed: event emission
// must never fail the business operation that triggered it.
func (p *Publisher) Publish(ctx context.Context, event string, payload map[string]interface{}) {
	if p == nil || p.client == nil {
		return
	}

	body, err := json.Marshal(envelope{
		Event:      event,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("Failed to marshal event")
		return
	}

	if err := p.client.Publish(ctx, Channel, body).Err(); err != nil {
		log.Error().Err(err).Str("event", event).Msg("Failed to publish event")
	}
}
