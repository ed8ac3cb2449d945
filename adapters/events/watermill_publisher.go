package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/ports"
)

// ModerationEvent mirrors an audit entry onto the event bus so other
// instances can react to lifecycle changes (cache invalidation, seller
// notifications).
type ModerationEvent struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Actor      string `json:"actor"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Note       string `json:"note,omitempty"`
}

// LogoutEvent represents an admin logout event
type LogoutEvent struct {
	Wallet  string `json:"wallet"`
	TokenID string `json:"token_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher       message.Publisher
	moderationTopic string
	logoutTopic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher:       publisher,
		moderationTopic: "gatehouse.moderation",
		logoutTopic:     "gatehouse.logout",
	}
}

// PublishModeration publishes a moderation event for an audit entry
func (p *WatermillPublisher) PublishModeration(ctx context.Context, entry core.AuditEntry) error {
	event := ModerationEvent{
		EntityType: string(entry.EntityType),
		EntityID:   entry.EntityID,
		Actor:      entry.Actor,
		FromStatus: entry.FromStatus,
		ToStatus:   entry.ToStatus,
		Note:       entry.Note,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(entry.ID, payload)

	if err := p.publisher.Publish(p.moderationTopic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, wallet string, tokenID string) error {
	event := LogoutEvent{
		Wallet:  wallet,
		TokenID: tokenID,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(tokenID, payload)

	if err := p.publisher.Publish(p.logoutTopic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
