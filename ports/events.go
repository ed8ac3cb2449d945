package ports

import (
	"context"

	"github.com/bazaar-labs/gatehouse/core"
)

// EventPublisher notifies other instances about privileged actions.
type EventPublisher interface {
	PublishModeration(ctx context.Context, entry core.AuditEntry) error
	PublishLogout(ctx context.Context, wallet string, tokenID string) error
}
