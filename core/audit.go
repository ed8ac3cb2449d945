package core

import "time"

// EntityType identifies the kind of entity an audit entry refers to.
type EntityType string

const (
	EntityTypeShop  EntityType = "shop"
	EntityTypeOrder EntityType = "order"
)

// AuditEntry records a single privileged state change. Entries are immutable
// once written; the moderation and order services are the only writers.
type AuditEntry struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Actor      string     `json:"actor"` // Wallet address that performed the change
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	Note       string     `json:"note,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
