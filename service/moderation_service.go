package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/ports"
)

// ModerationService applies guarded lifecycle transitions to shops. Every
// transition is compare-and-swap on the caller's view of the current status
// and appends exactly one audit entry on success. Actor authorization is
// the transport layer's job: callers must hold a validated admin session.
type ModerationService struct {
	shops    ports.ShopStore
	audit    ports.AuditLog
	eventPub ports.EventPublisher
}

// NewModerationService creates a new moderation service
func NewModerationService(shops ports.ShopStore, audit ports.AuditLog, eventPub ports.EventPublisher) *ModerationService {
	return &ModerationService{
		shops:    shops,
		audit:    audit,
		eventPub: eventPub,
	}
}

// CreateShop registers a new shop in PENDING status awaiting approval
func (s *ModerationService) CreateShop(ctx context.Context, ownerWallet, name, description string) (core.Shop, error) {
	now := time.Now()
	shop := core.Shop{
		ID:          uuid.New().String(),
		OwnerWallet: strings.ToLower(ownerWallet),
		Name:        name,
		Description: description,
		Status:      core.ShopStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.shops.CreateShop(ctx, shop); err != nil {
		return core.Shop{}, fmt.Errorf("failed to create shop: %w", err)
	}

	return shop, nil
}

// GetShop retrieves a shop by id
func (s *ModerationService) GetShop(ctx context.Context, id string) (core.Shop, error) {
	return s.shops.GetShop(ctx, id)
}

// ListShops returns a filtered, paginated shop listing with the total match
// count.
func (s *ModerationService) ListShops(ctx context.Context, q ports.ShopQuery) ([]core.Shop, int, error) {
	return s.shops.ListShops(ctx, q)
}

// ApproveShop transitions a shop to ACTIVE. Approving a PENDING shop and
// unsuspending a SUSPENDED one are the same transition by business rule, so
// this is allowed from any prior state.
func (s *ModerationService) ApproveShop(ctx context.Context, shopID, actor, note string, expected core.ShopStatus) (core.Shop, error) {
	return s.transition(ctx, shopID, actor, note, expected, core.ShopStatusActive)
}

// SuspendShop transitions a shop to SUSPENDED. A non-empty reason is
// required so the audit trail always explains the suspension.
func (s *ModerationService) SuspendShop(ctx context.Context, shopID, actor, reason string, expected core.ShopStatus) (core.Shop, error) {
	if strings.TrimSpace(reason) == "" {
		return core.Shop{}, core.ErrMissingReason
	}
	return s.transition(ctx, shopID, actor, reason, expected, core.ShopStatusSuspended)
}

// AuditTrail returns the recorded transitions for a shop
func (s *ModerationService) AuditTrail(ctx context.Context, shopID string) ([]core.AuditEntry, error) {
	return s.audit.List(ctx, core.EntityTypeShop, shopID)
}

func (s *ModerationService) transition(ctx context.Context, shopID, actor, note string, expected, next core.ShopStatus) (core.Shop, error) {
	shop, err := s.shops.UpdateShopStatus(ctx, shopID, expected, next)
	if err != nil {
		return core.Shop{}, err
	}

	entry := core.AuditEntry{
		ID:         uuid.New().String(),
		EntityType: core.EntityTypeShop,
		EntityID:   shopID,
		Actor:      strings.ToLower(actor),
		FromStatus: string(expected),
		ToStatus:   string(next),
		Note:       note,
		Timestamp:  time.Now(),
	}

	if err := s.audit.Append(ctx, entry); err != nil {
		return core.Shop{}, fmt.Errorf("failed to append audit entry: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishModeration(ctx, entry); err != nil {
			// The transition and its audit record are already durable.
			fmt.Printf("Warning: Failed to publish moderation event: %v\n", err)
		}
	}

	return shop, nil
}
