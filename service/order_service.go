package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/ports"
)

// OrderService owns the order status state machine. Only the seller of an
// order may advance it, and only along the fixed transition graph. The
// store-level compare-and-swap makes concurrent double submission yield a
// single winner.
type OrderService struct {
	orders   ports.OrderStore
	audit    ports.AuditLog
	eventPub ports.EventPublisher
}

// NewOrderService creates a new order service
func NewOrderService(orders ports.OrderStore, audit ports.AuditLog, eventPub ports.EventPublisher) *OrderService {
	return &OrderService{
		orders:   orders,
		audit:    audit,
		eventPub: eventPub,
	}
}

// CreateOrder records a new order in PENDING status
func (s *OrderService) CreateOrder(ctx context.Context, buyerWallet, sellerWallet, shopID string, amount decimal.Decimal) (core.Order, error) {
	now := time.Now()
	order := core.Order{
		ID:           uuid.New().String(),
		BuyerWallet:  strings.ToLower(buyerWallet),
		SellerWallet: strings.ToLower(sellerWallet),
		ShopID:       shopID,
		Amount:       amount,
		Status:       core.OrderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return core.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// GetOrder retrieves an order by id
func (s *OrderService) GetOrder(ctx context.Context, id string) (core.Order, error) {
	return s.orders.GetOrder(ctx, id)
}

// ListOrders returns the orders where wallet plays the given role
func (s *OrderService) ListOrders(ctx context.Context, role ports.OrderRole, wallet string) ([]core.Order, error) {
	return s.orders.ListOrders(ctx, role, wallet)
}

// UpdateStatus advances an order to next on behalf of actor. It fails with
// core.ErrForbidden unless actor is the order's seller, and with
// core.ErrInvalidTransition if next is not reachable from the current
// status. A successful transition appends exactly one audit entry.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, next core.OrderStatus, actor string) (core.Order, error) {
	if !core.ValidOrderStatus(next) {
		return core.Order{}, core.ErrInvalidTransition
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return core.Order{}, err
	}

	if !strings.EqualFold(order.SellerWallet, actor) {
		return core.Order{}, core.ErrForbidden
	}

	if !order.Status.CanTransitionTo(next) {
		return core.Order{}, core.ErrInvalidTransition
	}

	// CAS on the status read above: a concurrent submission that already
	// moved the order makes this a conflict, not a silent overwrite.
	updated, err := s.orders.UpdateOrderStatus(ctx, orderID, order.Status, next)
	if err != nil {
		return core.Order{}, err
	}

	entry := core.AuditEntry{
		ID:         uuid.New().String(),
		EntityType: core.EntityTypeOrder,
		EntityID:   orderID,
		Actor:      strings.ToLower(actor),
		FromStatus: string(order.Status),
		ToStatus:   string(next),
		Timestamp:  time.Now(),
	}

	if err := s.audit.Append(ctx, entry); err != nil {
		return core.Order{}, fmt.Errorf("failed to append audit entry: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishModeration(ctx, entry); err != nil {
			fmt.Printf("Warning: Failed to publish order event: %v\n", err)
		}
	}

	return updated, nil
}

// AuditTrail returns the recorded transitions for an order
func (s *OrderService) AuditTrail(ctx context.Context, orderID string) ([]core.AuditEntry, error) {
	return s.audit.List(ctx, core.EntityTypeOrder, orderID)
}
