package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// orderTransitions is the fixed directed graph of permitted status moves.
// COMPLETED and CANCELLED are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusCompleted},
}

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a permitted move from s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Order is a purchase between a buyer and a seller. Only the seller
// identified by SellerWallet may advance its status, and only along the
// transition graph.
type Order struct {
	ID           string          `json:"id"`
	BuyerWallet  string          `json:"buyer_wallet"`
	SellerWallet string          `json:"seller_wallet"`
	ShopID       string          `json:"shop_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
