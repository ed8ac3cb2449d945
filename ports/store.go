package ports

import (
	"context"
	"time"

	"github.com/bazaar-labs/gatehouse/core"
)

// ChallengeStore persists issued login nonces and enforces single use.
type ChallengeStore interface {
	// Save persists a freshly issued challenge under its nonce value with
	// the given TTL.
	Save(ctx context.Context, challenge core.Challenge, ttl time.Duration) error

	// Consume atomically claims the nonce. For a given nonce value at most
	// one concurrent caller succeeds; subsequent callers get
	// core.ErrChallengeConsumed (or core.ErrChallengeNotFound once the
	// entry has expired out of the store).
	Consume(ctx context.Context, nonce string) error
}

// SessionStore tracks revoked session tokens by their JTI.
type SessionStore interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ShopQuery filters and paginates shop listings.
type ShopQuery struct {
	Status   *core.ShopStatus // nil means any status
	Search   string           // substring match on name or owner wallet
	Page     int              // 1-based
	PageSize int
}

// ShopStore persists shops. UpdateShopStatus is the only status writer and
// is compare-and-swap: the write happens only if the shop's status still
// equals expected at write time.
type ShopStore interface {
	CreateShop(ctx context.Context, shop core.Shop) error
	GetShop(ctx context.Context, id string) (core.Shop, error)
	ListShops(ctx context.Context, q ShopQuery) ([]core.Shop, int, error)

	// UpdateShopStatus returns core.ErrConflictingState without writing when
	// the current status differs from expected, and core.ErrShopNotFound
	// when the shop does not exist.
	UpdateShopStatus(ctx context.Context, id string, expected, next core.ShopStatus) (core.Shop, error)
}

// OrderRole selects which side of an order a wallet is on.
type OrderRole string

const (
	OrderRoleBuyer  OrderRole = "buyer"
	OrderRoleSeller OrderRole = "seller"
)

// OrderStore persists orders. UpdateOrderStatus is compare-and-swap on the
// current status, same contract as ShopStore.UpdateShopStatus.
type OrderStore interface {
	CreateOrder(ctx context.Context, order core.Order) error
	GetOrder(ctx context.Context, id string) (core.Order, error)
	ListOrders(ctx context.Context, role OrderRole, wallet string) ([]core.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, expected, next core.OrderStatus) (core.Order, error)
}

// AuditLog is the append-only record of privileged state changes.
type AuditLog interface {
	Append(ctx context.Context, entry core.AuditEntry) error
	List(ctx context.Context, entityType core.EntityType, entityID string) ([]core.AuditEntry, error)
}
