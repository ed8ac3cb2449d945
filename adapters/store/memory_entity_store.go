package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/ports"
)

// MemoryEntityStore is an in-memory implementation of ShopStore, OrderStore
// and AuditLog backed by mutex-guarded maps. Status writes are
// compare-and-swap: the lock makes the read-compare-write a single step.
type MemoryEntityStore struct {
	shops  map[string]core.Shop
	orders map[string]core.Order
	audit  []core.AuditEntry
	mu     sync.RWMutex
}

// NewMemoryEntityStore creates a new in-memory entity store
func NewMemoryEntityStore() *MemoryEntityStore {
	return &MemoryEntityStore{
		shops:  make(map[string]core.Shop),
		orders: make(map[string]core.Order),
	}
}

// CreateShop stores a new shop
func (s *MemoryEntityStore) CreateShop(ctx context.Context, shop core.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shops[shop.ID] = shop
	return nil
}

// GetShop retrieves a shop by id
func (s *MemoryEntityStore) GetShop(ctx context.Context, id string) (core.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shop, ok := s.shops[id]
	if !ok {
		return core.Shop{}, core.ErrShopNotFound
	}
	return shop, nil
}

// ListShops returns a filtered, paginated page of shops and the total count
// of matches. Results are ordered by creation time, newest first.
func (s *MemoryEntityStore) ListShops(ctx context.Context, q ports.ShopQuery) ([]core.Shop, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]core.Shop, 0, len(s.shops))
	for _, shop := range s.shops {
		if q.Status != nil && shop.Status != *q.Status {
			continue
		}
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(shop.Name), needle) &&
				!strings.Contains(strings.ToLower(shop.OwnerWallet), needle) {
				continue
			}
		}
		matches = append(matches, shop)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = 20
	}

	start := (page - 1) * size
	if start >= total {
		return []core.Shop{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}

	return matches[start:end], total, nil
}

// UpdateShopStatus performs a compare-and-swap on the shop's status
func (s *MemoryEntityStore) UpdateShopStatus(ctx context.Context, id string, expected, next core.ShopStatus) (core.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shop, ok := s.shops[id]
	if !ok {
		return core.Shop{}, core.ErrShopNotFound
	}
	if shop.Status != expected {
		return core.Shop{}, core.ErrConflictingState
	}

	shop.Status = next
	shop.UpdatedAt = time.Now()
	s.shops[id] = shop
	return shop, nil
}

// CreateOrder stores a new order
func (s *MemoryEntityStore) CreateOrder(ctx context.Context, order core.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.ID] = order
	return nil
}

// GetOrder retrieves an order by id
func (s *MemoryEntityStore) GetOrder(ctx context.Context, id string) (core.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return core.Order{}, core.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns the orders where wallet plays the given role, newest
// first.
func (s *MemoryEntityStore) ListOrders(ctx context.Context, role ports.OrderRole, wallet string) ([]core.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]core.Order, 0)
	for _, order := range s.orders {
		switch role {
		case ports.OrderRoleBuyer:
			if strings.EqualFold(order.BuyerWallet, wallet) {
				matches = append(matches, order)
			}
		case ports.OrderRoleSeller:
			if strings.EqualFold(order.SellerWallet, wallet) {
				matches = append(matches, order)
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	return matches, nil
}

// UpdateOrderStatus performs a compare-and-swap on the order's status
func (s *MemoryEntityStore) UpdateOrderStatus(ctx context.Context, id string, expected, next core.OrderStatus) (core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return core.Order{}, core.ErrOrderNotFound
	}
	if order.Status != expected {
		return core.Order{}, core.ErrConflictingState
	}

	order.Status = next
	order.UpdatedAt = time.Now()
	s.orders[id] = order
	return order, nil
}

// Append adds an immutable audit entry
func (s *MemoryEntityStore) Append(ctx context.Context, entry core.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = append(s.audit, entry)
	return nil
}

// List returns the audit entries for an entity in append order
func (s *MemoryEntityStore) List(ctx context.Context, entityType core.EntityType, entityID string) ([]core.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]core.AuditEntry, 0)
	for _, entry := range s.audit {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
