package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bazaar-labs/gatehouse/core"
	"github.com/bazaar-labs/gatehouse/ports"
)

// RedisEntityStore is a Redis implementation of ShopStore, OrderStore and
// AuditLog. Entities are JSON documents; status writes are guarded with
// WATCH so a concurrent writer aborts the transaction instead of clobbering
// it. Audit entries are RPUSHed to a per-entity list, which makes the log
// append-only by construction.
type RedisEntityStore struct {
	client *redis.Client
	prefix string
}

// NewRedisEntityStore creates a new Redis entity store
func NewRedisEntityStore(client *redis.Client) *RedisEntityStore {
	return &RedisEntityStore{
		client: client,
		prefix: "gatehouse:",
	}
}

func (s *RedisEntityStore) shopKey(id string) string {
	return s.prefix + "shop:" + id
}

func (s *RedisEntityStore) orderKey(id string) string {
	return s.prefix + "order:" + id
}

func (s *RedisEntityStore) auditKey(entityType core.EntityType, entityID string) string {
	return fmt.Sprintf("%saudit:%s:%s", s.prefix, entityType, entityID)
}

// CreateShop stores a new shop and indexes its id
func (s *RedisEntityStore) CreateShop(ctx context.Context, shop core.Shop) error {
	payload, err := json.Marshal(shop)
	if err != nil {
		return fmt.Errorf("failed to marshal shop: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.shopKey(shop.ID), payload, 0)
	pipe.SAdd(ctx, s.prefix+"shops", shop.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}
	return nil
}

// GetShop retrieves a shop by id
func (s *RedisEntityStore) GetShop(ctx context.Context, id string) (core.Shop, error) {
	raw, err := s.client.Get(ctx, s.shopKey(id)).Result()
	if err == redis.Nil {
		return core.Shop{}, core.ErrShopNotFound
	}
	if err != nil {
		return core.Shop{}, fmt.Errorf("failed to get shop: %w", err)
	}

	var shop core.Shop
	if err := json.Unmarshal([]byte(raw), &shop); err != nil {
		return core.Shop{}, fmt.Errorf("failed to unmarshal shop: %w", err)
	}
	return shop, nil
}

// ListShops loads all indexed shops and filters in process. The moderation
// surface is small; avoiding a secondary index per filter keeps the schema
// flat.
func (s *RedisEntityStore) ListShops(ctx context.Context, q ports.ShopQuery) ([]core.Shop, int, error) {
	ids, err := s.client.SMembers(ctx, s.prefix+"shops").Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shop ids: %w", err)
	}
	if len(ids) == 0 {
		return []core.Shop{}, 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.shopKey(id)
	}

	raws, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load shops: %w", err)
	}

	matches := make([]core.Shop, 0, len(raws))
	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var shop core.Shop
		if err := json.Unmarshal([]byte(str), &shop); err != nil {
			continue
		}
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

// UpdateShopStatus performs a compare-and-swap on the shop's status using a
// WATCH transaction. A concurrent write between the read and the commit
// aborts the transaction and surfaces as a state conflict.
func (s *RedisEntityStore) UpdateShopStatus(ctx context.Context, id string, expected, next core.ShopStatus) (core.Shop, error) {
	key := s.shopKey(id)
	var updated core.Shop

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return core.ErrShopNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get shop: %w", err)
		}

		var shop core.Shop
		if err := json.Unmarshal([]byte(raw), &shop); err != nil {
			return fmt.Errorf("failed to unmarshal shop: %w", err)
		}

		if shop.Status != expected {
			return core.ErrConflictingState
		}

		shop.Status = next
		shop.UpdatedAt = time.Now()

		payload, err := json.Marshal(shop)
		if err != nil {
			return fmt.Errorf("failed to marshal shop: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = shop
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		// Lost the race to a concurrent writer.
		return core.Shop{}, core.ErrConflictingState
	}
	if err != nil {
		return core.Shop{}, err
	}

	return updated, nil
}

// CreateOrder stores a new order and indexes it for both wallets
func (s *RedisEntityStore) CreateOrder(ctx context.Context, order core.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.orderKey(order.ID), payload, 0)
	pipe.SAdd(ctx, s.roleKey(ports.OrderRoleBuyer, order.BuyerWallet), order.ID)
	pipe.SAdd(ctx, s.roleKey(ports.OrderRoleSeller, order.SellerWallet), order.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (s *RedisEntityStore) roleKey(role ports.OrderRole, wallet string) string {
	return fmt.Sprintf("%sorders:%s:%s", s.prefix, role, strings.ToLower(wallet))
}

// GetOrder retrieves an order by id
func (s *RedisEntityStore) GetOrder(ctx context.Context, id string) (core.Order, error) {
	raw, err := s.client.Get(ctx, s.orderKey(id)).Result()
	if err == redis.Nil {
		return core.Order{}, core.ErrOrderNotFound
	}
	if err != nil {
		return core.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	var order core.Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return core.Order{}, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return order, nil
}

// ListOrders returns the orders where wallet plays the given role
func (s *RedisEntityStore) ListOrders(ctx context.Context, role ports.OrderRole, wallet string) ([]core.Order, error) {
	ids, err := s.client.SMembers(ctx, s.roleKey(role, wallet)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list order ids: %w", err)
	}
	if len(ids) == 0 {
		return []core.Order{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.orderKey(id)
	}

	raws, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	orders := make([]core.Order, 0, len(raws))
	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var order core.Order
		if err := json.Unmarshal([]byte(str), &order); err != nil {
			continue
		}
		orders = append(orders, order)
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

// UpdateOrderStatus performs a compare-and-swap on the order's status,
// same WATCH pattern as UpdateShopStatus.
func (s *RedisEntityStore) UpdateOrderStatus(ctx context.Context, id string, expected, next core.OrderStatus) (core.Order, error) {
	key := s.orderKey(id)
	var updated core.Order

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return core.ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}

		var order core.Order
		if err := json.Unmarshal([]byte(raw), &order); err != nil {
			return fmt.Errorf("failed to unmarshal order: %w", err)
		}

		if order.Status != expected {
			return core.ErrConflictingState
		}

		order.Status = next
		order.UpdatedAt = time.Now()

		payload, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("failed to marshal order: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = order
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return core.Order{}, core.ErrConflictingState
	}
	if err != nil {
		return core.Order{}, err
	}

	return updated, nil
}

// Append adds an audit entry to the entity's list
func (s *RedisEntityStore) Append(ctx context.Context, entry core.AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	key := s.auditKey(entry.EntityType, entry.EntityID)
	if err := s.client.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// List returns the audit entries for an entity in append order
func (s *RedisEntityStore) List(ctx context.Context, entityType core.EntityType, entityID string) ([]core.AuditEntry, error) {
	raws, err := s.client.LRange(ctx, s.auditKey(entityType, entityID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	entries := make([]core.AuditEntry, 0, len(raws))
	for _, raw := range raws {
		var entry core.AuditEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
