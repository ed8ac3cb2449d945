package core

import "time"

// ShopStatus is the lifecycle state of a shop.
type ShopStatus string

const (
	ShopStatusPending   ShopStatus = "PENDING"
	ShopStatusActive    ShopStatus = "ACTIVE"
	ShopStatusSuspended ShopStatus = "SUSPENDED"
)

// ValidShopStatus reports whether s is one of the known shop statuses.
func ValidShopStatus(s ShopStatus) bool {
	switch s {
	case ShopStatusPending, ShopStatusActive, ShopStatusSuspended:
		return true
	}
	return false
}

// Shop is a seller storefront subject to moderation. Status is mutated only
// through the moderation service, which records an audit entry per
// transition.
type Shop struct {
	ID          string     `json:"id"`
	OwnerWallet string     `json:"owner_wallet"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      ShopStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
