package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Role narrows participant-based order listings.
type Role string

const (
	// RoleSeller matches orders where the participant is the seller.
	RoleSeller Role = "seller"
	// RoleBuyer matches orders where the participant is the buyer.
	RoleBuyer Role = "buyer"
	// RoleAny matches orders where the participant is either party.
	RoleAny Role = "any"
)

// ParseRole maps a caller-supplied role token onto a Role. Unrecognized or
// empty tokens mean "either side", mirroring the query contract.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleSeller:
		return RoleSeller
	case RoleBuyer:
		return RoleBuyer
	default:
		return RoleAny
	}
}

// Order is a transaction record linking a buyer, seller, and product.
// The store assigns ID and CreatedAt at insert time; no other field is
// ever mutated after creation.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID           int64      `bun:"order_id,pk,autoincrement"`
	Quantity     int        `bun:"quantity,notnull"`
	TotalPrice   float64    `bun:"total_price,notnull"`
	PurchaseTime *time.Time `bun:"purchase_time,nullzero"`
	Status       string     `bun:"status,notnull"`
	SellerID     int64      `bun:"seller_id,notnull"`
	BuyerID      int64      `bun:"buyer_id,notnull"`
	ProductID    int64      `bun:"product_id,notnull"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
