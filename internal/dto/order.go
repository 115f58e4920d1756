package dto

import (
	"fmt"
	"time"

	"github.com/veggie-dogs/orders/internal/entity"
)

// TimeLayout is the wire format for both order timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// Link is a single hypermedia reference.
type Link struct {
	Href string `json:"href"`
}

// Links maps relation names onto discovery targets.
type Links map[string]Link

// OrderResponse represents an order as exposed to callers. Timestamps are
// pre-formatted strings so absent values render as JSON null.
type OrderResponse struct {
	OrderID      int64   `json:"order_id"`
	Quantity     int     `json:"quantity"`
	TotalPrice   float64 `json:"total_price"`
	PurchaseTime *string `json:"purchase_time"`
	Status       string  `json:"status"`
	SellerID     int64   `json:"seller_id"`
	BuyerID      int64   `json:"buyer_id"`
	ProductID    int64   `json:"product_id"`
	CreatedAt    *string `json:"created_at"`
	Links        Links   `json:"_links,omitempty"`
}

// OrdersEnvelope wraps one or more orders in the standard list shape.
type OrdersEnvelope struct {
	Message string          `json:"message,omitempty"`
	Orders  []OrderResponse `json:"orders"`
	Links   Links           `json:"_links,omitempty"`
}

// CreatedResponse acknowledges a successful order creation. The generated
// id is echoed so callers can fetch their own order without enumerating.
type CreatedResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
	Links   Links  `json:"_links,omitempty"`
}

// FromOrder projects a stored order into its caller-facing shape. The
// projection is stateless: the same row always yields the same output.
func FromOrder(order *entity.Order) OrderResponse {
	return OrderResponse{
		OrderID:      order.ID,
		Quantity:     order.Quantity,
		TotalPrice:   order.TotalPrice,
		PurchaseTime: formatTime(order.PurchaseTime),
		Status:       order.Status,
		SellerID:     order.SellerID,
		BuyerID:      order.BuyerID,
		ProductID:    order.ProductID,
		CreatedAt:    formatTimeValue(order.CreatedAt),
		Links:        orderLinks(order.ID),
	}
}

// FromOrders projects a result set, preserving store order.
func FromOrders(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, FromOrder(&orders[i]))
	}
	return out
}

func orderLinks(id int64) Links {
	return Links{
		"self":           {Href: fmt.Sprintf("/search_order?order_id=%d", id)},
		"all_orders":     {Href: "/search_order"},
		"create_order":   {Href: "/post_order"},
		"orders_by_user": {Href: "/search_orders_by_id"},
	}
}

// CollectionLinks builds the envelope-level discovery block for a listing
// rooted at self.
func CollectionLinks(self string) Links {
	return Links{
		"self":           {Href: self},
		"all_orders":     {Href: "/search_order"},
		"create_order":   {Href: "/post_order"},
		"orders_by_user": {Href: "/search_orders_by_id"},
	}
}

// ParticipantLinks is the discovery block for the by-user listing. The
// listing is its own self relation, so it does not repeat orders_by_user.
func ParticipantLinks(self string) Links {
	return Links{
		"self":         {Href: self},
		"all_orders":   {Href: "/search_order"},
		"create_order": {Href: "/post_order"},
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return formatTimeValue(*t)
}

func formatTimeValue(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(TimeLayout)
	return &s
}
