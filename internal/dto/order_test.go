package dto

import (
	"testing"
	"time"

	"github.com/veggie-dogs/orders/internal/entity"
)

func TestFromOrderFormatsTimestamps(t *testing.T) {
	purchase := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	order := &entity.Order{
		ID:           7,
		Quantity:     2,
		TotalPrice:   19.98,
		Status:       "pending",
		SellerID:     5,
		BuyerID:      9,
		ProductID:    42,
		PurchaseTime: &purchase,
		CreatedAt:    time.Date(2024, 3, 1, 10, 31, 45, 0, time.UTC),
	}

	resp := FromOrder(order)

	if resp.OrderID != 7 || resp.Quantity != 2 || resp.TotalPrice != 19.98 {
		t.Fatalf("unexpected projection: %+v", resp)
	}
	if resp.PurchaseTime == nil || *resp.PurchaseTime != "2024-03-01 10:30:00" {
		t.Fatalf("unexpected purchase_time: %v", resp.PurchaseTime)
	}
	if resp.CreatedAt == nil || *resp.CreatedAt != "2024-03-01 10:31:45" {
		t.Fatalf("unexpected created_at: %v", resp.CreatedAt)
	}
}

func TestFromOrderNullPurchaseTime(t *testing.T) {
	order := &entity.Order{ID: 1, CreatedAt: time.Now()}

	resp := FromOrder(order)

	if resp.PurchaseTime != nil {
		t.Fatalf("expected null purchase_time, got %v", *resp.PurchaseTime)
	}
}

func TestFromOrderIsReferentiallyTransparent(t *testing.T) {
	order := &entity.Order{ID: 3, Quantity: 1, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	first := FromOrder(order)
	second := FromOrder(order)

	if *first.CreatedAt != *second.CreatedAt || first.OrderID != second.OrderID {
		t.Fatalf("projection must be stable: %+v vs %+v", first, second)
	}
}

func TestFromOrderAttachesLinks(t *testing.T) {
	resp := FromOrder(&entity.Order{ID: 12})

	if got := resp.Links["self"].Href; got != "/search_order?order_id=12" {
		t.Fatalf("unexpected self link %q", got)
	}
	for _, rel := range []string{"all_orders", "create_order", "orders_by_user"} {
		if _, ok := resp.Links[rel]; !ok {
			t.Fatalf("missing %s link", rel)
		}
	}
}

func TestFromOrdersPreservesOrder(t *testing.T) {
	orders := []entity.Order{{ID: 1}, {ID: 2}, {ID: 3}}

	out := FromOrders(orders)

	if len(out) != 3 {
		t.Fatalf("expected 3 projections, got %d", len(out))
	}
	for i, resp := range out {
		if resp.OrderID != int64(i+1) {
			t.Fatalf("order not preserved at index %d: %d", i, resp.OrderID)
		}
	}
}

func TestCollectionLinks(t *testing.T) {
	links := CollectionLinks("/search_orders_by_id?user_id=7&role=buyer")

	if links["self"].Href != "/search_orders_by_id?user_id=7&role=buyer" {
		t.Fatalf("unexpected self link %q", links["self"].Href)
	}
	if links["all_orders"].Href != "/search_order" {
		t.Fatalf("unexpected all_orders link %q", links["all_orders"].Href)
	}
}
