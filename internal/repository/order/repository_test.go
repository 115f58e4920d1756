package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/veggie-dogs/orders/internal/entity"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps the in-memory database alive for the test.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	_, err = db.NewCreateTable().Model((*entity.Order)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	return &Repository{writer: db, reader: db, queryTimeout: 5 * time.Second}
}

func mustCreate(t *testing.T, repo *Repository, order *entity.Order) *entity.Order {
	t.Helper()
	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID == 0 {
		t.Fatalf("expected store-assigned id")
	}
	return order
}

func TestRepositoryCreateAndGetByID(t *testing.T) {
	repo := newTestRepository(t)

	purchase := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	created := mustCreate(t, repo, &entity.Order{
		Quantity:     2,
		TotalPrice:   19.98,
		Status:       "pending",
		SellerID:     5,
		BuyerID:      9,
		ProductID:    42,
		PurchaseTime: &purchase,
	})

	got, err := repo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Quantity != 2 || got.TotalPrice != 19.98 || got.Status != "pending" {
		t.Fatalf("unexpected order fields: %+v", got)
	}
	if got.SellerID != 5 || got.BuyerID != 9 || got.ProductID != 42 {
		t.Fatalf("unexpected participant fields: %+v", got)
	}
	if got.PurchaseTime == nil || !got.PurchaseTime.Equal(purchase) {
		t.Fatalf("unexpected purchase time: %v", got.PurchaseTime)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("created_at must be set after creation")
	}
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo := newTestRepository(t)

	if _, err := repo.GetByID(context.Background(), 12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryCreateLeavesPurchaseTimeNull(t *testing.T) {
	repo := newTestRepository(t)

	created := mustCreate(t, repo, &entity.Order{
		Quantity:   1,
		TotalPrice: 5.49,
		Status:     "pending",
		SellerID:   1,
		BuyerID:    2,
		ProductID:  3,
	})

	got, err := repo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.PurchaseTime != nil {
		t.Fatalf("expected null purchase time, got %v", got.PurchaseTime)
	}
}

func TestRepositoryListOrdersByID(t *testing.T) {
	repo := newTestRepository(t)

	// Insert out of id order is impossible with autoincrement, so verify
	// the canonical ascending sort over several rows instead.
	for i := 0; i < 3; i++ {
		mustCreate(t, repo, &entity.Order{
			Quantity: i + 1, TotalPrice: float64(i), Status: "pending",
			SellerID: 1, BuyerID: 2, ProductID: int64(i),
		})
	}

	orders, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	for i := 1; i < len(orders); i++ {
		if orders[i].ID <= orders[i-1].ID {
			t.Fatalf("orders not sorted by order_id: %v then %v", orders[i-1].ID, orders[i].ID)
		}
	}
}

func TestRepositoryListEmptyIsNotAnError(t *testing.T) {
	repo := newTestRepository(t)

	orders, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected empty result, got %d", len(orders))
	}
}

func TestRepositoryListByParticipantRoles(t *testing.T) {
	repo := newTestRepository(t)

	asSeller := mustCreate(t, repo, &entity.Order{Quantity: 1, TotalPrice: 10, Status: "pending", SellerID: 7, BuyerID: 2, ProductID: 1})
	asBuyer := mustCreate(t, repo, &entity.Order{Quantity: 1, TotalPrice: 20, Status: "shipped", SellerID: 3, BuyerID: 7, ProductID: 2})
	mustCreate(t, repo, &entity.Order{Quantity: 1, TotalPrice: 30, Status: "pending", SellerID: 4, BuyerID: 5, ProductID: 3})

	sellerOrders, err := repo.ListByParticipant(context.Background(), 7, entity.RoleSeller)
	if err != nil {
		t.Fatalf("list by seller: %v", err)
	}
	if len(sellerOrders) != 1 || sellerOrders[0].ID != asSeller.ID {
		t.Fatalf("unexpected seller result: %+v", sellerOrders)
	}

	buyerOrders, err := repo.ListByParticipant(context.Background(), 7, entity.RoleBuyer)
	if err != nil {
		t.Fatalf("list by buyer: %v", err)
	}
	if len(buyerOrders) != 1 || buyerOrders[0].ID != asBuyer.ID {
		t.Fatalf("unexpected buyer result: %+v", buyerOrders)
	}

	both, err := repo.ListByParticipant(context.Background(), 7, entity.RoleAny)
	if err != nil {
		t.Fatalf("list by any role: %v", err)
	}
	if len(both) != 2 {
		t.Fatalf("expected both orders, got %d", len(both))
	}
	if both[0].ID != asSeller.ID || both[1].ID != asBuyer.ID {
		t.Fatalf("unexpected union result order: %v, %v", both[0].ID, both[1].ID)
	}
}

func TestRepositoryListByParticipantDeduplicates(t *testing.T) {
	repo := newTestRepository(t)

	// Same participant on both sides of the trade must appear once.
	self := mustCreate(t, repo, &entity.Order{Quantity: 1, TotalPrice: 44, Status: "pending", SellerID: 7, BuyerID: 7, ProductID: 23})

	orders, err := repo.ListByParticipant(context.Background(), 7, entity.RoleAny)
	if err != nil {
		t.Fatalf("list by any role: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected exactly one order, got %d", len(orders))
	}
	if orders[0].ID != self.ID {
		t.Fatalf("unexpected order id %d", orders[0].ID)
	}
}

func TestRepositoryListByParticipantEmpty(t *testing.T) {
	repo := newTestRepository(t)

	orders, err := repo.ListByParticipant(context.Background(), 99, entity.RoleAny)
	if err != nil {
		t.Fatalf("list by participant: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}
