package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/veggie-dogs/orders/internal/database"
	"github.com/veggie-dogs/orders/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Orders seeds example orders for local development.
func (s *Seeder) Orders(ctx context.Context) error {
	now := time.Now().UTC().Truncate(time.Second)
	purchase := now.Add(-time.Hour)
	samples := []entity.Order{
		{Quantity: 2, TotalPrice: 19.98, Status: "pending", SellerID: 5, BuyerID: 9, ProductID: 42, PurchaseTime: &purchase, CreatedAt: now},
		{Quantity: 1, TotalPrice: 5.49, Status: "shipped", SellerID: 7, BuyerID: 5, ProductID: 17, CreatedAt: now},
		{Quantity: 4, TotalPrice: 44.00, Status: "pending", SellerID: 7, BuyerID: 7, ProductID: 23, CreatedAt: now},
	}

	for _, sample := range samples {
		order := sample
		if _, err := s.db.NewInsert().Model(&order).Exec(ctx); err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded orders", zap.Int("count", len(samples)))
	}
	return nil
}
