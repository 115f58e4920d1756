package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/veggie-dogs/orders/internal/cache"
	"github.com/veggie-dogs/orders/internal/config"
	"github.com/veggie-dogs/orders/internal/entity"
	"github.com/veggie-dogs/orders/internal/messaging"
	repo "github.com/veggie-dogs/orders/internal/repository/order"
	"github.com/veggie-dogs/orders/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/veggie-dogs/orders/service/order")

// Repository is the store surface the service depends on.
type Repository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	List(ctx context.Context) ([]entity.Order, error)
	ListByParticipant(ctx context.Context, participantID int64, role entity.Role) ([]entity.Order, error)
}

// Service encapsulates query and mutation logic around orders.
type Service struct {
	repo      Repository
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled        bool
	channel        string
	publishTimeout time.Duration
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return New(p.Repository, p.Cache, p.Publisher, p.Config, p.Logger)
}

// New constructs a Service from explicit collaborators.
func New(repository Repository, store cache.Store, publisher messaging.Client, cfg config.Config, logger *zap.Logger) *Service {
	return &Service{
		repo:      repository,
		cache:     store,
		cacheTTL:  cfg.Cache.DefaultTTL,
		logger:    logger,
		publisher: publisher,
		messaging: messagingConfig{
			enabled:        cfg.Messaging.Enabled,
			channel:        cfg.Messaging.Channel,
			publishTimeout: cfg.Messaging.PublishTimeout,
		},
	}
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		if s.logger != nil {
			s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("No order found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	return order, nil
}

// List returns all stored orders. An empty table is not an error; callers
// decide how to signal it.
func (s *Service) List(ctx context.Context) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	orders, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// ListByParticipant returns orders involving the participant in the given
// role. An order where the participant is both seller and buyer appears
// exactly once when no role narrows the match.
func (s *Service) ListByParticipant(ctx context.Context, participantID int64, role entity.Role) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListByParticipant", trace.WithAttributes(
		attribute.Int64("order.participant_id", participantID),
		attribute.String("order.role", string(role)),
	))
	defer span.End()

	orders, err := s.repo.ListByParticipant(ctx, participantID, role)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders by participant", errorbank.WithCause(err))
	}
	return orders, nil
}

// Create persists a new order, then announces it on the event channel. The
// publish happens strictly after the insert succeeds; on any store failure
// no event is emitted. A failed publish degrades to "event lost" and never
// fails the creation.
func (s *Service) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errorbank.BadRequest("order payload is required")
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.Int64("order.product_id", order.ProductID)))
	defer span.End()

	if err := s.repo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", order.ID), zap.Error(err))
		}
	}

	s.publishOrderCreated(ctx, order)
	return nil
}

func (s *Service) publishOrderCreated(ctx context.Context, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderCreatedEvent{
		OrderID:    order.ID,
		Quantity:   order.Quantity,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		SellerID:   order.SellerID,
		BuyerID:    order.BuyerID,
		ProductID:  order.ProductID,
		CreatedAt:  order.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal order created", zap.Error(err))
		}
		return
	}

	// Bounded and detached from the request context: the row is already
	// committed, so request cancellation must not turn into a lost event,
	// and a slow broker must not stall the response.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.messaging.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish order created", zap.Int64("id", order.ID), zap.Error(err))
		}
	}
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("orders:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

// OrderCreatedEvent is emitted on the event channel when a new order is
// persisted.
type OrderCreatedEvent struct {
	OrderID    int64     `json:"order_id"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	SellerID   int64     `json:"seller_id"`
	BuyerID    int64     `json:"buyer_id"`
	ProductID  int64     `json:"product_id"`
	CreatedAt  time.Time `json:"created_at"`
}
