package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/veggie-dogs/orders/internal/config"
	"github.com/veggie-dogs/orders/internal/database"
	"github.com/veggie-dogs/orders/internal/entity"
)

var repoTracer = otel.Tracer("github.com/veggie-dogs/orders/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// Repository encapsulates read/write access for orders. Every lookup binds
// caller input as query parameters; no identifier is ever spliced into SQL
// text. Each call runs under a bounded timeout so a slow store cannot stall
// a request indefinitely.
type Repository struct {
	writer       *bun.DB
	reader       *bun.DB
	queryTimeout time.Duration
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections, cfg config.Config) *Repository {
	timeout := cfg.Database.QueryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Repository{
		writer:       conns.Writer,
		reader:       conns.Reader,
		queryTimeout: timeout,
	}
}

// Create persists a new order using the write connection. The store assigns
// order_id and created_at; bun scans both back into the model.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.Int64("order.product_id", order.ProductID)))
	defer span.End()
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err := r.writer.NewInsert().Model(order).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order by primary key using the read replica when
// available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()
	ctx, cancel := r.bound(ctx)
	defer cancel()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Where("order_id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// List returns every stored order, sorted by order_id for deterministic
// output.
func (r *Repository) List(ctx context.Context) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List")
	defer span.End()
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var orders []entity.Order
	err := r.reader.NewSelect().Model(&orders).Order("order_id ASC").Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// ListByParticipant returns orders involving the participant in the given
// role. RoleAny matches either side with a single predicate, so an order
// where the participant is both seller and buyer appears exactly once.
func (r *Repository) ListByParticipant(ctx context.Context, participantID int64, role entity.Role) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByParticipant", trace.WithAttributes(
		attribute.Int64("order.participant_id", participantID),
		attribute.String("order.role", string(role)),
	))
	defer span.End()
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var orders []entity.Order
	q := r.reader.NewSelect().Model(&orders)

	switch role {
	case entity.RoleSeller:
		q = q.Where("seller_id = ?", participantID)
	case entity.RoleBuyer:
		q = q.Where("buyer_id = ?", participantID)
	default:
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereOr("seller_id = ?", participantID).WhereOr("buyer_id = ?", participantID)
		})
	}

	if err := q.Order("order_id ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

func (r *Repository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.queryTimeout)
}
