package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/veggie-dogs/orders/internal/config"
	"github.com/veggie-dogs/orders/internal/messaging"
	ordersvc "github.com/veggie-dogs/orders/internal/service/order"
	"github.com/veggie-dogs/orders/internal/worker"
)

var workerTracer = otel.Tracer("github.com/veggie-dogs/orders/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderCreatedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderCreatedHandler sets up the subscriber side of the order-created
// channel. Consuming a message only logs it; no business side effect hangs
// off creation yet.
func NewOrderCreatedHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.channel", msg.Channel),
		))
		defer span.End()

		var event ordersvc.OrderCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order created", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		logger.Info("order created event received",
			zap.Int64("order_id", event.OrderID),
			zap.String("status", event.Status),
			zap.Int64("seller_id", event.SellerID),
			zap.Int64("buyer_id", event.BuyerID),
		)

		return nil
	}

	return worker.HandlerRegistration{
		Channel: cfg.Messaging.Channel,
		Handler: handler,
	}
}
