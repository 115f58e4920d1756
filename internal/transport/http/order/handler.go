package order

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/veggie-dogs/orders/internal/dto"
	"github.com/veggie-dogs/orders/internal/entity"
	"github.com/veggie-dogs/orders/internal/presentation/http/response"
	"github.com/veggie-dogs/orders/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/veggie-dogs/orders/transport/http/order")

// Service is the order operations surface the handler talks to.
type Service interface {
	Get(ctx context.Context, id int64) (*entity.Order, error)
	List(ctx context.Context) ([]entity.Order, error)
	ListByParticipant(ctx context.Context, participantID int64, role entity.Role) ([]entity.Order, error)
	Create(ctx context.Context, order *entity.Order) error
}

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/search_order", h.searchOrder)
	e.GET("/search_orders_by_id", h.searchOrdersByParticipant)
	e.POST("/post_order", h.postOrder)
}

// searchOrder looks up a single order by order_id, or lists every order
// when the parameter is absent.
func (h *Handler) searchOrder(c echo.Context) error {
	b := response.New(c)

	rawID := c.QueryParam("order_id")
	if rawID == "" {
		ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
		defer span.End()

		orders, err := h.svc.List(ctx)
		if err != nil {
			return b.WithError(err).Build()
		}
		if len(orders) == 0 {
			return b.WithError(errorbank.NotFound("No order found")).Build()
		}
		return b.WithData(dto.OrdersEnvelope{
			Message: "No order_id provided, returning all orders",
			Orders:  dto.FromOrders(orders),
			Links:   dto.CollectionLinks("/search_order"),
		}).Build()
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("order_id must be an integer", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.OrdersEnvelope{
		Orders: []dto.OrderResponse{dto.FromOrder(order)},
	}).Build()
}

// searchOrdersByParticipant lists orders involving a participant, narrowed
// by the optional role token. A missing user_id is a client error, distinct
// from "no orders found".
func (h *Handler) searchOrdersByParticipant(c echo.Context) error {
	b := response.New(c)

	rawID := c.QueryParam("user_id")
	if rawID == "" {
		return b.WithError(errorbank.BadRequest("user_id parameter is required")).Build()
	}
	participantID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("user_id must be an integer", errorbank.WithCause(err))).Build()
	}

	rawRole := c.QueryParam("role")
	role := entity.ParseRole(rawRole)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listByParticipant", trace.WithAttributes(
		attribute.Int64("order.participant_id", participantID),
		attribute.String("order.role", string(role)),
	))
	defer span.End()

	orders, err := h.svc.ListByParticipant(ctx, participantID, role)
	if err != nil {
		return b.WithError(err).Build()
	}
	if len(orders) == 0 {
		return b.WithError(errorbank.NotFound("No orders found for this user ID")).Build()
	}

	return b.WithData(dto.OrdersEnvelope{
		Orders: dto.FromOrders(orders),
		Links:  dto.ParticipantLinks(fmt.Sprintf("/search_orders_by_id?user_id=%d&role=%s", participantID, rawRole)),
	}).Build()
}

// createOrderPayload uses pointer fields so an omitted field is
// distinguishable from a zero value.
type createOrderPayload struct {
	Quantity     *int     `json:"quantity"`
	TotalPrice   *float64 `json:"total_price"`
	Status       *string  `json:"status"`
	SellerID     *int64   `json:"seller_id"`
	BuyerID      *int64   `json:"buyer_id"`
	ProductID    *int64   `json:"product_id"`
	PurchaseTime *string  `json:"purchase_time"`
}

func (p createOrderPayload) complete() bool {
	return p.Quantity != nil &&
		p.TotalPrice != nil &&
		p.Status != nil &&
		p.SellerID != nil &&
		p.BuyerID != nil &&
		p.ProductID != nil
}

// postOrder validates the six required fields before any store access, then
// persists the order and acknowledges with the generated id.
func (h *Handler) postOrder(c echo.Context) error {
	b := response.New(c)

	var payload createOrderPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if !payload.complete() {
		return b.WithError(errorbank.BadRequest("Missing required fields")).Build()
	}

	var purchaseTime *time.Time
	if payload.PurchaseTime != nil && *payload.PurchaseTime != "" {
		t, err := time.Parse(dto.TimeLayout, *payload.PurchaseTime)
		if err != nil {
			return b.WithError(errorbank.BadRequest("purchase_time must be formatted as YYYY-MM-DD HH:MM:SS", errorbank.WithCause(err))).Build()
		}
		purchaseTime = &t
	}

	order := &entity.Order{
		Quantity:     *payload.Quantity,
		TotalPrice:   *payload.TotalPrice,
		Status:       *payload.Status,
		SellerID:     *payload.SellerID,
		BuyerID:      *payload.BuyerID,
		ProductID:    *payload.ProductID,
		PurchaseTime: purchaseTime,
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create", trace.WithAttributes(
		attribute.Int64("order.product_id", order.ProductID),
	))
	defer span.End()

	if err := h.svc.Create(ctx, order); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.CreatedResponse{
		Message: "New order created",
		OrderID: order.ID,
		Links: dto.Links{
			"self":           {Href: "/post_order"},
			"created_order":  {Href: fmt.Sprintf("/search_order?order_id=%d", order.ID)},
			"all_orders":     {Href: "/search_order"},
			"orders_by_user": {Href: "/search_orders_by_id"},
		},
	}).Build()
}
