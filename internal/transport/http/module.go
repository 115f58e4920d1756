package http

import (
	"go.uber.org/fx"

	ordertransport "github.com/veggie-dogs/orders/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
)
