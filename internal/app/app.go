package app

import (
	"go.uber.org/fx"

	"github.com/veggie-dogs/orders/internal/cache"
	"github.com/veggie-dogs/orders/internal/config"
	"github.com/veggie-dogs/orders/internal/database"
	"github.com/veggie-dogs/orders/internal/logger"
	"github.com/veggie-dogs/orders/internal/messaging"
	"github.com/veggie-dogs/orders/internal/observability"
	repositoryorder "github.com/veggie-dogs/orders/internal/repository/order"
	grpcserver "github.com/veggie-dogs/orders/internal/server/grpc"
	httpserver "github.com/veggie-dogs/orders/internal/server/http"
	serviceorder "github.com/veggie-dogs/orders/internal/service/order"
	transporthttp "github.com/veggie-dogs/orders/internal/transport/http"
	"github.com/veggie-dogs/orders/internal/worker"
	workerorder "github.com/veggie-dogs/orders/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositoryorder.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP and gRPC transports on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes the order-created subscriber.
var Worker = fx.Options(
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring: the HTTP service with the
// order-created subscriber attached for the process lifetime.
var Module = fx.Options(
	HTTP,
	Worker,
)
