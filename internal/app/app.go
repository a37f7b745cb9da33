package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/bakery/internal/cache"
	"github.com/Additional-Code/bakery/internal/config"
	"github.com/Additional-Code/bakery/internal/database"
	"github.com/Additional-Code/bakery/internal/logger"
	"github.com/Additional-Code/bakery/internal/messaging"
	"github.com/Additional-Code/bakery/internal/migration"
	"github.com/Additional-Code/bakery/internal/observability"
	repositoryorder "github.com/Additional-Code/bakery/internal/repository/order"
	"github.com/Additional-Code/bakery/internal/seeder"
	grpcserver "github.com/Additional-Code/bakery/internal/server/grpc"
	httpserver "github.com/Additional-Code/bakery/internal/server/http"
	serviceorder "github.com/Additional-Code/bakery/internal/service/order"
	transporthttp "github.com/Additional-Code/bakery/internal/transport/http"
	"github.com/Additional-Code/bakery/internal/worker"
	workerorder "github.com/Additional-Code/bakery/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	migration.Module,
	observability.Module,
	repositoryorder.Module,
	seeder.Module,
	serviceorder.Module,
)

// Bootstrap prepares the store on start: pending migrations first, then
// optional demo data. Both are gated by configuration.
var Bootstrap = fx.Options(
	migration.AutoMigrate,
	seeder.SeedOnEmpty,
)

// HTTP wires the HTTP transport (and the optional gRPC health server) on top
// of the core modules.
var HTTP = fx.Options(
	Core,
	Bootstrap,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
