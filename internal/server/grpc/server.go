package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/Additional-Code/bakery/internal/config"
	"github.com/Additional-Code/bakery/internal/database"
	"github.com/Additional-Code/bakery/pkg/errorbank"
)

// OrdersService is the health-check service name reported for the order store.
const OrdersService = "bakery.orders"

const probeInterval = 15 * time.Second

// Pinger reports whether the order store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Module exposes the gRPC server and lifecycle hooks to Fx.
var Module = fx.Module("grpc_server",
	fx.Provide(
		NewServer,
		health.NewServer,
		func(c *database.Connections) Pinger { return c },
	),
	fx.Invoke(Run),
)

// NewServer builds a gRPC server with logging interceptors and the health service registered.
func NewServer(logger *zap.Logger, hs *health.Server) *grpc.Server {
	unary := func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)
		if err != nil {
			logger.Warn("grpc unary call finished", zap.String("method", info.FullMethod), zap.Duration("duration", duration), zap.Error(err))
		} else {
			logger.Debug("grpc unary call finished", zap.String("method", info.FullMethod), zap.Duration("duration", duration))
		}
		return resp, toStatus(err)
	}

	stream := func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		duration := time.Since(start)
		if err != nil {
			logger.Warn("grpc stream call finished", zap.String("method", info.FullMethod), zap.Duration("duration", duration), zap.Error(err))
		} else {
			logger.Debug("grpc stream call finished", zap.String("method", info.FullMethod), zap.Duration("duration", duration))
		}
		return toStatus(err)
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary),
		grpc.ChainStreamInterceptor(stream),
	)
	healthpb.RegisterHealthServer(server, hs)
	return server
}

// toStatus maps application errors onto gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	var appErr *errorbank.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	return status.Error(appErr.GRPCCode(), appErr.Message())
}

// Probe sets the serving status of OrdersService from a single store ping.
func Probe(ctx context.Context, hs *health.Server, db Pinger) healthpb.HealthCheckResponse_ServingStatus {
	state := healthpb.HealthCheckResponse_SERVING
	if err := db.Ping(ctx); err != nil {
		state = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus(OrdersService, state)
	return state
}

// RunParams groups the dependencies of Run.
type RunParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Server    *grpc.Server
	Health    *health.Server
	Store     Pinger
	Logger    *zap.Logger
}

// Run binds the gRPC server to the configured host/port and manages lifecycle.
// It is a no-op unless GRPC_ENABLED is set.
func Run(p RunParams) {
	if !p.Config.GRPC.Enabled {
		return
	}

	addr := fmt.Sprintf("%s:%d", p.Config.GRPC.Host, p.Config.GRPC.Port)
	logger := p.Logger
	var listener net.Listener
	probeCtx, cancelProbe := context.WithCancel(context.Background())

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				cancelProbe()
				return fmt.Errorf("listen grpc: %w", err)
			}
			listener = ln

			Probe(ctx, p.Health, p.Store)
			go func() {
				ticker := time.NewTicker(probeInterval)
				defer ticker.Stop()
				for {
					select {
					case <-probeCtx.Done():
						return
					case <-ticker.C:
						Probe(probeCtx, p.Health, p.Store)
					}
				}
			}()

			logger.Info("starting gRPC server", zap.String("addr", addr))
			go func() {
				if err := p.Server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
					logger.Fatal("grpc server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping gRPC server")
			cancelProbe()
			p.Health.Shutdown()

			stopped := make(chan struct{})
			go func() {
				p.Server.GracefulStop()
				close(stopped)
			}()

			select {
			case <-ctx.Done():
				p.Server.Stop()
				return ctx.Err()
			case <-stopped:
				if listener != nil {
					_ = listener.Close()
				}
				return nil
			}
		},
	})
}
