package transport

import (
	"errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthServer answers grpc.health.v1.Health checks on its own port.
type HealthServer struct {
	log    *slog.Logger
	server *grpc.Server
	health *health.Server
}

func NewHealthServer(log *slog.Logger) *HealthServer {
	server := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	reflection.Register(server)
	return &HealthServer{log: log, server: server, health: healthServer}
}

// Serve blocks until Shutdown is called.
func (h *HealthServer) Serve(listener net.Listener) error {
	h.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	h.log.Info("Starting gRPC health server", "address", listener.Addr().String())
	if err := h.server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Shutdown flips every service to NOT_SERVING then stops the server.
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
	h.server.GracefulStop()
}

// NotServing is called as soon as the process starts draining.
func (h *HealthServer) NotServing() {
	h.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
}
