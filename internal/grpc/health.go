package server

import (
	"context"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// HealthChecker implements the gRPC health checking protocol. When a probe
// is set, a SERVING service is reported NOT_SERVING while the probe fails.
type HealthChecker struct {
	grpc_health_v1.UnimplementedHealthServer
	mu     sync.RWMutex
	status map[string]grpc_health_v1.HealthCheckResponse_ServingStatus
	probe  func(ctx context.Context) error
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		status: make(map[string]grpc_health_v1.HealthCheckResponse_ServingStatus),
	}
}

// SetProbe installs a dependency check, typically a database ping.
func (h *HealthChecker) SetProbe(probe func(ctx context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probe = probe
}

func (h *HealthChecker) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	h.mu.RLock()
	serving, ok := h.status[req.Service]
	probe := h.probe
	h.mu.RUnlock()

	if !ok {
		return nil, status.Error(codes.NotFound, "unknown service")
	}
	if serving == grpc_health_v1.HealthCheckResponse_SERVING && probe != nil {
		if err := probe(ctx); err != nil {
			serving = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	return &grpc_health_v1.HealthCheckResponse{Status: serving}, nil
}

func (h *HealthChecker) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	return status.Error(codes.Unimplemented, "watching is not supported")
}

// SetServingStatus sets the serving status of a service
func (h *HealthChecker) SetServingStatus(service string, status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status[service] = status
}

// Shutdown marks every registered service NOT_SERVING.
func (h *HealthChecker) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for service := range h.status {
		h.status[service] = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
}
