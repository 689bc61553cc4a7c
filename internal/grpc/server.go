//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/service.go -package=mocks . AvailabilityService

package server

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tejusbharadwaj/availability/internal/availability"
	middleware "github.com/tejusbharadwaj/availability/internal/grpc/middlewares"
	"github.com/tejusbharadwaj/availability/internal/models"
)

const (
	ServiceName               = "sosgda.v1.DataAvailabilityService"
	GetDataAvailabilityMethod = "/" + ServiceName + "/GetDataAvailability"
)

// ServerConfig holds configuration options for the gRPC server
type ServerConfig struct {
	RateLimit      float64 // Requests per second
	RateLimitBurst int     // Maximum burst size for rate limiting
}

// DefaultServerConfig returns a ServerConfig with sensible defaults
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		RateLimit:      100.0,
		RateLimitBurst: 200,
	}
}

// AvailabilityService computes availability responses
type AvailabilityService interface {
	GetDataAvailability(ctx context.Context, req *models.Request) (*models.Response, error)
}

// DataAvailabilityServer is the server API of the availability service
type DataAvailabilityServer interface {
	GetDataAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// DataAvailabilityService adapts an AvailabilityService to gRPC
type DataAvailabilityService struct {
	service   AvailabilityService
	validator *RequestValidator
}

// NewDataAvailabilityService creates a new service instance
func NewDataAvailabilityService(service AvailabilityService) *DataAvailabilityService {
	return &DataAvailabilityService{
		service:   service,
		validator: NewRequestValidator(),
	}
}

// GetDataAvailability implements the gRPC service method
func (s *DataAvailabilityService) GetDataAvailability(ctx context.Context, msg *structpb.Struct) (*structpb.Struct, error) {
	body, err := DecodeRequestBody(msg)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	// Validate request
	req, err := s.validator.Validate(body)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp, err := s.service.GetDataAvailability(ctx, req)
	if err != nil {
		return nil, StatusFromError(err)
	}

	out, err := EncodeResponse(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding failed: %v", err)
	}
	return out, nil
}

// StatusFromError maps availability errors to gRPC status codes
func StatusFromError(err error) error {
	switch {
	case errors.Is(err, availability.ErrInvalidFilter):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, availability.ErrUnsupportedCapability):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "query failed: %v", err)
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DataAvailabilityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetDataAvailability",
			Handler:    getDataAvailabilityHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sosgda/v1/availability.proto",
}

func getDataAvailabilityHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DataAvailabilityServer).GetDataAvailability(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetDataAvailabilityMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DataAvailabilityServer).GetDataAvailability(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterDataAvailabilityServer registers srv on s
func RegisterDataAvailabilityServer(s grpc.ServiceRegistrar, srv DataAvailabilityServer) {
	s.RegisterService(&serviceDesc, srv)
}

// DataAvailabilityClient calls the availability service
type DataAvailabilityClient struct {
	cc grpc.ClientConnInterface
}

func NewDataAvailabilityClient(cc grpc.ClientConnInterface) *DataAvailabilityClient {
	return &DataAvailabilityClient{cc: cc}
}

func (c *DataAvailabilityClient) GetDataAvailability(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetDataAvailabilityMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ConfigureGRPCServer registers the service without the middleware (for development and debug only)
func ConfigureGRPCServer(
	service AvailabilityService,
	opts ...grpc.ServerOption,
) *grpc.Server {
	srv := grpc.NewServer(opts...)
	RegisterDataAvailabilityServer(srv, NewDataAvailabilityService(service))
	return srv
}

// SetupServer initializes and configures the gRPC server with all middleware.
// Metrics are registered on reg, which also receives the time extent
// resolution counter of the availability package.
func SetupServer(
	service AvailabilityService,
	config ServerConfig,
	logger *logrus.Logger,
	reg prometheus.Registerer,
) (*grpc.Server, *HealthChecker, error) {
	// Register Prometheus metrics
	for _, c := range []prometheus.Collector{
		middleware.Requests,
		middleware.Latency,
		availability.TimeExtentResolutions,
	} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, nil, err
			}
		}
	}

	// Create server with chained interceptors
	server := grpc.NewServer(
		grpc.UnaryInterceptor(
			chainUnaryInterceptors(
				middleware.ContextMiddleware, // Add request ID first
				middleware.NewRateLimitingInterceptor(config.RateLimit, config.RateLimitBurst), // Rate limit early
				middleware.NewLoggingInterceptor(logger),                                       // Log all requests (with request ID)
				middleware.MetricsInterceptor,                                                  // Collect metrics
			),
		),
	)

	RegisterDataAvailabilityServer(server, NewDataAvailabilityService(service))

	health := NewHealthChecker()
	health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(server, health)

	return server, health, nil
}

// chainUnaryInterceptors creates a single interceptor from multiple interceptors
func chainUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			chainedInterceptor := chain
			chain = func(currentCtx context.Context, currentReq interface{}) (interface{}, error) {
				return interceptor(currentCtx, currentReq, info, chainedInterceptor)
			}
		}
		return chain(ctx, req)
	}
}
