package middleware

import (
	"context"
	"path"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	Requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_grpc_requests_total",
			Help: "Number of gRPC requests, by method and status code.",
		},
		[]string{"method", "code"},
	)
	Latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "availability_grpc_request_duration_seconds",
			Help:    "gRPC request latency, by method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	MetricsInterceptor = NewMetricsInterceptor(Requests, Latency)
)

func NewMetricsInterceptor(
	requests *prometheus.CounterVec,
	latency *prometheus.HistogramVec,
) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		// Record metrics
		duration := time.Since(start).Seconds()
		method := path.Base(info.FullMethod)

		requests.WithLabelValues(method, status.Code(err).String()).Inc()
		latency.WithLabelValues(method).Observe(duration)

		return resp, err
	}
}
