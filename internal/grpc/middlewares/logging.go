package middleware

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func NewLoggingInterceptor(logger *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		// Execute the handler
		resp, err := handler(ctx, req)

		// Log the request with request ID
		entry := logger.WithFields(logrus.Fields{
			"request_id": RequestID(ctx),
			"method":     info.FullMethod,
			"duration":   time.Since(start),
			"code":       status.Code(err).String(),
		})
		if err != nil {
			entry.WithError(err).Warn("Request failed")
		} else {
			entry.Info("Request handled")
		}

		return resp, err
	}
}
