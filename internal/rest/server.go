// Package rest exposes the availability service over HTTP next to the
// Prometheus metrics and a health endpoint.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/availability/internal/availability"
	server "github.com/tejusbharadwaj/availability/internal/grpc"
	middleware "github.com/tejusbharadwaj/availability/internal/grpc/middlewares"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the HTTP routes.
type Server struct {
	service   server.AvailabilityService
	validator *server.RequestValidator
	pinger    Pinger
	gatherer  prometheus.Gatherer
	logger    *logrus.Logger
}

func New(service server.AvailabilityService, pinger Pinger, gatherer prometheus.Gatherer, logger *logrus.Logger) *Server {
	return &Server{
		service:   service,
		validator: server.NewRequestValidator(),
		pinger:    pinger,
		gatherer:  gatherer,
		logger:    logger,
	}
}

// Routes returns a chi.Router with all endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.getHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/availability", s.getAvailability)
	})
	return r
}

func (s *Server) getAvailability(w http.ResponseWriter, r *http.Request) {
	body, err := parseQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	req, err := s.validator.Validate(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := middleware.WithRequestID(r.Context(), chimiddleware.GetReqID(r.Context()))
	resp, err := s.service.GetDataAvailability(ctx, req)
	if err != nil {
		s.writeError(w, statusCode(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseQuery reads identifier lists from repeated or comma separated
// parameters.
func parseQuery(r *http.Request) (*server.RequestBody, error) {
	q := r.URL.Query()
	body := &server.RequestBody{
		Procedure:         list(q["procedure"]),
		ObservedProperty:  list(q["observedProperty"]),
		FeatureOfInterest: list(q["featureOfInterest"]),
		Offering:          list(q["offering"]),
		Namespace:         q.Get("namespace"),
		ResponseFormat:    q.Get("responseFormat"),
	}
	body.Extensions.PhenomenonTime = q.Get("phenomenonTime")

	var err error
	if body.Extensions.ShowCount, err = flag(q.Get("showCount")); err != nil {
		return nil, fmt.Errorf("invalid showCount: %w", err)
	}
	if body.Extensions.IncludeResultTimes, err = flag(q.Get("includeResultTimes")); err != nil {
		return nil, fmt.Errorf("invalid includeResultTimes: %w", err)
	}
	return body, nil
}

func list(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

func flag(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, availability.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, availability.ErrUnsupportedCapability):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("Failed to write response")
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"request_id": chimiddleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
		}).Info("HTTP request handled")
	})
}
