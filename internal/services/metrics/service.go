package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	dLog "zmq_listener/internal/domain/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Service serves the collected metrics over HTTP.
type Service struct {
	srv *http.Server
	log dLog.Logger
}

// NewService exposes g on addr at /metrics.
func NewService(addr string, g prometheus.Gatherer, log dLog.Logger) *Service {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return &Service{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start runs the HTTP server; it blocks until ShutDown.
func (s *Service) Start() {
	s.log.Info("metrics service is running", dLog.Field{Key: "endpoint", Value: s.srv.Addr})
	err := s.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Warn("metrics service couldn't start on configured address", dLog.Err(err))
	}
}

// ShutDown stops the service.
func (s *Service) ShutDown() {
	s.log.Info("shutting down metrics service", dLog.Field{Key: "endpoint", Value: s.srv.Addr})
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Error("can't shut metrics service down", dLog.Err(err))
	}
}
