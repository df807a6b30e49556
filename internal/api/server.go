package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/gray-logic-mysensors/internal/gateway"
	"github.com/nerrad567/gray-logic-mysensors/internal/history"
	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-mysensors/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-mysensors/internal/registry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// ChannelSource provides the published registry copy. *gateway.View
// satisfies it.
type ChannelSource interface {
	Channels() []registry.Channel
	Channel(node, child int) (registry.Channel, bool)
	UpdatedAt() time.Time
}

// HistoryQuerier reads reading history. *history.Repository satisfies it.
type HistoryQuerier interface {
	Query(ctx context.Context, node, child, limit int) ([]history.Entry, error)
}

// MetricsSource provides the gateway counters. *gateway.Metrics satisfies it.
type MetricsSource interface {
	Snapshot() gateway.MetricsSnapshot
}

// HealthChecker is implemented by every connection reported on /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Channels ChannelSource

	// History is optional; without it the history route answers 503.
	History HistoryQuerier

	// Metrics is optional.
	Metrics MetricsSource

	// Gatherer backs /metrics. Optional.
	Gatherer prometheus.Gatherer

	// Health maps component names ("domoticz", "mqtt", "database") to
	// their checkers. Optional.
	Health map[string]HealthChecker

	Version string
}

// Server is the HTTP status server.
//
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	channels  ChannelSource
	history   HistoryQuerier
	metrics   MetricsSource
	gatherer  prometheus.Gatherer
	health    map[string]HealthChecker
	version   string
	startTime time.Time
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (logger, channel source)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Channels == nil {
		return nil, fmt.Errorf("channel source is required")
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		channels:  deps.Channels,
		history:   deps.History,
		metrics:   deps.Metrics,
		gatherer:  deps.Gatherer,
		health:    deps.Health,
		version:   deps.Version,
		startTime: time.Now(),
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
//
// Returns:
//   - error: Always nil; listener failures are logged
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
