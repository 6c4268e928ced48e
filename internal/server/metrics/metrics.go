// Package metrics exposes Prometheus counters for authentication outcomes
// and the /metrics listener.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics is safe for use as a nil pointer, in which case nothing is recorded.
type Metrics struct {
	authEvents *prometheus.CounterVec
	mailEvents *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authkeeper",
			Name:      "auth_operations_total",
			Help:      "Authentication operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		mailEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authkeeper",
			Name:      "verification_emails_total",
			Help:      "Verification email delivery attempts by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.authEvents, m.mailEvents} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// AuthEvent counts one operation outcome.
func (m *Metrics) AuthEvent(operation string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.authEvents.WithLabelValues(operation, outcome).Inc()
}

// MailResult counts one delivery attempt.
func (m *Metrics) MailResult(ok bool) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	m.mailEvents.WithLabelValues(outcome).Inc()
}

// Server serves /metrics until its context is canceled.
type Server struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewServer(address string, g prometheus.Gatherer, l logging.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return &Server{address: address, handler: mux, logger: l.With("module", "metrics_server")}
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.address, Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping metrics server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting metrics server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
