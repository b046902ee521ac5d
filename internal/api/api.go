// Package api provides the HTTP surface of AltairIVR.
//
// It exposes the Twilio voice webhook endpoints that drive the call flow,
// plus JSON endpoints for daily call statistics and stored appointments.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/AltairPartners/AltairIVR/internal/flow"
	"github.com/AltairPartners/AltairIVR/internal/hours"
	"github.com/AltairPartners/AltairIVR/internal/store"
)

// DefaultAddr is the default listen address.
const DefaultAddr = ":1337"

// ShutdownTimeout bounds graceful shutdown on exit.
const ShutdownTimeout = 10 * time.Second

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the flow controller, store, and business-hours oracle to HTTP.
type Server struct {
	controller *flow.Controller
	store      store.Store
	hours      *hours.Oracle
	httpServer *http.Server
}

// NewServer creates the API server and registers all routes.
func NewServer(controller *flow.Controller, st store.Store, oracle *hours.Oracle, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{
		controller: controller,
		store:      st,
		hours:      oracle,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.healthHandler)
	mux.HandleFunc("/twilio/voice", s.voiceEntryHandler)
	mux.HandleFunc(flow.StepPath, s.voiceStepHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	mux.HandleFunc("/stats/dates", s.statsDatesHandler)
	mux.HandleFunc("/appointments", s.appointmentsHandler)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the route multiplexer, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	slog.Info("Server.Run: listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Server.Shutdown: stopping")
	return s.httpServer.Shutdown(ctx)
}
