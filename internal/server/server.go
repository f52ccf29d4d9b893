// Package server exposes analysis reports over a JSON HTTP API for dashboards.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/MLEngineer1/smc-cash-cow/internal/config"
	"github.com/MLEngineer1/smc-cash-cow/internal/logger"
	"github.com/MLEngineer1/smc-cash-cow/internal/metrics"
	"github.com/MLEngineer1/smc-cash-cow/internal/report"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/internal/version"
	"github.com/MLEngineer1/smc-cash-cow/pkg/marketdata"
)

// Analyzer runs one fetch-and-analyze cycle.
type Analyzer interface {
	Analyze(ctx context.Context, market types.Market, timeframe types.Timeframe) *report.Report
}

// Server serves the analysis API.
type Server struct {
	mu sync.Mutex

	analyzer Analyzer
	metrics  *metrics.Metrics
	logger   *logger.Logger
	vendor   string
	config   config.ServerConfig

	router     *mux.Router
	httpServer *http.Server
	listener   net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics exposes m on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		s.logger = l.Named("server")
	}
}

// NewServer creates a server. vendor names the configured vendor adapter and is
// reported by the markets endpoint.
func NewServer(cfg config.ServerConfig, analyzer Analyzer, vendor string, opts ...Option) *Server {
	s := &Server{
		mu:         sync.Mutex{},
		analyzer:   analyzer,
		metrics:    nil,
		logger:     logger.NewNopLogger(),
		vendor:     vendor,
		config:     cfg,
		router:     nil,
		httpServer: nil,
		listener:   nil,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router = s.routes()

	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/markets", s.handleMarkets).Methods("GET")
	api.HandleFunc("/markets/{market}", s.handleMarket).Methods("GET")
	api.HandleFunc("/analysis/{market}/{timeframe}", s.handleAnalysis).Methods("GET")
	api.HandleFunc("/analysis/{market}/{timeframe}/signals", s.handleSignals).Methods("GET")

	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	return router
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on address and serves in the background. An empty address
// uses the configured one; ":0" picks a free port.
func (s *Server) Start(address string) error {
	if address == "" {
		address = s.config.Addr
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	httpServer := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = httpServer
	s.mu.Unlock()

	s.logger.Info("HTTP server listening", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.httpServer = nil
	s.listener = nil
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}

	return httpServer.Shutdown(ctx)
}

// Address returns the bound address, or "" when not started.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

type errorResponse struct {
	Error string `json:"error"`
}

type signalsResponse struct {
	Market     types.Market       `json:"market"`
	Timeframe  types.Timeframe    `json:"timeframe"`
	Message    string             `json:"message,omitempty"`
	Signals    []report.Row       `json:"signals"`
	LastSignal *report.LastSignal `json:"lastSignal"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.GetVersion()})
}

func (s *Server) handleMarkets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, marketdata.GetSupportedMarkets(s.vendor))
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	info, err := marketdata.GetMarketInfo(mux.Vars(r)["market"], s.vendor)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	market, timeframe, ok := parseSelection(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, s.analyzer.Analyze(r.Context(), market, timeframe))
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	market, timeframe, ok := parseSelection(w, r)
	if !ok {
		return
	}

	out := s.analyzer.Analyze(r.Context(), market, timeframe)

	response := signalsResponse{
		Market:     market,
		Timeframe:  timeframe,
		Message:    out.Message(),
		Signals:    out.Signals(),
		LastSignal: nil,
	}

	if response.Signals == nil {
		response.Signals = []report.Row{}
	}

	if last, err := out.LastSignal().Take(); err == nil {
		response.LastSignal = &last
	}

	writeJSON(w, http.StatusOK, response)
}

func parseSelection(w http.ResponseWriter, r *http.Request) (types.Market, types.Timeframe, bool) {
	vars := mux.Vars(r)

	market, err := types.ParseMarket(vars["market"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return "", "", false
	}

	timeframe, err := types.ParseTimeframe(vars["timeframe"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return "", "", false
	}

	return market, timeframe, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		s.logger.Debug("Handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("elapsed", time.Since(started)))
	})
}
