package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/watchonly/internal/core/domain"
	"github.com/vietddude/watchonly/internal/keyring/address"
)

// Source is the read-only view of the keyring served over HTTP.
type Source interface {
	Checker
	Accounts(ctx context.Context) ([]domain.Account, error)
}

// Server provides HTTP endpoints for health, metrics and account listing.
type Server struct {
	source  Source
	monitor *Monitor
	server  *http.Server
	log     *slog.Logger
}

// NewServer creates a new health server.
func NewServer(source Source, port int, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	mux := http.NewServeMux()
	s := &Server{
		source:  source,
		monitor: NewMonitor(source, DefaultCacheTTL, log),
		log:     log,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/accounts", s.handleAccounts)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Monitor returns the health monitor backing /health.
func (s *Server) Monitor() *Monitor {
	return s.monitor
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server. It returns nil after a graceful Stop.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := s.monitor.CheckHealth(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

type accountView struct {
	domain.Account
	Checksum string `json:"checksum"`
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accounts, err := s.source.Accounts(r.Context())
	if err != nil {
		s.log.Error("Failed to list accounts", "error", err)
		http.Error(w, "failed to list accounts", http.StatusInternalServerError)
		return
	}

	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountView{Account: a, Checksum: address.Checksum(a.Address)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": views})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
