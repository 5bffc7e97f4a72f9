// Package server exposes the sync client over a small local HTTP API together
// with health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oggyno/kasir-restoran/internal/core/domain"
	"github.com/oggyno/kasir-restoran/internal/infra/rpc"
	"github.com/oggyno/kasir-restoran/internal/infra/rpc/provider"
)

const maxBodyBytes = 64 << 10

// SyncClient is the part of rpc.Client the API needs.
type SyncClient interface {
	Save(ctx context.Context, rec domain.Record) (rpc.Acknowledgement, error)
	FetchDaily(ctx context.Context, date string) (domain.DailySummary, error)
}

// EndpointHealth reports the state of the spreadsheet endpoint.
type EndpointHealth interface {
	GetName() string
	GetHealth() provider.HealthStatus
	IsAvailable() bool
}

// Options configures the server.
type Options struct {
	Port int
	Menu domain.Menu
	// Now stamps new records; it should already be in the shop's time zone.
	Now func() time.Time
}

// Server provides the HTTP API.
type Server struct {
	client   SyncClient
	endpoint EndpointHealth
	menu     domain.Menu
	now      func() time.Time

	handler http.Handler
	server  *http.Server
}

// NewServer creates a new server.
func NewServer(client SyncClient, endpoint EndpointHealth, opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	mux := http.NewServeMux()
	s := &Server{
		client:   client,
		endpoint: endpoint,
		menu:     opts.Menu,
		now:      now,
		handler:  mux,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/detailed", s.handleDetailed)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/income", s.handleIncome)
	mux.HandleFunc("POST /api/expense", s.handleExpense)
	mux.HandleFunc("GET /api/recap", s.handleRecap)
	mux.HandleFunc("GET /api/menu", s.handleMenu)

	return s
}

// Handler returns the routing handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := provider.StatusHealthy
	if stats := s.endpoint.GetHealth().MonitorStats; stats != nil {
		status = stats.Status
	}

	code := http.StatusOK
	if !s.endpoint.IsAvailable() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status.String()})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoint": s.endpoint.GetName(),
		"health":   s.endpoint.GetHealth(),
	})
}

type incomeRequest struct {
	Menu     string `json:"menu"`
	Name     string `json:"nama"`
	Price    *int64 `json:"harga"`
	Quantity int64  `json:"qty"`
	Method   string `json:"metode"`
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var item domain.MenuItem
	switch {
	case req.Menu != "":
		resolved, err := s.menu.Resolve(req.Menu)
		if err != nil {
			writeError(w, err)
			return
		}
		item = resolved
	case req.Price != nil:
		item = domain.MenuItem{Name: req.Name, Price: *req.Price}
	default:
		resolved, err := s.menu.Resolve(req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		item = resolved
	}

	rec := domain.NewIncome(s.now(), item.Name, item.Price, req.Quantity, req.Method)
	s.save(w, r, rec)
}

type expenseRequest struct {
	Amount int64  `json:"harga"`
	Note   string `json:"keterangan"`
}

func (s *Server) handleExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.save(w, r, domain.NewExpense(s.now(), req.Amount, req.Note))
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, rec domain.Record) {
	ack, err := s.client.Save(r.Context(), rec)
	if ack.RequestID != "" {
		w.Header().Set(rpc.RequestIDHeader, ack.RequestID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"ack":    ack,
		"record": rec,
	})
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.now().Format(domain.DateLayout)
	}

	summary, err := s.client.FetchDaily(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	menu := s.menu
	if menu == nil {
		menu = domain.Menu{}
	}
	writeJSON(w, http.StatusOK, menu)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// writeError maps the failure taxonomy to a status code. Upstream client
// errors are reported as a bad gateway since the request we sent was ours.
func writeError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	var timeoutErr *provider.TimeoutError
	var statusErr *provider.HTTPStatusError

	body := map[string]any{"error": err.Error()}
	code := http.StatusBadGateway

	switch {
	case errors.As(err, &vErr):
		code = http.StatusBadRequest
		body["field"] = vErr.Field
	case errors.As(err, &timeoutErr):
		code = http.StatusGatewayTimeout
	case errors.As(err, &statusErr):
		body["upstream_status"] = statusErr.StatusCode
	case errors.Is(err, context.Canceled):
		// client went away; nobody reads this
		code = http.StatusServiceUnavailable
	}

	if code >= 500 {
		slog.Warn("Request failed", "status", code, "error", err)
	}
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
