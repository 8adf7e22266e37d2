// Package server exposes the HTTP control surface for alert management and
// operator diagnostics. It calls into the alert store only; the evaluation
// loop is owned by the process entry point and consulted here just for
// status reporting.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Priyanshu525/trading-alert/internal/config"
	"github.com/Priyanshu525/trading-alert/internal/engine"
	apperrors "github.com/Priyanshu525/trading-alert/internal/errors"
	"github.com/Priyanshu525/trading-alert/internal/models"
	"github.com/Priyanshu525/trading-alert/internal/notify"
	"github.com/Priyanshu525/trading-alert/internal/oracle"
	"github.com/Priyanshu525/trading-alert/internal/store"
)

// Server is the HTTP control surface.
type Server struct {
	cfg      *config.Config
	store    store.AlertStore
	oracle   oracle.Oracle
	notifier notify.Notifier
	engine   *engine.Engine
	logger   zerolog.Logger
	http     *http.Server
}

// New creates a new control-surface server.
func New(cfg *config.Config, s store.AlertStore, o oracle.Oracle, n notify.Notifier, eng *engine.Engine, logger zerolog.Logger) *Server {
	srv := &Server{
		cfg:      cfg,
		store:    s,
		oracle:   o,
		notifier: n,
		engine:   eng,
		logger:   logger.With().Str("component", "server").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/alerts", srv.handleAlerts)
	mux.HandleFunc("/api/alerts/", srv.handleAlertByID)
	mux.HandleFunc("/api/alerts/active", srv.handleListActive)
	mux.HandleFunc("/api/alerts/history", srv.handleListHistory)
	mux.HandleFunc("/api/symbols", srv.handleSymbols)
	mux.HandleFunc("/api/debug/trigger/", srv.handleForceTrigger)
	mux.HandleFunc("/api/debug/quotes", srv.handleDebugQuotes)
	mux.HandleFunc("/api/debug/notify", srv.handleDebugNotify)
	mux.HandleFunc("/api/debug/account", srv.handleDebugAccount)
	mux.HandleFunc("/api/debug/status", srv.handleStatus)

	srv.http = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return srv
}

// ListenAndServe starts accepting requests. It blocks until the listener
// closes.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("Control surface listening")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting new work and drains in-flight requests within the
// given grace period.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler returns the underlying HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Encoding response failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

type createAlertRequest struct {
	Symbol    string `json:"symbol"`
	Direction string `json:"direction"`
	Target    string `json:"target"`
	Note      string `json:"note"`
}

// handleAlerts handles POST /api/alerts.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := strconv.ParseFloat(strings.TrimSpace(req.Target), 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "target is not a number")
		return
	}

	id, err := s.store.Create(r.Context(), req.Symbol, models.Direction(req.Direction), target, req.Note)
	if err != nil {
		if apperrors.IsValidation(err) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error().Err(err).Msg("Creating alert failed")
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// handleAlertByID handles POST /api/alerts/{id}/cancel.
func (s *Server) handleAlertByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/alerts/")
	parts := strings.Split(rest, "/")

	if len(parts) == 2 && parts[1] == "cancel" && r.Method == http.MethodPost {
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid alert id")
			return
		}
		cancelled, err := s.store.Cancel(r.Context(), id)
		if err != nil {
			s.logger.Error().Err(err).Int64("alert_id", id).Msg("Cancelling alert failed")
			s.writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
		return
	}

	s.writeError(w, http.StatusNotFound, "not found")
}

// handleListActive handles GET /api/alerts/active.
func (s *Server) handleListActive(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.store.ListActive(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Listing active alerts failed")
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	s.writeJSON(w, http.StatusOK, alerts)
}

// handleListHistory handles GET /api/alerts/history?limit=N.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	alerts, err := s.store.ListHistory(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Listing alert history failed")
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	s.writeJSON(w, http.StatusOK, alerts)
}

// handleSymbols handles GET /api/symbols.
func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Symbols)
}

// handleForceTrigger handles POST /api/debug/trigger/{id}. It is a test-only
// escape hatch that forces the guarded transition at the alert's target
// price.
func (s *Server) handleForceTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/debug/trigger/"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	alert, err := s.store.Get(r.Context(), id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrAlertNotFound) {
			s.writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	triggered, err := s.store.MarkTriggered(r.Context(), id, alert.Target, time.Now().UTC())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"triggered": triggered})
}

// handleDebugQuotes handles GET /api/debug/quotes: the current oracle
// snapshot for every instrument referenced by an active alert.
func (s *Server) handleDebugQuotes(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.store.ListActive(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	seen := make(map[string]struct{})
	var instruments []string
	for _, a := range alerts {
		if _, ok := seen[a.Instrument]; !ok {
			seen[a.Instrument] = struct{}{}
			instruments = append(instruments, a.Instrument)
		}
	}

	s.writeJSON(w, http.StatusOK, s.oracle.Quotes(r.Context(), instruments))
}

// handleDebugNotify handles POST /api/debug/notify.
func (s *Server) handleDebugNotify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sent := s.notifier.Notify(r.Context(), "Test message from alertd")
	s.writeJSON(w, http.StatusOK, map[string]bool{"sent": sent})
}

// handleDebugAccount handles GET /api/debug/account, surfacing the raw
// upstream response for operator debugging.
func (s *Server) handleDebugAccount(w http.ResponseWriter, r *http.Request) {
	dbg, ok := s.oracle.(oracle.AccountDebugger)
	if !ok {
		s.writeError(w, http.StatusNotImplemented, "oracle has no account debugging")
		return
	}
	s.writeJSON(w, http.StatusOK, dbg.DebugAccount(r.Context()))
}

// handleStatus handles GET /api/debug/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"engine_started":        s.engine.Started(),
		"oanda_environment":     s.cfg.Oanda.Environment,
		"poll_interval_seconds": s.cfg.Engine.PollIntervalSeconds,
	})
}
