// Package server exposes a contact store over HTTP with the JSON shape the
// http store backend speaks.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chazuruo/sweep/internal/contacts"
	sweeperrors "github.com/chazuruo/sweep/internal/errors"
	"github.com/chazuruo/sweep/internal/store"
)

// Page bounds applied when a list request omits them.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Server serves one backing store.
type Server struct {
	store    store.Store
	logger   *zap.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer
}

// New creates a Server. Metrics are registered on reg and exposed from it
// on /metrics.
func New(st store.Store, logger *zap.Logger, reg *prometheus.Registry) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:    st,
		logger:   logger,
		metrics:  InitMetrics(reg),
		gatherer: reg,
	}
}

// Router builds the chi router with the middleware chain and every route.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.recovery)
	r.Use(s.requestLogging)
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Get("/api/contacts", s.handleList)
	r.Patch("/api/contacts/{id}", s.handleUpdate)
	r.Delete("/api/contacts/{id}", s.handleDelete)
	return r
}

// Listen serves on addr until ctx is canceled, then drains in-flight
// requests.
func (s *Server) Listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("server started", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown initiated")
	case err := <-errCh:
		if err != nil {
			s.logger.Error("server error", zap.Error(err))
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}
	return nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	start, err := intParam(r, "start", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := intParam(r, "limit", DefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	began := time.Now()
	page, err := s.store.ListContacts(r.Context(), start, limit)
	if err != nil {
		outcome := OutcomeError
		if sweeperrors.IsStore(err) {
			outcome = OutcomeRefused
		}
		s.metrics.RecordStoreOperation("list", outcome, time.Since(began))
		if sweeperrors.IsInvalid(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("list contacts failed", zap.Int("start", start), zap.Int("limit", limit), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.RecordStoreOperation("list", OutcomeSuccess, time.Since(began))

	cs := page.Contacts
	if cs == nil {
		cs = []contacts.Contact{}
	}
	writeJSON(w, http.StatusOK, store.ListResponse{
		Contacts:   cs,
		TotalCount: page.TotalCount,
		Start:      start,
		Limit:      limit,
		HasMore:    page.HasMore,
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	var req store.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	update := req.Update()
	if update.IsEmpty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	began := time.Now()
	res, err := s.store.UpdateContact(r.Context(), id, update)
	s.writeResult(w, "update", id, res, err, time.Since(began))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	began := time.Now()
	res, err := s.store.DeleteContact(r.Context(), id)
	s.writeResult(w, "delete", id, res, err, time.Since(began))
}

// writeResult answers a mutation. Refusals and transport failures are both
// 500s; only the body tells them apart.
func (s *Server) writeResult(w http.ResponseWriter, op, id string, res contacts.Result, err error, took time.Duration) {
	fields := []zap.Field{zap.String("op", op), zap.String("contact_id", id)}
	switch {
	case err != nil:
		s.metrics.RecordStoreOperation(op, OutcomeError, took)
		s.logger.Error("store operation failed", append(fields, zap.Error(err))...)
		writeError(w, http.StatusInternalServerError, err.Error())
	case !res.Success:
		s.metrics.RecordStoreOperation(op, OutcomeRefused, took)
		s.logger.Warn("store operation refused", append(fields, zap.String("message", res.Message))...)
		writeJSON(w, http.StatusInternalServerError, res)
	default:
		s.metrics.RecordStoreOperation(op, OutcomeSuccess, took)
		s.logger.Info("store operation succeeded", fields...)
		writeJSON(w, http.StatusOK, res)
	}
}

// contactID reads the id path segment. chi matches on the escaped path, so
// ids containing slashes arrive percent-encoded.
func contactID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil || id == "" {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return "", false
	}
	return id, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, sweeperrors.Invalidf("%s must be an integer; got %q", name, raw)
	}
	return n, nil
}
