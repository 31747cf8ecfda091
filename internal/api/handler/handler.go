// Package handler provides HTTP handlers for all API endpoints.
// Reads go through a request-scoped store session; bracket rounds are
// enriched against the store directly so lookups can run concurrently.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bracketiq/madness-data/internal/api/respond"
	"github.com/bracketiq/madness-data/internal/bracket"
	"github.com/bracketiq/madness-data/internal/store"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store    *store.Store
	schedule *bracket.Schedule
	brackets *bracket.Aggregator
	logger   *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(st *store.Store, schedule *bracket.Schedule, logger *slog.Logger) *Handler {
	return &Handler{
		store:    st,
		schedule: schedule,
		brackets: bracket.NewAggregator(st, schedule.StatsYear, logger),
		logger:   logger,
	}
}

// Root serves a liveness message at /.
// @Summary API root
// @Description Liveness message with a pointer to the docs.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"message": "March Madness data API is running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies the store answers a trivial query.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.store.HealthCheck(r.Context()); err != nil {
		h.logger.Error("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// session opens a request-scoped store session, writing a 503 on failure.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	sess, err := h.store.Session(r.Context())
	if err != nil {
		h.storeError(w, "open session", err)
		return nil, false
	}
	return sess, true
}

// storeError renders a failed store call.
func (h *Handler) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, context.Canceled) {
		h.logger.Debug("Request aborted", "op", op)
		respond.WriteError(w, http.StatusServiceUnavailable, respond.CodeRequestAborted, "Request aborted")
		return
	}
	h.logger.Error("Store call failed", "op", op, "error", err)
	respond.WriteError(w, http.StatusServiceUnavailable, respond.CodeDBUnavailable, "Database unavailable")
}

// yearParam reads the {year} route parameter. The router only matches
// digits, so parsing fails only on overflow.
func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year <= 0 {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "year must be a positive integer")
		return 0, false
	}
	return year, true
}
