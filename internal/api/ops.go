// Package api exposes the operator surface: a small HTTP listener with
// store health and notification pipeline counters. The catalog itself has
// no HTTP routes here; this is observability only.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/odalvarez/bookshelf-api/internal/kv"
	"github.com/odalvarez/bookshelf-api/internal/notify"
)

// healthTimeout bounds the store ping performed by /healthz.
const healthTimeout = 2 * time.Second

// QueueStats reports the live state of the notification pipeline.
type QueueStats struct {
	QueueLen int `json:"queue_len"`
	notify.MetricsSnapshot
}

// OpsHandler serves the operator endpoints.
type OpsHandler struct {
	store   kv.Pinger
	queue   *notify.JobQueue
	metrics *notify.Metrics
	logger  *slog.Logger
}

// NewOpsHandler creates the handler over the live pipeline components.
func NewOpsHandler(store kv.Pinger, queue *notify.JobQueue, metrics *notify.Metrics, logger *slog.Logger) *OpsHandler {
	return &OpsHandler{
		store:   store,
		queue:   queue,
		metrics: metrics,
		logger:  logger.With("component", "ops_handler"),
	}
}

// Router builds the chi router for the ops listener.
func (h *OpsHandler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", h.handleHealth)
	r.Get("/queuez", h.handleQueueStats)
	return r
}

// handleHealth reports store connectivity.
func (h *OpsHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("store health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleQueueStats reports queue depth and pipeline counters.
func (h *OpsHandler) handleQueueStats(w http.ResponseWriter, _ *http.Request) {
	stats := QueueStats{
		QueueLen:        h.queue.Len(),
		MetricsSnapshot: h.metrics.Snapshot(),
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
