package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"linkshrink-backend/internal/repository"
)

// HealthHandler serves the liveness and storage connectivity probe.
type HealthHandler struct {
	storage repository.Storage
	log     *zap.Logger
}

func NewHealthHandler(storage repository.Storage, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		log:     log,
	}
}

// HealthResponse is the health probe response body.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health serves GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.log.Error("health check failed", zap.Error(err))
		writeJSON(h.log, w, HealthResponse{Status: "unhealthy", Database: "disconnected"}, http.StatusServiceUnavailable)
		return
	}

	writeJSON(h.log, w, HealthResponse{Status: "healthy", Database: "connected"}, http.StatusOK)
}
