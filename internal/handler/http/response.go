package http

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"linkshrink-backend/internal/domain"
)

// LinkSummary is the public representation of a link.
type LinkSummary struct {
	ShortCode     string  `json:"short_code"`
	ShortURL      string  `json:"short_url"`
	OriginalURL   string  `json:"original_url"`
	OwnerID       *int64  `json:"owner_id,omitempty"`
	IsActive      bool    `json:"is_active"`
	TotalClicks   int64   `json:"total_clicks"`
	CreatedAt     string  `json:"created_at"`
	LastClickedAt *string `json:"last_clicked_at,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func newLinkSummary(link *domain.Link, baseURL string) LinkSummary {
	summary := LinkSummary{
		ShortCode:   link.ShortCode,
		ShortURL:    baseURL + "/" + link.ShortCode,
		OriginalURL: link.OriginalURL,
		OwnerID:     link.UserID,
		IsActive:    link.IsActive,
		TotalClicks: link.TotalClicks,
		CreatedAt:   link.CreatedAt.UTC().Format(time.RFC3339),
	}
	if link.LastClickedAt != nil {
		formatted := link.LastClickedAt.UTC().Format(time.RFC3339)
		summary.LastClickedAt = &formatted
	}

	return summary
}

func writeJSON(log *zap.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to encode response", zap.Error(err))
	}
}

func writeError(log *zap.Logger, w http.ResponseWriter, message string, statusCode int) {
	writeJSON(log, w, ErrorResponse{Detail: message}, statusCode)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer func() {
		_ = r.Body.Close()
	}()
	return json.NewDecoder(r.Body).Decode(dst)
}
