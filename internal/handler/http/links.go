package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"linkshrink-backend/internal/auth"
	"linkshrink-backend/internal/domain"
	"linkshrink-backend/internal/repository"
	"linkshrink-backend/internal/service"
)

const (
	recentClicksLimit  = 10
	defaultRecentLinks = 10
	maxRecentLinks     = 100
)

// LinksHandler serves link creation, listing, stats and owner mutations.
type LinksHandler struct {
	storage   repository.Storage
	shortener *service.Shortener
	validate  *validator.Validate
	log       *zap.Logger
	baseURL   string
}

func NewLinksHandler(storage repository.Storage, shortener *service.Shortener, log *zap.Logger, baseURL string) *LinksHandler {
	return &LinksHandler{
		storage:   storage,
		shortener: shortener,
		validate:  validator.New(),
		log:       log,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// ShortenRequest is the link creation request body.
type ShortenRequest struct {
	OriginalURL string `json:"original_url" validate:"required,url"`
}

// ClickInfo is one recent click in the stats response.
type ClickInfo struct {
	ClickedAt  string  `json:"clicked_at"`
	IPAddress  *string `json:"ip_address,omitempty"`
	UserAgent  *string `json:"user_agent,omitempty"`
	Referrer   *string `json:"referrer,omitempty"`
	DeviceType *string `json:"device_type,omitempty"`
}

// DailyClicks is one aggregated day in the stats response.
type DailyClicks struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// StatsResponse is the link statistics response body.
type StatsResponse struct {
	LinkSummary
	RecentClicks []ClickInfo   `json:"recent_clicks"`
	DailyClicks  []DailyClicks `json:"daily_clicks"`
}

// ListLinksResponse is the owner-scoped listing response body.
type ListLinksResponse struct {
	Links []LinkSummary `json:"links"`
}

// Shorten creates a new short link.
//
//	@Summary		Create a short link
//	@Description	Shorten an absolute URL
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ShortenRequest	true	"Link creation request"
//	@Success		200		{object}	LinkSummary		"Link created"
//	@Failure		401		{object}	ErrorResponse	"Authentication required"
//	@Failure		422		{object}	ErrorResponse	"Invalid URL"
//	@Router			/shorten [post]
func (h *LinksHandler) Shorten(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(h.log, w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var req ShortenRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.Debug("invalid shorten request", zap.Error(err))
		writeError(h.log, w, "Invalid request format", http.StatusUnprocessableEntity)
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.log.Debug("shorten request failed validation", zap.Error(err))
		writeError(h.log, w, "original_url must be a valid absolute URL", http.StatusUnprocessableEntity)
		return
	}

	link, err := h.shortener.CreateLink(r.Context(), req.OriginalURL, &userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL):
			writeError(h.log, w, "original_url must be a valid absolute URL", http.StatusUnprocessableEntity)
		case errors.Is(err, service.ErrGenerationExhausted):
			h.log.Error("short code generation exhausted", zap.Error(err))
			writeError(h.log, w, "Could not create a unique short code.", http.StatusInternalServerError)
		default:
			h.log.Error("failed to create link", zap.Error(err))
			writeError(h.log, w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.log.Info("created link", zap.String("short_code", link.ShortCode), zap.Int64("user_id", userID))
	writeJSON(h.log, w, newLinkSummary(link, h.baseURL), http.StatusOK)
}

// Stats returns link statistics with the most recent clicks.
//
//	@Summary		Link statistics
//	@Tags			Links
//	@Produce		json
//	@Param			shortCode	path		string	true	"Short code"
//	@Success		200			{object}	StatsResponse
//	@Failure		404			{object}	ErrorResponse	"URL not found"
//	@Router			/stats/{shortCode} [get]
func (h *LinksHandler) Stats(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.URL.Path, "/stats/")
	if code == "" || strings.Contains(code, "/") {
		writeError(h.log, w, "URL not found", http.StatusNotFound)
		return
	}

	stats, err := h.storage.GetLinkStats(r.Context(), code, recentClicksLimit)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			writeError(h.log, w, "URL not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to get link stats", zap.String("short_code", code), zap.Error(err))
		writeError(h.log, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatsResponse{
		LinkSummary:  newLinkSummary(stats.Link, h.baseURL),
		RecentClicks: make([]ClickInfo, 0, len(stats.RecentClicks)),
		DailyClicks:  make([]DailyClicks, 0, len(stats.DailyClicks)),
	}
	for _, click := range stats.RecentClicks {
		response.RecentClicks = append(response.RecentClicks, ClickInfo{
			ClickedAt:  click.ClickedAt.UTC().Format(time.RFC3339),
			IPAddress:  click.IPAddress,
			UserAgent:  click.UserAgent,
			Referrer:   click.Referrer,
			DeviceType: click.DeviceType,
		})
	}
	for _, day := range stats.DailyClicks {
		response.DailyClicks = append(response.DailyClicks, DailyClicks{
			Date:   day.Date.Format("2006-01-02"),
			Clicks: day.Clicks,
		})
	}

	writeJSON(h.log, w, response, http.StatusOK)
}

// ListMyLinks returns all links owned by the authenticated user.
func (h *LinksHandler) ListMyLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(h.log, w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	links, err := h.storage.ListUserLinks(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to list user links", zap.Int64("user_id", userID), zap.Error(err))
		writeError(h.log, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeLinkList(w, links)
}

// ListRecentMyLinks returns up to ?limit= most recently created links.
func (h *LinksHandler) ListRecentMyLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(h.log, w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	limit := defaultRecentLinks
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxRecentLinks {
			writeError(h.log, w, "limit must be an integer between 1 and 100", http.StatusUnprocessableEntity)
			return
		}
		limit = parsed
	}

	links, err := h.storage.ListRecentUserLinks(r.Context(), userID, limit)
	if err != nil {
		h.log.Error("failed to list recent user links", zap.Int64("user_id", userID), zap.Error(err))
		writeError(h.log, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeLinkList(w, links)
}

// Toggle flips is_active for a link owned by the authenticated user. An
// unknown code and a code owned by somebody else answer identically.
//
//	@Summary		Toggle link activation
//	@Tags			Links
//	@Security		BearerAuth
//	@Param			shortCode	path		string	true	"Short code"
//	@Success		200			{object}	LinkSummary
//	@Failure		404			{object}	ErrorResponse	"URL not found"
//	@Router			/links/{shortCode} [patch]
func (h *LinksHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, code, ok := h.linkMutationTarget(w, r)
	if !ok {
		return
	}

	link, err := h.storage.ToggleLinkActive(r.Context(), code, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			writeError(h.log, w, "URL not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to toggle link", zap.String("short_code", code), zap.Error(err))
		writeError(h.log, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("toggled link", zap.String("short_code", code), zap.Bool("is_active", link.IsActive))
	writeJSON(h.log, w, newLinkSummary(link, h.baseURL), http.StatusOK)
}

// Delete removes a link owned by the authenticated user.
func (h *LinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, code, ok := h.linkMutationTarget(w, r)
	if !ok {
		return
	}

	if err := h.storage.DeleteLink(r.Context(), code, userID); err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			writeError(h.log, w, "URL not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to delete link", zap.String("short_code", code), zap.Error(err))
		writeError(h.log, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("deleted link", zap.String("short_code", code), zap.Int64("user_id", userID))
	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

func (h *LinksHandler) linkMutationTarget(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(h.log, w, "Not authenticated", http.StatusUnauthorized)
		return 0, "", false
	}

	code := strings.TrimPrefix(r.URL.Path, "/links/")
	if code == "" || strings.Contains(code, "/") {
		writeError(h.log, w, "URL not found", http.StatusNotFound)
		return 0, "", false
	}

	return userID, code, true
}

func (h *LinksHandler) writeLinkList(w http.ResponseWriter, links []*domain.Link) {
	summaries := make([]LinkSummary, 0, len(links))
	for _, link := range links {
		summaries = append(summaries, newLinkSummary(link, h.baseURL))
	}

	writeJSON(h.log, w, ListLinksResponse{Links: summaries}, http.StatusOK)
}
