package http

import (
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"linkshrink-backend/internal/queue"
	"linkshrink-backend/internal/repository"
)

var shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)

// RedirectHandler resolves short codes and fires click events. The
// redirect response never waits on the click being recorded.
type RedirectHandler struct {
	storage repository.Storage
	queue   queue.Queue
	log     *zap.Logger
}

func NewRedirectHandler(storage repository.Storage, q queue.Queue, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		storage: storage,
		queue:   q,
		log:     log,
	}
}

// HandleRedirect serves GET /{shortCode}.
//
//	@Summary		Redirect to the original URL
//	@Tags			Redirect
//	@Param			shortCode	path	string	true	"Short code"
//	@Success		307			"Temporary redirect"
//	@Failure		404			{object}	ErrorResponse	"URL not found"
//	@Failure		410			{object}	ErrorResponse	"Link deactivated"
//	@Router			/{shortCode} [get]
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.URL.Path, "/")
	if !shortCodePattern.MatchString(code) {
		writeError(h.log, w, "URL not found", http.StatusNotFound)
		return
	}

	link, err := h.storage.GetLinkByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			h.log.Debug("short code not found", zap.String("short_code", code))
			writeError(h.log, w, "URL not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to resolve short code", zap.String("short_code", code), zap.Error(err))
		writeError(h.log, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !link.IsActive {
		// is_active can be flipped back on; a cached 410 would wrongly
		// outlive the reactivation.
		setNoCacheHeaders(w)
		writeError(h.log, w, "This link has been deactivated", http.StatusGone)
		return
	}

	event := queue.ClickEvent{
		ShortCode: code,
		ClickedAt: time.Now(),
		IPAddress: extractIPAddress(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
	if err := h.queue.Publish(r.Context(), event); err != nil {
		// Analytics loss never fails the redirect.
		h.log.Error("failed to publish click event", zap.String("short_code", code), zap.Error(err))
	}

	h.log.Debug("redirecting",
		zap.String("short_code", code),
		zap.String("original_url", link.OriginalURL),
	)
	http.Redirect(w, r, link.OriginalURL, http.StatusTemporaryRedirect)
}

func setNoCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

// extractIPAddress picks the client IP, honoring proxy headers in priority
// order.
func extractIPAddress(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		parts := strings.Split(ip, ",")
		return strings.TrimSpace(parts[0])
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
