package http

import (
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"linkshrink-backend/internal/auth"
	"linkshrink-backend/internal/queue"
	"linkshrink-backend/internal/repository"
	"linkshrink-backend/internal/service"
)

// Server bundles the HTTP handlers and middleware.
type Server struct {
	authHandlers    *auth.Handlers
	linksHandler    *LinksHandler
	redirectHandler *RedirectHandler
	healthHandler   *HealthHandler
	authMiddleware  *auth.Middleware
	log             *zap.Logger
}

func NewServer(
	storage repository.Storage,
	shortener *service.Shortener,
	clickQueue queue.Queue,
	jwtService *auth.JWTService,
	passwordService *auth.PasswordService,
	log *zap.Logger,
	baseURL string,
) *Server {
	return &Server{
		authHandlers:    auth.NewHandlers(storage, jwtService, passwordService, log),
		linksHandler:    NewLinksHandler(storage, shortener, log, baseURL),
		redirectHandler: NewRedirectHandler(storage, clickQueue, log),
		healthHandler:   NewHealthHandler(storage, log),
		authMiddleware:  auth.NewMiddleware(jwtService, log),
		log:             log,
	}
}

// SetupRoutes builds the route table. The redirect catch-all must stay
// last so short codes never shadow API paths.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.public(http.MethodGet, s.healthHandler.Health))

	mux.Handle("/docs/", httpSwagger.WrapHandler)

	mux.HandleFunc("/auth/register", s.public(http.MethodPost, s.authHandlers.Register))
	mux.HandleFunc("/auth/token", s.public(http.MethodPost, s.authHandlers.Token))

	mux.HandleFunc("/shorten", s.protected(http.MethodPost, s.linksHandler.Shorten))
	mux.HandleFunc("/stats/", s.public(http.MethodGet, s.linksHandler.Stats))
	mux.HandleFunc("/me/links", s.protected(http.MethodGet, s.linksHandler.ListMyLinks))
	mux.HandleFunc("/me/links/recent", s.protected(http.MethodGet, s.linksHandler.ListRecentMyLinks))

	mux.HandleFunc("/links/", s.withCommon(s.authMiddleware.RequireAuth(s.handleLinkMutation)))

	mux.HandleFunc("/", s.withCommon(s.handleRoot))

	return mux
}

// handleLinkMutation dispatches /links/{shortCode} by HTTP method.
func (s *Server) handleLinkMutation(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPatch:
		s.linksHandler.Toggle(w, r)
	case http.MethodDelete:
		s.linksHandler.Delete(w, r)
	default:
		writeError(s.log, w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleRoot serves redirects for anything that is not a reserved path.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" || isReservedPath(r.URL.Path) {
		writeError(s.log, w, "URL not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(s.log, w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.redirectHandler.HandleRedirect(w, r)
}

func (s *Server) public(method string, handler http.HandlerFunc) http.HandlerFunc {
	return s.withCommon(s.requireMethod(method, handler))
}

func (s *Server) protected(method string, handler http.HandlerFunc) http.HandlerFunc {
	return s.withCommon(s.requireMethod(method, s.authMiddleware.RequireAuth(handler)))
}

func (s *Server) requireMethod(method string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeError(s.log, w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	}
}

func (s *Server) withCommon(handler http.HandlerFunc) http.HandlerFunc {
	return withRequestID(withCORS(handler))
}

func isReservedPath(path string) bool {
	reservedPrefixes := []string{
		"/auth/",
		"/docs/",
		"/health",
		"/links/",
		"/me/",
		"/shorten",
		"/stats/",
		"/favicon.ico",
	}

	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
