package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ContextKey is the type for request context keys set by the middleware.
type ContextKey string

const (
	UserIDKey    ContextKey = "user_id"
	UserEmailKey ContextKey = "user_email"
)

// Middleware authenticates HTTP requests via bearer tokens.
type Middleware struct {
	jwtService *JWTService
	log        *zap.Logger
}

func NewMiddleware(jwtService *JWTService, log *zap.Logger) *Middleware {
	return &Middleware{
		jwtService: jwtService,
		log:        log,
	}
}

// RequireAuth rejects requests without a valid bearer token. Every failure
// mode gets the same 401 body so nothing about the token is leaked.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := ExtractTokenFromBearer(r.Header.Get("Authorization"))
		if tokenString == "" {
			m.log.Debug("missing or malformed authorization header")
			unauthorized(w)
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.log.Debug("token validation failed", zap.Error(err))
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Subject)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext extracts the authenticated user ID from the context.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetUserEmailFromContext extracts the authenticated email from the context.
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
}
