package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"linkshrink-backend/internal/repository"
)

// Handlers serves registration and token issuance.
type Handlers struct {
	storage         repository.Storage
	jwtService      *JWTService
	passwordService *PasswordService
	log             *zap.Logger
}

func NewHandlers(storage repository.Storage, jwtService *JWTService, passwordService *PasswordService, log *zap.Logger) *Handlers {
	return &Handlers{
		storage:         storage,
		jwtService:      jwtService,
		passwordService: passwordService,
		log:             log,
	}
}

// RegisterRequest is the registration request body.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenRequest is the token issuance request body.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the token issuance response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse is the registration response body.
type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// Register creates a new user account.
//
//	@Summary		Register a new user
//	@Description	Create a new user account
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration request"
//	@Success		201		{object}	UserResponse	"User registered"
//	@Failure		422		{object}	map[string]string	"Invalid request data"
//	@Failure		409		{object}	map[string]string	"Email already registered"
//	@Router			/auth/register [post]
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid registration request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusUnprocessableEntity)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !isValidEmail(req.Email) {
		h.writeError(w, "Invalid email format", http.StatusUnprocessableEntity)
		return
	}

	if err := IsValidPassword(req.Password); err != nil {
		h.writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	hashedPassword, err := h.passwordService.HashPassword(req.Password)
	if err != nil {
		h.log.Error("failed to hash password", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user, err := h.storage.CreateUser(r.Context(), req.Email, hashedPassword)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			h.writeError(w, "Email already registered", http.StatusConflict)
			return
		}
		h.log.Error("failed to create user", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("user registered", zap.Int64("user_id", user.ID))
	h.writeJSON(w, UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}, http.StatusCreated)
}

// Token authenticates a user and issues an access token.
//
//	@Summary		Issue an access token
//	@Description	Authenticate with email and password and receive a bearer token
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TokenRequest	true	"Credentials"
//	@Success		200		{object}	TokenResponse	"Token issued"
//	@Failure		401		{object}	map[string]string	"Invalid credentials"
//	@Router			/auth/token [post]
func (h *Handlers) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid token request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusUnprocessableEntity)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Unknown email and wrong password answer identically.
	user, err := h.storage.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.log.Debug("user not found for token request")
		h.writeError(w, "Incorrect email or password", http.StatusUnauthorized)
		return
	}

	if err := h.passwordService.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		h.log.Debug("password verification failed", zap.Int64("user_id", user.ID))
		h.writeError(w, "Incorrect email or password", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		h.log.Error("failed to generate access token", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("issued access token", zap.Int64("user_id", user.ID))
	h.writeJSON(w, TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, http.StatusOK)
}

// Helper methods

func (h *Handlers) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"detail": message}); err != nil {
		h.log.Error("failed to encode error response", zap.Error(err))
	}
}

func isValidEmail(email string) bool {
	return strings.Contains(email, "@") && len(email) > 3 && len(email) < 255
}
