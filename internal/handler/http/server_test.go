package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkshrink-backend/internal/auth"
	"linkshrink-backend/internal/config"
	"linkshrink-backend/internal/queue"
	"linkshrink-backend/internal/repository/memory"
	"linkshrink-backend/internal/service"
)

const testBaseURL = "http://sho.rt"

type testEnv struct {
	handler http.Handler
	storage *memory.Storage
	queue   *queue.MemoryQueue
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := zap.NewNop()
	storage := memory.New()
	clickQueue := queue.NewMemoryQueue(100, log)

	shortener := service.NewShortener(storage, &config.URLShortener{
		BaseURL:     testBaseURL,
		CodeLength:  6,
		MaxAttempts: 5,
	})
	jwtService := auth.NewJWTService(&config.Auth{
		JWTSecret:      "test-secret-at-least-32-bytes-long!",
		AccessTokenTTL: 30 * time.Minute,
		Issuer:         "linkshrink",
	})
	passwordService := auth.NewPasswordService(4)

	server := NewServer(storage, shortener, clickQueue, jwtService, passwordService, log, testBaseURL)

	return &testEnv{
		handler: server.SetupRoutes(),
		storage: storage,
		queue:   clickQueue,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) registerAndLogin(t *testing.T, email string) string {
	t.Helper()

	creds := map[string]string{"email": email, "password": "secret123"}

	rec := e.do(t, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/auth/token", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var token TokenResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	require.Equal(t, "bearer", token.TokenType)
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

// TokenResponseBody mirrors the token endpoint response for decoding.
type TokenResponseBody struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (e *testEnv) shorten(t *testing.T, token, originalURL string) LinkSummary {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/shorten", token, map[string]string{"original_url": originalURL})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary LinkSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	return summary
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	creds := map[string]string{"email": "User@Example.COM", "password": "secret123"}
	rec := env.do(t, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)

	var user struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.NotZero(t, user.ID)
	assert.Equal(t, "user@example.com", user.Email, "email is normalized to lower case")

	rec = env.do(t, http.MethodPost, "/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered", decodeDetail(t, rec))
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{"email": "no-at-sign", "password": "secret123"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/register", "", map[string]string{"email": "user@example.com", "password": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// Unknown email and wrong password must be indistinguishable.
func TestToken_UniformFailure(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "user@example.com")

	wrongPassword := env.do(t, http.MethodPost, "/auth/token", "", map[string]string{"email": "user@example.com", "password": "wrong-password"})
	unknownEmail := env.do(t, http.MethodPost, "/auth/token", "", map[string]string{"email": "nobody@example.com", "password": "secret123"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, "Incorrect email or password", decodeDetail(t, wrongPassword))
}

func TestShorten(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "user@example.com")

	summary := env.shorten(t, token, "https://example.com/some/page")

	assert.Regexp(t, `^[A-Za-z0-9]{6}$`, summary.ShortCode)
	assert.Equal(t, testBaseURL+"/"+summary.ShortCode, summary.ShortURL)
	assert.Equal(t, "https://example.com/some/page", summary.OriginalURL)
	assert.True(t, summary.IsActive)
	assert.Zero(t, summary.TotalClicks)
	require.NotNil(t, summary.OwnerID)
}

// A URL without an explicit path and the same URL with a trailing slash
// are the same destination.
func TestShorten_NormalizesURL(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "user@example.com")

	summary := env.shorten(t, token, "https://example.com")
	assert.Equal(t, "https://example.com/", summary.OriginalURL)
}

func TestShorten_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/shorten", "", map[string]string{"original_url": "https://example.com"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", decodeDetail(t, rec))
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestShorten_InvalidURL(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "user@example.com")

	for _, raw := range []string{"not a url", "ftp://example.com/file", ""} {
		rec := env.do(t, http.MethodPost, "/shorten", token, map[string]string{"original_url": raw})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "input %q", raw)
	}
}

func TestRedirect(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "user@example.com")
	summary := env.shorten(t, token, "https://example.com/target")

	req := httptest.NewRequest(http.MethodGet, "/"+summary.ShortCode, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
	req.Header.Set("Referer", "https://social.example/post/1")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://example.com/target", rec.Header().Get("Location"))

	select {
	case event := <-env.queue.Events():
		assert.Equal(t, summary.ShortCode, event.ShortCode)
		assert.Equal(t, "203.0.113.7", event.IPAddress)
		assert.Equal(t, "https://social.example/post/1", event.Referrer)
		assert.False(t, event.ClickedAt.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no click event was published")
	}
}

func TestRedirect_UnknownCode(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/zzZZ99", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail": "URL not found"}`, rec.Body.String())
}

func TestRedirect_MalformedCode(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/short", "/toolong1", "/ab-12x", "/abc12"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "path %q", path)
		assert.Equal(t, "URL not found", decodeDetail(t, rec), "path %q", path)
	}
}

func TestRedirect_DeactivatedLink(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "user@example.com")
	summary := env.shorten(t, token, "https://example.com")

	rec := env.do(t, http.MethodPatch, "/links/"+summary.ShortCode, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled LinkSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toggled))
	assert.False(t, toggled.IsActive)

	rec = env.do(t, http.MethodGet, "/"+summary.ShortCode, "", nil)
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "This link has been deactivated", decodeDetail(t, rec))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.Equal(t, "0", rec.Header().Get("Expires"))

	// Reactivation restores redirects.
	rec = env.do(t, http.MethodPatch, "/links/"+summary.ShortCode, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/"+summary.ShortCode, "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
}

// A foreign code and an unknown code must answer identically, so link
// existence never leaks across owners.
func TestMutation_OwnershipCollapsesToNotFound(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.registerAndLogin(t, "owner@example.com")
	otherToken := env.registerAndLogin(t, "other@example.com")
	summary := env.shorten(t, ownerToken, "https://example.com")

	foreign := env.do(t, http.MethodPatch, "/links/"+summary.ShortCode, otherToken, nil)
	unknown := env.do(t, http.MethodPatch, "/links/zzZZ99", otherToken, nil)

	assert.Equal(t, http.StatusNotFound, foreign.Code)
	assert.Equal(t, http.StatusNotFound, unknown.Code)
	assert.Equal(t, foreign.Body.String(), unknown.Body.String())

	foreignDelete := env.do(t, http.MethodDelete, "/links/"+summary.ShortCode, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, foreignDelete.Code)
	assert.Equal(t, "URL not found", decodeDetail(t, foreignDelete))

	// The link is untouched for its owner.
	rec := env.do(t, http.MethodGet, "/"+summary.ShortCode, "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "user@example.com")
	summary := env.shorten(t, token, "https://example.com")

	rec := env.do(t, http.MethodDelete, "/links/"+summary.ShortCode, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/"+summary.ShortCode, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/stats/"+summary.ShortCode, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats_Public(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "user@example.com")
	summary := env.shorten(t, token, "https://example.com")

	rec := env.do(t, http.MethodGet, "/stats/"+summary.ShortCode, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		LinkSummary
		RecentClicks []json.RawMessage `json:"recent_clicks"`
		DailyClicks  []json.RawMessage `json:"daily_clicks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, summary.ShortCode, stats.ShortCode)
	assert.NotNil(t, stats.RecentClicks)
	assert.Empty(t, stats.RecentClicks)
}

func TestStats_Unknown(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/stats/zzZZ99", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail": "URL not found"}`, rec.Body.String())
}

func TestListMyLinks(t *testing.T) {
	env := newTestEnv(t)
	tokenA := env.registerAndLogin(t, "a@example.com")
	tokenB := env.registerAndLogin(t, "b@example.com")

	var mine []string
	for i := 0; i < 3; i++ {
		mine = append(mine, env.shorten(t, tokenA, fmt.Sprintf("https://example.com/%d", i)).ShortCode)
	}
	env.shorten(t, tokenB, "https://example.com/other")

	rec := env.do(t, http.MethodGet, "/me/links", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Links []LinkSummary `json:"links"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Links, 3)
	for _, link := range list.Links {
		assert.Contains(t, mine, link.ShortCode)
	}
}

func TestListRecentMyLinks_LimitValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "user@example.com")

	for _, limit := range []string{"0", "101", "-1", "abc"} {
		rec := env.do(t, http.MethodGet, "/me/links/recent?limit="+limit, token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "limit %q", limit)
	}

	rec := env.do(t, http.MethodGet, "/me/links/recent?limit=5", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "healthy", "database": "connected"}`, rec.Body.String())
}

func TestRoot_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRedirect_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "user@example.com")
	summary := env.shorten(t, token, "https://example.com")

	rec := env.do(t, http.MethodPost, "/"+summary.ShortCode, "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)

	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic dXNlcjpwYXNz",
		"garbage":      "Bearer not-a-token",
		"empty bearer": "Bearer ",
	} {
		req := httptest.NewRequest(http.MethodGet, "/me/links", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "case %s", name)
		assert.Equal(t, "Not authenticated", decodeDetail(t, rec), "case %s", name)
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestShorten_MalformedBody(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "user@example.com")

	req := httptest.NewRequest(http.MethodPost, "/shorten", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
